package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/services"
)

type fakeUploads struct {
	kind services.UploadKind
	file services.UploadFile
	body []byte
}

func (f *fakeUploads) Upload(_ context.Context, kind services.UploadKind, file services.UploadFile) (*services.Uploaded, error) {
	f.kind = kind
	f.file = file
	f.body, _ = io.ReadAll(file.Body)
	return &services.Uploaded{URL: "https://cdn.example.com/k", Key: "k"}, nil
}

func multipartBody(t *testing.T, field, name, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeUploads{}
	r := gin.New()
	r.POST("/upload/:kind", NewUploadHandler(fake).Upload)

	body, ct := multipartBody(t, "file", "cover.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/upload/image", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status: want=201 got=%d body=%s", w.Code, w.Body.String())
	}
	if fake.kind != services.UploadImage || fake.file.Name != "cover.png" || fake.file.ContentType != "image/png" {
		t.Fatalf("file not forwarded: kind=%s file=%+v", fake.kind, fake.file)
	}
	if string(fake.body) != "png-bytes" {
		t.Fatalf("body: got=%q", fake.body)
	}

	req = httptest.NewRequest(http.MethodPost, "/upload/spreadsheet", strings.NewReader(""))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "invalid_upload_kind") {
		t.Fatalf("unknown kind: status=%d body=%s", w.Code, w.Body.String())
	}

	body, ct = multipartBody(t, "attachment", "a.pdf", "application/pdf", []byte("%PDF"))
	req = httptest.NewRequest(http.MethodPost, "/upload/doc", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "missing_file") {
		t.Fatalf("missing field: status=%d body=%s", w.Code, w.Body.String())
	}
}
