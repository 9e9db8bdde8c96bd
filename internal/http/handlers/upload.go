package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/services"
)

// multipart framing on top of the file itself
const uploadOverhead = 1 << 20

type UploadHandler struct {
	uploads services.UploadService
}

func NewUploadHandler(uploads services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	kind := services.UploadKind(c.Param("kind"))
	limit := services.MaxUploadBytes(kind)
	if limit == 0 {
		response.RespondAPIError(c, apierr.Newf(http.StatusBadRequest, "invalid_upload_kind", "unsupported upload kind %q", kind), "invalid_upload_kind")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+uploadOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondAPIError(c, apierr.Newf(http.StatusRequestEntityTooLarge, "file_too_large", "%s uploads are limited to %dMB", kind, limit>>20), "file_too_large")
			return
		}
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "missing_file", err), "missing_file")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "invalid_file", err), "invalid_file")
		return
	}
	defer f.Close()

	out, err := h.uploads.Upload(c.Request.Context(), kind, services.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		response.RespondAPIError(c, err, "upload_failed")
		return
	}
	response.RespondCreated(c, out)
}
