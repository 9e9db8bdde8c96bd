package sendgrid

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

func TestSendRetriesOnServerError(t *testing.T) {
	var calls int32
	var lastBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Fatalf("missing bearer auth")
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &lastBody)
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c, err := New(logger.Nop(), Config{APIKey: "key", BaseURL: srv.URL, DefaultFromEmail: "no-reply@example.com", MaxRetries: 2, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := c.Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "a@example.com", Name: "A"}},
		Subject: "Hello",
		Text:    "hi",
		HTML:    "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}
	if res.MessageID != "msg-1" || res.StatusCode != http.StatusAccepted {
		t.Fatalf("unexpected result %+v", res)
	}
	if lastBody["subject"] != "Hello" {
		t.Fatalf("subject not sent: %v", lastBody)
	}
}

func TestSendDoesNotRetryClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad from"}]}`))
	}))
	defer srv.Close()

	c, _ := New(logger.Nop(), Config{APIKey: "key", BaseURL: srv.URL, DefaultFromEmail: "x@example.com", MaxRetries: 3})
	_, err := c.Send(context.Background(), SendEmailRequest{To: []EmailAddress{{Email: "a@example.com"}}, Subject: "s", Text: "t"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("400 must not be retried, got %d calls", calls)
	}
}

func TestBuildValidates(t *testing.T) {
	c := &client{log: logger.Nop(), cfg: Config{}}
	if _, err := c.build(SendEmailRequest{To: []EmailAddress{{Email: "a@example.com"}}, Subject: "s", Text: "t"}); err == nil {
		t.Fatalf("expected missing from error")
	}
	c.cfg.DefaultFromEmail = "f@example.com"
	if _, err := c.build(SendEmailRequest{To: []EmailAddress{{Email: "a@example.com"}}, Subject: "s"}); err == nil {
		t.Fatalf("expected missing content error")
	}
}
