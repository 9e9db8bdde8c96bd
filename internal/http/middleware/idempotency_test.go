package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/platform/idempotency"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

func newIdempotentRouter(t *testing.T, store idempotency.Store, calls *int32, status int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	r := gin.New()
	r.POST("/api/v1/order/confirm/:ref", Idempotency(log, store, time.Hour), func(c *gin.Context) {
		n := atomic.AddInt32(calls, 1)
		c.JSON(status, gin.H{"call": n})
	})
	return r
}

func post(r http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/order/confirm/PP-1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	var calls int32
	r := newIdempotentRouter(t, idempotency.NewMemoryStore(), &calls, http.StatusOK)

	first := post(r, "k-1", `{}`)
	second := post(r, "k-1", `{}`)
	if calls != 1 {
		t.Fatalf("handler calls: want=1 got=%d", calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replayed body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
	if second.Header().Get(headerIdempotentReplay) != "true" {
		t.Fatalf("missing replay header")
	}

	post(r, "", `{}`)
	post(r, "", `{}`)
	if calls != 3 {
		t.Fatalf("requests without a key must not be deduplicated, calls=%d", calls)
	}
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	var calls int32
	store := idempotency.NewMemoryStore()
	r := newIdempotentRouter(t, store, &calls, http.StatusOK)
	if _, err := store.Begin(t.Context(), "anon:POST:/api/v1/order/confirm/:ref:k-2", time.Minute); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	rec := post(r, "k-2", `{}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status: want=409 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "idempotency_key_in_use") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if calls != 0 {
		t.Fatalf("handler should not run")
	}
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	var calls int32
	r := newIdempotentRouter(t, idempotency.NewMemoryStore(), &calls, http.StatusCreated)
	post(r, "k-3", `{"a":1}`)
	rec := post(r, "k-3", `{"a":2}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: want=422 got=%d", rec.Code)
	}
}

func TestIdempotencyDoesNotKeepServerErrors(t *testing.T) {
	var calls int32
	r := newIdempotentRouter(t, idempotency.NewMemoryStore(), &calls, http.StatusBadGateway)
	post(r, "k-4", `{}`)
	post(r, "k-4", `{}`)
	if calls != 2 {
		t.Fatalf("5xx should release the key, calls=%d", calls)
	}
}
