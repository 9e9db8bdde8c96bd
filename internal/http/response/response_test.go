package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondAPIError(c, err, "fallback")
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec, env
}

func TestRespondAPIErrorUsesStatusAndCode(t *testing.T) {
	rec, env := render(t, fmt.Errorf("wrapped: %w", apierr.Conflict("already_cancelled", "Transaction already cancelled")))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status: want=%d got=%d", http.StatusConflict, rec.Code)
	}
	if env.Error.Code != "already_cancelled" || env.Error.Message != "Transaction already cancelled" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestRespondAPIErrorHidesInternalDetail(t *testing.T) {
	rec, env := render(t, errors.New("pq: connection refused"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", rec.Code)
	}
	if env.Error.Code != "fallback" || env.Error.Message == "pq: connection refused" {
		t.Fatalf("internal detail leaked: %+v", env)
	}

	rec, env = render(t, apierr.New(http.StatusInternalServerError, "internal_error", errors.New("load course: boom")))
	if rec.Code != http.StatusInternalServerError || env.Error.Message == "load course: boom" {
		t.Fatalf("5xx api error leaked detail: %d %+v", rec.Code, env)
	}
}
