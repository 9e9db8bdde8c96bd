package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	httpH "github.com/yungbote/coursehub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursehub-backend/internal/http/middleware"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/idempotency"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type tokenAuth struct {
	services.AuthService
	users map[string]*ctxutil.RequestData
}

func (a *tokenAuth) VerifyToken(ctx context.Context, token string) (context.Context, error) {
	rd, ok := a.users[token]
	if !ok {
		return ctx, apierr.Unauthorized("invalid_token", "Invalid or expired token")
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

type countingOrders struct {
	services.OrderService
	studentCancels atomic.Int32
	adminCancels   atomic.Int32
}

func (o *countingOrders) CancelForStudent(_ context.Context, ref string) (*types.Transaction, error) {
	o.studentCancels.Add(1)
	return &types.Transaction{ThirdPartyRef: ref, Status: types.StatusCancelled}, nil
}

func (o *countingOrders) CancelForAdmin(_ context.Context, ref string) (*types.Transaction, error) {
	o.adminCancels.Add(1)
	return &types.Transaction{ThirdPartyRef: ref, Status: types.StatusCancelled}, nil
}

func newOrderRouter(orders services.OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	auth := &tokenAuth{users: map[string]*ctxutil.RequestData{
		"student-token": {UserID: uuid.New(), Role: string(types.RoleStudent)},
		"admin-token":   {UserID: uuid.New(), Role: string(types.RoleAdmin)},
	}}
	return NewRouter(RouterConfig{
		Log:            log,
		IdempotencyTTL: time.Hour,
		Idempotency:    idempotency.NewMemoryStore(),
		AuthMiddleware: httpMW.NewAuthMiddleware(log, auth),
		OrderHandler:   httpH.NewOrderHandler(orders),
	})
}

func patch(r http.Handler, path, token, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestOrderCancelRoutesReplayIdempotentRequests(t *testing.T) {
	cases := []struct {
		name  string
		path  string
		token string
		calls func(*countingOrders) int32
	}{
		{"student cancel", "/api/v1/order/cancel/PP-1", "student-token", func(o *countingOrders) int32 { return o.studentCancels.Load() }},
		{"admin cancel", "/api/v1/order/admin/cancel/PP-1", "admin-token", func(o *countingOrders) int32 { return o.adminCancels.Load() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := &countingOrders{}
			r := newOrderRouter(orders)

			first := patch(r, tc.path, tc.token, "cancel-1")
			second := patch(r, tc.path, tc.token, "cancel-1")
			if first.Code != http.StatusOK || second.Code != http.StatusOK {
				t.Fatalf("status: first=%d second=%d body=%s", first.Code, second.Code, second.Body.String())
			}
			if got := tc.calls(orders); got != 1 {
				t.Fatalf("service calls: want=1 got=%d", got)
			}
			if second.Header().Get("Idempotent-Replayed") != "true" {
				t.Fatalf("second request was not replayed")
			}
			if first.Body.String() != second.Body.String() {
				t.Fatalf("replayed body differs: %q vs %q", first.Body.String(), second.Body.String())
			}

			patch(r, tc.path, tc.token, "")
			if got := tc.calls(orders); got != 2 {
				t.Fatalf("keyless cancel should reach the service, calls=%d", got)
			}
		})
	}
}
