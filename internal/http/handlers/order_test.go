package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/pagination"
	"github.com/yungbote/coursehub-backend/internal/platform/apierr"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type fakeOrders struct {
	services.OrderService
	gotInput  services.OrderInput
	gotRef    string
	gotFilter repos.TransactionFilter
	gotPage   pagination.Params
	confirm   error
}

func (f *fakeOrders) Create(_ context.Context, in services.OrderInput) (*services.OrderCreated, error) {
	f.gotInput = in
	return &services.OrderCreated{OrderNumber: "GW-1", Reference: "GI-TX-1", Status: "CREATED", Link: "https://pay.example.com"}, nil
}

func (f *fakeOrders) Confirm(_ context.Context, ref string) (*services.ConfirmResult, error) {
	f.gotRef = ref
	if f.confirm != nil {
		return nil, f.confirm
	}
	return &services.ConfirmResult{ThirdPartyRef: ref, Status: "confirmed"}, nil
}

func (f *fakeOrders) ListTransactions(_ context.Context, filter repos.TransactionFilter, p pagination.Params) (pagination.Page[*types.Transaction], error) {
	f.gotFilter = filter
	f.gotPage = p
	return pagination.NewPage[*types.Transaction](nil, 0), nil
}

func newOrderRouter(orders services.OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOrderHandler(orders)
	r := gin.New()
	r.POST("/order", h.Create)
	r.POST("/order/confirm/:ref", h.Confirm)
	r.GET("/order/transactions", h.ListTransactions)
	return r
}

func TestOrderCreateBindsAndValidates(t *testing.T) {
	fake := &fakeOrders{}
	r := newOrderRouter(fake)

	body := `{"courses":[{"id":"6f1c1c53-4a4c-4b5a-9a52-0d2a4f0d8e11","price":45}],"amount":45,"gateway":"paystack"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("status: want=201 got=%d body=%s", w.Code, w.Body.String())
	}
	if fake.gotInput.Gateway != "paystack" || len(fake.gotInput.Courses) != 1 || fake.gotInput.Amount != 45 {
		t.Fatalf("input not bound: %+v", fake.gotInput)
	}
	var out services.OrderCreated
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.OrderNumber != "GW-1" {
		t.Fatalf("orderNumber: got=%q", out.OrderNumber)
	}

	cases := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"courses":`, "invalid_request"},
		{"no courses", `{"courses":[],"amount":10}`, "validation_failed"},
		{"bad gateway", `{"courses":[{"id":"6f1c1c53-4a4c-4b5a-9a52-0d2a4f0d8e11","price":1}],"amount":1,"gateway":"stripe"}`, "validation_failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(tc.body)))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status: want=400 got=%d", w.Code)
			}
			if !strings.Contains(w.Body.String(), tc.code) {
				t.Fatalf("body: want code %q in %s", tc.code, w.Body.String())
			}
		})
	}
}

func TestOrderConfirmMapsServiceErrors(t *testing.T) {
	fake := &fakeOrders{}
	r := newOrderRouter(fake)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/order/confirm/PP-123", nil))
	if w.Code != http.StatusOK || fake.gotRef != "PP-123" {
		t.Fatalf("confirm: status=%d ref=%q", w.Code, fake.gotRef)
	}

	fake.confirm = apierr.Conflict("order_cancelled", "This order has been cancelled")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/order/confirm/PP-123", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("status: want=409 got=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "order_cancelled") {
		t.Fatalf("body: %s", w.Body.String())
	}
}

func TestListTransactionsPassesFiltersAndPaging(t *testing.T) {
	fake := &fakeOrders{}
	r := newOrderRouter(fake)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/order/transactions?status=CONFIRMED&reference=GI-TX-9&page=2&pageSize=5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", w.Code)
	}
	if fake.gotFilter.Status != "confirmed" || fake.gotFilter.Reference != "GI-TX-9" {
		t.Fatalf("filter: %+v", fake.gotFilter)
	}
	if fake.gotPage.Page != 2 || fake.gotPage.PageSize != 5 {
		t.Fatalf("paging: %+v", fake.gotPage)
	}
	if !strings.Contains(w.Body.String(), `"data":[]`) {
		t.Fatalf("body: %s", w.Body.String())
	}
}
