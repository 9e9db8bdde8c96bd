package payments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

func newPayPalServer(t *testing.T, captureStatus int, captureBody string) (*httptest.Server, *int32) {
	t.Helper()
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Basic ") {
			t.Fatalf("token call must use basic auth")
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Fatalf("missing bearer token")
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		units := body["purchase_units"].([]any)
		amount := units[0].(map[string]any)["amount"].(map[string]any)
		if amount["value"] != "105.00" || amount["currency_code"] != "USD" {
			t.Fatalf("unexpected amount %v", amount)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"PP-1","status":"CREATED","links":[{"href":"https://x/self","rel":"self"},{"href":"https://x/approve","rel":"approve"}]}`))
	})
	mux.HandleFunc("/v2/checkout/orders/PP-1/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(captureStatus)
		_, _ = w.Write([]byte(captureBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenCalls
}

func TestPayPalCreateAndCapture(t *testing.T) {
	srv, tokenCalls := newPayPalServer(t, http.StatusCreated,
		`{"id":"PP-1","status":"COMPLETED","purchase_units":[{"payments":{"captures":[{"status":"COMPLETED","amount":{"value":"105.00"}}]}}]}`)
	gw, err := NewPayPal(logger.Nop(), PayPalConfig{ClientID: "id", ClientSecret: "secret", BaseURL: srv.URL, MaxRetries: 1})
	if err != nil {
		t.Fatalf("NewPayPal: %v", err)
	}
	ctx := context.Background()
	order, err := gw.CreateOrder(ctx, CreateOrderRequest{Amount: 105, Reference: "GI-TX-1"})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ID != "PP-1" || order.ApproveURL != "https://x/approve" {
		t.Fatalf("unexpected order %+v", order)
	}
	res, err := gw.Capture(ctx, "PP-1")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if res.Amount != 105 || res.AlreadyCaptured {
		t.Fatalf("unexpected capture %+v", res)
	}
	if atomic.LoadInt32(tokenCalls) != 1 {
		t.Fatalf("token should be cached, got %d calls", *tokenCalls)
	}
}

func TestPayPalAlreadyCapturedIsSuccess(t *testing.T) {
	srv, _ := newPayPalServer(t, http.StatusUnprocessableEntity,
		`{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_ALREADY_CAPTURED"}]}`)
	gw, _ := NewPayPal(logger.Nop(), PayPalConfig{ClientID: "id", ClientSecret: "secret", BaseURL: srv.URL})
	res, err := gw.Capture(context.Background(), "PP-1")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if !res.AlreadyCaptured || res.Status != "COMPLETED" {
		t.Fatalf("expected already captured success, got %+v", res)
	}
}

func TestPayPalIncompleteCaptureFails(t *testing.T) {
	srv, _ := newPayPalServer(t, http.StatusCreated, `{"id":"PP-1","status":"PAYER_ACTION_REQUIRED"}`)
	gw, _ := NewPayPal(logger.Nop(), PayPalConfig{ClientID: "id", ClientSecret: "secret", BaseURL: srv.URL})
	_, err := gw.Capture(context.Background(), "PP-1")
	if !errors.Is(err, ErrCaptureIncomplete) {
		t.Fatalf("expected ErrCaptureIncomplete, got %v", err)
	}
}

func TestApproveLinkFallsBackToSecondLink(t *testing.T) {
	links := []paypalLink{{Href: "a", Rel: "self"}, {Href: "b", Rel: "other"}}
	if got := approveLink(links); got != "b" {
		t.Fatalf("expected fallback to links[1], got %q", got)
	}
	if got := approveLink(nil); got != "" {
		t.Fatalf("expected empty link")
	}
}

func TestPaystackInitializeAndVerify(t *testing.T) {
	var initCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk" {
			t.Fatalf("missing secret key")
		}
		switch {
		case r.URL.Path == "/transaction/initialize":
			if atomic.AddInt32(&initCalls, 1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["amount"].(float64) != 10500 {
				t.Fatalf("amount must be in minor units, got %v", body["amount"])
			}
			_, _ = w.Write([]byte(`{"status":true,"data":{"authorization_url":"https://pay/abc","reference":"ref-1"}}`))
		case r.URL.Path == "/transaction/verify/ref-1":
			_, _ = w.Write([]byte(`{"status":true,"data":{"status":"success","reference":"ref-1","amount":10500}}`))
		case r.URL.Path == "/transaction/verify/ref-2":
			_, _ = w.Write([]byte(`{"status":true,"data":{"status":"abandoned","reference":"ref-2"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	gw, err := NewPaystack(logger.Nop(), PaystackConfig{SecretKey: "sk", BaseURL: srv.URL, MaxRetries: 2, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewPaystack: %v", err)
	}
	ctx := context.Background()
	order, err := gw.CreateOrder(ctx, CreateOrderRequest{Amount: 105, Email: "s@example.com", Reference: "ref-1"})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ID != "ref-1" || order.ApproveURL != "https://pay/abc" {
		t.Fatalf("unexpected order %+v", order)
	}
	res, err := gw.Capture(ctx, "ref-1")
	if err != nil || res.Amount != 105 {
		t.Fatalf("Capture: %+v %v", res, err)
	}
	if _, err := gw.Capture(ctx, "ref-2"); !errors.Is(err, ErrCaptureIncomplete) {
		t.Fatalf("expected incomplete capture, got %v", err)
	}
}

type namedGateway struct{ name string }

func (g namedGateway) Name() string { return g.name }
func (g namedGateway) CreateOrder(context.Context, CreateOrderRequest) (*GatewayOrder, error) {
	return nil, nil
}
func (g namedGateway) Capture(context.Context, string) (*CaptureResult, error) { return nil, nil }

func TestRegistryDefaultsToPayPal(t *testing.T) {
	r := NewRegistry("", namedGateway{GatewayPayPal}, nil, namedGateway{GatewayPaystack})
	g, err := r.Get("")
	if err != nil || g.Name() != GatewayPayPal {
		t.Fatalf("expected paypal default, got %v %v", g, err)
	}
	if g, _ := r.Get("PAYSTACK"); g == nil || g.Name() != GatewayPaystack {
		t.Fatalf("lookup should be case-insensitive")
	}
	if _, err := r.Get("stripe"); !errors.Is(err, ErrUnknownGateway) {
		t.Fatalf("expected ErrUnknownGateway, got %v", err)
	}
	if got := r.Names(); len(got) != 2 {
		t.Fatalf("expected 2 names, got %v", got)
	}
}
