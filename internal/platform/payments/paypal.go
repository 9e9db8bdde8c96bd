package payments

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/coursehub-backend/internal/platform/envutil"
	"github.com/yungbote/coursehub-backend/internal/platform/httpx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
}

func PayPalConfigFromEnv() PayPalConfig {
	return PayPalConfig{
		ClientID:     envutil.String("PAYPAL_CLIENT_ID", ""),
		ClientSecret: envutil.String("PAYPAL_CLIENT_SECRET", ""),
		BaseURL:      envutil.String("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		Timeout:      envutil.Duration("PAYPAL_TIMEOUT", 30*time.Second),
		MaxRetries:   envutil.Int("PAYPAL_MAX_RETRIES", 3),
	}
}

type payPal struct {
	cfg  PayPalConfig
	http jsonClient
	log  *logger.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewPayPal(log *logger.Logger, cfg PayPalConfig) (Gateway, error) {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, fmt.Errorf("missing PAYPAL_CLIENT_ID or PAYPAL_CLIENT_SECRET")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing PAYPAL_BASE_URL")
	}
	l := log.With("client", "PayPalGateway")
	return &payPal{cfg: cfg, log: l, http: newJSONClient(GatewayPayPal, l, cfg.Timeout, cfg.MaxRetries)}, nil
}

func (p *payPal) Name() string { return GatewayPayPal }

type paypalLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type paypalOrder struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Links  []paypalLink `json:"links"`
}

type paypalCapture struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				Status string `json:"status"`
				Amount struct {
					Value string `json:"value"`
				} `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

type paypalError struct {
	Name    string `json:"name"`
	Details []struct {
		Issue string `json:"issue"`
	} `json:"details"`
}

func (p *payPal) CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"reference_id": req.Reference,
			"amount": map[string]any{
				"currency_code": currency,
				"value":         fmt.Sprintf("%.2f", req.Amount),
			},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out paypalOrder
	err = p.http.do(ctx, request{
		method: http.MethodPost,
		url:    p.cfg.BaseURL + "/v2/checkout/orders",
		headers: map[string]string{
			"Content-Type":      "application/json",
			"Authorization":     "Bearer " + token,
			"PayPal-Request-Id": req.Reference,
		},
		body: body,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &GatewayOrder{ID: out.ID, Status: out.Status, ApproveURL: approveLink(out.Links)}, nil
}

func approveLink(links []paypalLink) string {
	for _, l := range links {
		if strings.EqualFold(l.Rel, "approve") || strings.EqualFold(l.Rel, "payer-action") {
			return l.Href
		}
	}
	if len(links) > 1 {
		return links[1].Href
	}
	return ""
}

func (p *payPal) Capture(ctx context.Context, id string) (*CaptureResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("paypal: order id required")
	}
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}
	var out paypalCapture
	err = p.http.do(ctx, request{
		method: http.MethodPost,
		url:    p.cfg.BaseURL + "/v2/checkout/orders/" + url.PathEscape(id) + "/capture",
		headers: map[string]string{
			"Content-Type":      "application/json",
			"Authorization":     "Bearer " + token,
			"PayPal-Request-Id": "capture-" + id,
		},
	}, &out)
	if err != nil {
		if alreadyCaptured(err) {
			p.log.Info("PayPal order already captured", "order_id", id)
			return &CaptureResult{ID: id, Status: "COMPLETED", AlreadyCaptured: true}, nil
		}
		return nil, err
	}
	if !strings.EqualFold(out.Status, "COMPLETED") {
		return nil, fmt.Errorf("%w: paypal status %s", ErrCaptureIncomplete, out.Status)
	}
	res := &CaptureResult{ID: out.ID, Status: out.Status}
	for _, pu := range out.PurchaseUnits {
		for _, c := range pu.Payments.Captures {
			if v, perr := strconv.ParseFloat(c.Amount.Value, 64); perr == nil {
				res.Amount += v
			}
		}
	}
	return res, nil
}

func alreadyCaptured(err error) bool {
	var se *httpx.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	var pe paypalError
	if json.Unmarshal([]byte(se.Body), &pe) != nil {
		return strings.Contains(se.Body, "ORDER_ALREADY_CAPTURED")
	}
	for _, d := range pe.Details {
		if d.Issue == "ORDER_ALREADY_CAPTURED" {
			return true
		}
	}
	return false
}

// token returns a cached OAuth access token, refreshing a minute before expiry.
func (p *payPal) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.accessToken != "" && time.Now().Before(p.expiresAt) {
		return p.accessToken, nil
	}
	basic := base64.StdEncoding.EncodeToString([]byte(p.cfg.ClientID + ":" + p.cfg.ClientSecret))
	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	err := p.http.do(ctx, request{
		method: http.MethodPost,
		url:    p.cfg.BaseURL + "/v1/oauth2/token",
		headers: map[string]string{
			"Content-Type":  "application/x-www-form-urlencoded",
			"Authorization": "Basic " + basic,
		},
		body: []byte("grant_type=client_credentials"),
	}, &out)
	if err != nil {
		return "", fmt.Errorf("paypal token: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("paypal token: empty access_token")
	}
	ttl := time.Duration(out.ExpiresIn)*time.Second - time.Minute
	if ttl <= 0 {
		ttl = time.Minute
	}
	p.accessToken = out.AccessToken
	p.expiresAt = time.Now().Add(ttl)
	return p.accessToken, nil
}
