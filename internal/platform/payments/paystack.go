package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/coursehub-backend/internal/platform/envutil"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type PaystackConfig struct {
	SecretKey  string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

func PaystackConfigFromEnv() PaystackConfig {
	return PaystackConfig{
		SecretKey:  envutil.String("PAYSTACK_SECRET_KEY", ""),
		BaseURL:    envutil.String("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		Timeout:    envutil.Duration("PAYSTACK_TIMEOUT", 30*time.Second),
		MaxRetries: envutil.Int("PAYSTACK_MAX_RETRIES", 3),
	}
}

type paystack struct {
	cfg  PaystackConfig
	http jsonClient
}

func NewPaystack(log *logger.Logger, cfg PaystackConfig) (Gateway, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("missing PAYSTACK_SECRET_KEY")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing PAYSTACK_BASE_URL")
	}
	l := log.With("client", "PaystackGateway")
	return &paystack{cfg: cfg, http: newJSONClient(GatewayPaystack, l, cfg.Timeout, cfg.MaxRetries)}, nil
}

func (p *paystack) Name() string { return GatewayPaystack }

type paystackEnvelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type paystackInit struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerify struct {
	Status          string `json:"status"`
	Reference       string `json:"reference"`
	Amount          int64  `json:"amount"`
	GatewayResponse string `json:"gateway_response"`
}

func (p *paystack) headers() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + p.cfg.SecretKey,
	}
}

func (p *paystack) CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error) {
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("paystack: email required")
	}
	payload := map[string]any{
		"email":  req.Email,
		"amount": int64(math.Round(req.Amount * 100)),
	}
	if req.Reference != "" {
		payload["reference"] = req.Reference
	}
	if req.Currency != "" {
		payload["currency"] = strings.ToUpper(req.Currency)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out paystackEnvelope[paystackInit]
	if err := p.http.do(ctx, request{
		method:  http.MethodPost,
		url:     p.cfg.BaseURL + "/transaction/initialize",
		headers: p.headers(),
		body:    body,
	}, &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("paystack initialize: %s", out.Message)
	}
	return &GatewayOrder{ID: out.Data.Reference, Status: "CREATED", ApproveURL: out.Data.AuthorizationURL}, nil
}

func (p *paystack) Capture(ctx context.Context, reference string) (*CaptureResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("paystack: reference required")
	}
	var out paystackEnvelope[paystackVerify]
	if err := p.http.do(ctx, request{
		method:  http.MethodGet,
		url:     p.cfg.BaseURL + "/transaction/verify/" + url.PathEscape(reference),
		headers: p.headers(),
	}, &out); err != nil {
		return nil, err
	}
	if !out.Status || out.Data.Status != "success" {
		return nil, fmt.Errorf("%w: paystack status %q (%s)", ErrCaptureIncomplete, out.Data.Status, out.Data.GatewayResponse)
	}
	return &CaptureResult{ID: out.Data.Reference, Status: out.Data.Status, Amount: float64(out.Data.Amount) / 100}, nil
}
