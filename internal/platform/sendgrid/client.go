package sendgrid

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sg "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/envutil"
	"github.com/yungbote/coursehub-backend/internal/platform/httpx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

const sendEndpoint = "/v3/mail/send"

type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	DefaultFromName  string
	Timeout          time.Duration
	MaxRetries       int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:           envutil.String("SENDGRID_API_KEY", ""),
		BaseURL:          envutil.String("SENDGRID_BASE_URL", ""),
		DefaultFromEmail: envutil.String("SENDGRID_FROM_EMAIL", ""),
		DefaultFromName:  envutil.String("SENDGRID_FROM_NAME", ""),
		Timeout:          envutil.Duration("SENDGRID_TIMEOUT", 30*time.Second),
		MaxRetries:       envutil.Int("SENDGRID_MAX_RETRIES", 4),
	}
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing SENDGRID_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{log: log.With("client", "SendGridClient"), cfg: cfg}, nil
}

type client struct {
	log *logger.Logger
	cfg Config
}

type EmailAddress struct {
	Email string
	Name  string
}

type SendEmailRequest struct {
	From       EmailAddress
	ReplyTo    *EmailAddress
	To         []EmailAddress
	Subject    string
	Text       string
	HTML       string
	Categories []string
}

type SendEmailResult struct {
	StatusCode int
	MessageID  string
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	m, err := c.build(req)
	if err != nil {
		return nil, err
	}
	body := sgmail.GetRequestBody(m)

	var out *SendEmailResult
	policy := httpx.RetryPolicy{
		MaxRetries: c.cfg.MaxRetries,
		Backoff:    time.Second,
		OnRetry: func(attempt int, sleep time.Duration, err error) {
			c.log.Warn("Sendgrid request retrying", "attempt", attempt, "sleep", sleep.String(), "error", err.Error())
		},
	}
	err = httpx.Retry(ctxutil.Default(ctx), policy, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		r := sg.GetRequest(c.cfg.APIKey, sendEndpoint, c.cfg.BaseURL)
		r.Method = http.MethodPost
		r.Body = body
		resp, err := sg.MakeRequestWithContext(callCtx, r)
		if err != nil {
			return err
		}
		if resp.StatusCode >= http.StatusBadRequest {
			se := &httpx.StatusError{Service: "sendgrid", StatusCode: resp.StatusCode, Body: resp.Body}
			if ra := firstHeader(resp.Headers, "Retry-After"); ra != "" {
				if d, perr := time.ParseDuration(ra + "s"); perr == nil {
					se.RetryAfter = d
				}
			}
			return se
		}
		out = &SendEmailResult{StatusCode: resp.StatusCode, MessageID: firstHeader(resp.Headers, "X-Message-Id")}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) build(req SendEmailRequest) (*sgmail.SGMailV3, error) {
	from := req.From
	if strings.TrimSpace(from.Email) == "" {
		from = EmailAddress{Email: c.cfg.DefaultFromEmail, Name: c.cfg.DefaultFromName}
	}
	if strings.TrimSpace(from.Email) == "" {
		return nil, fmt.Errorf("sendgrid: From.Email required (or set SENDGRID_FROM_EMAIL)")
	}
	if len(req.To) == 0 {
		return nil, fmt.Errorf("sendgrid: To required")
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, fmt.Errorf("sendgrid: Subject required")
	}
	text, html := strings.TrimSpace(req.Text), strings.TrimSpace(req.HTML)
	if text == "" && html == "" {
		return nil, fmt.Errorf("sendgrid: Text or HTML content required")
	}

	p := sgmail.NewPersonalization()
	for _, to := range req.To {
		p.AddTos(sgmail.NewEmail(strings.TrimSpace(to.Name), strings.TrimSpace(to.Email)))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(strings.TrimSpace(from.Name), strings.TrimSpace(from.Email)))
	m.Subject = subject
	m.AddPersonalizations(p)
	if req.ReplyTo != nil && strings.TrimSpace(req.ReplyTo.Email) != "" {
		m.SetReplyTo(sgmail.NewEmail(req.ReplyTo.Name, req.ReplyTo.Email))
	}
	// text/plain must precede text/html
	if text != "" {
		m.AddContent(sgmail.NewContent("text/plain", text))
	}
	if html != "" {
		m.AddContent(sgmail.NewContent("text/html", html))
	}
	if len(req.Categories) > 0 {
		m.AddCategories(req.Categories...)
	}
	return m, nil
}

func firstHeader(h map[string][]string, key string) string {
	for k, v := range h {
		if strings.EqualFold(k, key) && len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
	}
	return ""
}
