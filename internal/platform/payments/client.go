package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/coursehub-backend/internal/platform/httpx"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

// jsonClient is the request/retry plumbing shared by the gateway clients.
type jsonClient struct {
	service    string
	log        *logger.Logger
	httpClient *http.Client
	maxRetries int
}

func newJSONClient(service string, log *logger.Logger, timeout time.Duration, maxRetries int) jsonClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return jsonClient{
		service:    service,
		log:        log,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}
}

type request struct {
	method  string
	url     string
	headers map[string]string
	// body is re-read on every attempt.
	body []byte
}

func (c jsonClient) do(ctx context.Context, req request, out any) error {
	policy := httpx.RetryPolicy{
		MaxRetries: c.maxRetries,
		Backoff:    500 * time.Millisecond,
		OnRetry: func(attempt int, sleep time.Duration, err error) {
			c.log.Warn("Gateway request retrying", "gateway", c.service, "attempt", attempt, "sleep", sleep.String(), "error", err.Error())
		},
	}
	return httpx.Retry(ctx, policy, func(ctx context.Context) error {
		return c.once(ctx, req, out)
	})
}

func (c jsonClient) once(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return err
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &httpx.StatusError{Service: c.service, StatusCode: resp.StatusCode, Body: string(raw)}
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, perr := strconv.Atoi(ra); perr == nil && secs > 0 {
				se.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		return se
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.service, err)
	}
	return nil
}
