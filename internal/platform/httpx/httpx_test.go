package httpx

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxRetries: 5, Backoff: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return &StatusError{Service: "paypal", StatusCode: http.StatusBadRequest}
	})
	if err == nil || calls != 1 {
		t.Fatalf("expected single call with error, got calls=%d err=%v", calls, err)
	}
}

func TestRetryRetriesServerErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{Service: "paystack", StatusCode: http.StatusBadGateway}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success on third call, got calls=%d err=%v", calls, err)
	}
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	want := &StatusError{Service: "sendgrid", StatusCode: http.StatusTooManyRequests}
	err := Retry(context.Background(), RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return want
	})
	if !errors.Is(err, want) || calls != 3 {
		t.Fatalf("expected 3 calls and last error, got calls=%d err=%v", calls, err)
	}
}

func TestIsRetryableError(t *testing.T) {
	if IsRetryableError(context.Canceled) {
		t.Fatalf("cancelled context must not retry")
	}
	if !IsRetryableError(context.DeadlineExceeded) {
		t.Fatalf("deadline should retry")
	}
	if !IsRetryableError(&StatusError{StatusCode: 503}) {
		t.Fatalf("503 should retry")
	}
}
