package idempotency

import (
	"context"
	"errors"
	"time"
)

var ErrInProgress = errors.New("idempotency key in use")

// Record is a stored response replayed for repeated requests.
type Record struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

type Store interface {
	// Begin claims key. It returns the stored record for a completed key,
	// ErrInProgress while another request holds it, or (nil, nil) once claimed.
	Begin(ctx context.Context, key string, lockTTL time.Duration) (*Record, error)
	Complete(ctx context.Context, key string, rec Record, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}
