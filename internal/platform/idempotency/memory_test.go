package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore().(*memoryStore)
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }

	rec, err := s.Begin(ctx, "k", time.Minute)
	if err != nil || rec != nil {
		t.Fatalf("first Begin should claim: rec=%v err=%v", rec, err)
	}
	if _, err := s.Begin(ctx, "k", time.Minute); !errors.Is(err, ErrInProgress) {
		t.Fatalf("concurrent Begin should be in progress, got %v", err)
	}

	if err := s.Complete(ctx, "k", Record{Status: 201, Body: []byte(`{"ok":true}`)}, time.Hour); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	rec, err = s.Begin(ctx, "k", time.Minute)
	if err != nil || rec == nil || rec.Status != 201 {
		t.Fatalf("expected stored record, got %v %v", rec, err)
	}

	now = now.Add(2 * time.Hour)
	rec, err = s.Begin(ctx, "k", time.Minute)
	if err != nil || rec != nil {
		t.Fatalf("expired record should be reclaimable: %v %v", rec, err)
	}
	_ = s.Release(ctx, "k")
	if rec, err := s.Begin(ctx, "k", time.Minute); err != nil || rec != nil {
		t.Fatalf("released key should be claimable: %v %v", rec, err)
	}
}
