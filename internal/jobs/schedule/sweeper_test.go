package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

type countingExpirer struct {
	calls     atomic.Int32
	olderThan time.Duration
}

func (c *countingExpirer) ExpireStale(_ context.Context, olderThan time.Duration) (int, error) {
	c.calls.Add(1)
	c.olderThan = olderThan
	return 1, nil
}

func TestNewSweeperRejectsBadSpec(t *testing.T) {
	if _, err := NewSweeper(logger.Nop(), &countingExpirer{}, "every now and then", time.Hour); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestSweepUsesConfiguredAge(t *testing.T) {
	exp := &countingExpirer{}
	s, err := NewSweeper(logger.Nop(), exp, "@every 1h", 2*time.Hour)
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}
	s.sweep()
	if exp.calls.Load() != 1 || exp.olderThan != 2*time.Hour {
		t.Fatalf("expected one sweep with 2h, got calls=%d olderThan=%s", exp.calls.Load(), exp.olderThan)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Start()
	s.Stop(ctx)
}
