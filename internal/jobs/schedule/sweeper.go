package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

// OrderExpirer cancels pending orders created before now-olderThan.
type OrderExpirer interface {
	ExpireStale(ctx context.Context, olderThan time.Duration) (int, error)
}

type Sweeper struct {
	log       *logger.Logger
	cron      *cron.Cron
	orders    OrderExpirer
	olderThan time.Duration
}

// NewSweeper schedules the pending-order sweep on spec (a cron expression or "@every 15m").
func NewSweeper(log *logger.Logger, orders OrderExpirer, spec string, olderThan time.Duration) (*Sweeper, error) {
	s := &Sweeper{log: log.With("component", "OrderSweeper"), orders: orders, olderThan: olderThan}
	s.cron = cron.New(cron.WithChain(cron.Recover(cronLogger{s.log}), cron.SkipIfStillRunning(cronLogger{s.log})))
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return nil, fmt.Errorf("schedule order sweep %q: %w", spec, err)
	}
	return s, nil
}

func (s *Sweeper) Start() { s.cron.Start() }

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Sweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	n, err := s.orders.ExpireStale(ctx, s.olderThan)
	if err != nil {
		s.log.Warn("Pending order sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("Expired stale pending orders", "count", n)
	}
}

type cronLogger struct{ log *logger.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
