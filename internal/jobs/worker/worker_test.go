package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/jobs/runtime"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
)

type stubHandler struct {
	jobType string
	err     error
	panic   bool
	runs    int
}

func (h *stubHandler) Type() string { return h.jobType }

func (h *stubHandler) Run(*runtime.Context) error {
	h.runs++
	if h.panic {
		panic("boom")
	}
	return h.err
}

func newWorker(t *testing.T, h runtime.Handler, retryDelay time.Duration) (*Worker, repos.JobRunRepo) {
	t.Helper()
	db := testutil.DB(t)
	repo := repos.NewJobRunRepo(db, testutil.Logger(t))
	reg := runtime.NewRegistry()
	if h != nil {
		if err := reg.Register(h); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	w := NewWorker(testutil.Logger(t), repo, reg, Config{MaxAttempts: 2, RetryDelay: retryDelay, StaleRunning: time.Hour})
	return w, repo
}

func enqueue(t *testing.T, repo repos.JobRunRepo, jobType string) {
	t.Helper()
	if _, err := repo.Create(dbctx.New(context.Background()), []*types.JobRun{{JobType: jobType, Payload: []byte(`{"trace_id":"t-1"}`)}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func count(t *testing.T, repo repos.JobRunRepo, status string) int64 {
	t.Helper()
	n, err := repo.CountByStatus(dbctx.New(context.Background()), "", status)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	return n
}

func TestRunOnceMarksSuccess(t *testing.T) {
	h := &stubHandler{jobType: "noop"}
	w, repo := newWorker(t, h, time.Hour)
	enqueue(t, repo, "noop")

	if !w.RunOnce(context.Background(), 1) {
		t.Fatalf("expected a job to be claimed")
	}
	if h.runs != 1 {
		t.Fatalf("expected handler to run once, got %d", h.runs)
	}
	if got := count(t, repo, types.JobStatusSucceeded); got != 1 {
		t.Fatalf("expected 1 succeeded job, got %d", got)
	}
	if w.RunOnce(context.Background(), 1) {
		t.Fatalf("expected empty queue")
	}
}

func TestRunOnceRetriesThenGoesDead(t *testing.T) {
	h := &stubHandler{jobType: "flaky", err: errors.New("smtp down")}
	w, repo := newWorker(t, h, 0)
	enqueue(t, repo, "flaky")

	w.RunOnce(context.Background(), 1)
	if got := count(t, repo, types.JobStatusFailed); got != 1 {
		t.Fatalf("expected failed after first attempt, got %d", got)
	}
	w.RunOnce(context.Background(), 1)
	if got := count(t, repo, types.JobStatusDead); got != 1 {
		t.Fatalf("expected dead after max attempts, got %d", got)
	}
	if h.runs != 2 {
		t.Fatalf("expected 2 runs, got %d", h.runs)
	}
}

func TestRunOnceRecoversPanicsAndUnknownTypes(t *testing.T) {
	h := &stubHandler{jobType: "explode", panic: true}
	w, repo := newWorker(t, h, time.Hour)
	enqueue(t, repo, "explode")
	enqueue(t, repo, "unknown")

	w.RunOnce(context.Background(), 1)
	w.RunOnce(context.Background(), 1)
	if got := count(t, repo, types.JobStatusFailed); got != 2 {
		t.Fatalf("expected both jobs failed, got %d", got)
	}
}
