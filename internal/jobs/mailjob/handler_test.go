package mailjob

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/jobs/runtime"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type fakeMailer struct {
	err  error
	sent []services.MailMessage
	ctx  context.Context
}

func (m *fakeMailer) Send(ctx context.Context, msg services.MailMessage) error {
	m.ctx = ctx
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeDispatcher struct {
	jobIDs []string
}

func (d *fakeDispatcher) Deliver(_ context.Context, jobID string, _ services.MailMessage) error {
	d.jobIDs = append(d.jobIDs, jobID)
	return nil
}

func claim(t *testing.T, repo repos.JobRunRepo, payload services.SendEmailPayload) *runtime.Context {
	t.Helper()
	raw, _ := json.Marshal(payload)
	dbc := dbctx.New(context.Background())
	if _, err := repo.Create(dbc, []*types.JobRun{{JobType: types.JobTypeSendEmail, Payload: raw}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	job, err := repo.ClaimNextRunnable(dbc, 3, 0, 0)
	if err != nil || job == nil {
		t.Fatalf("claim: job=%v err=%v", job, err)
	}
	return runtime.NewContext(context.Background(), job, repo, 3)
}

func TestHandlerSendsAndPropagatesTrace(t *testing.T) {
	db := testutil.DB(t)
	repo := repos.NewJobRunRepo(db, testutil.Logger(t))
	mailer := &fakeMailer{}
	h := New(testutil.Logger(t), mailer, nil)

	jc := claim(t, repo, services.SendEmailPayload{
		Message:   services.MailMessage{To: "ada@example.com", Subject: "Reset your password"},
		RequestID: "req-7",
	})
	if err := h.Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].Subject != "Reset your password" {
		t.Fatalf("unexpected sent: %+v", mailer.sent)
	}
	if td := ctxutil.GetTraceData(mailer.ctx); td == nil || td.RequestID != "req-7" {
		t.Fatalf("expected request id on context, got %+v", td)
	}
	n, _ := repo.CountByStatus(dbctx.New(context.Background()), types.JobTypeSendEmail, types.JobStatusSucceeded)
	if n != 1 {
		t.Fatalf("expected job succeeded, got %d", n)
	}
}

func TestHandlerFailureMarksJobFailed(t *testing.T) {
	db := testutil.DB(t)
	repo := repos.NewJobRunRepo(db, testutil.Logger(t))
	h := New(testutil.Logger(t), &fakeMailer{err: errors.New("503")}, nil)

	jc := claim(t, repo, services.SendEmailPayload{Message: services.MailMessage{To: "ada@example.com"}})
	_ = h.Run(jc)
	if !jc.Done() {
		t.Fatalf("expected handler to report outcome")
	}
	n, _ := repo.CountByStatus(dbctx.New(context.Background()), types.JobTypeSendEmail, types.JobStatusFailed)
	if n != 1 {
		t.Fatalf("expected job failed, got %d", n)
	}
}

func TestHandlerUsesDispatcherWhenSet(t *testing.T) {
	db := testutil.DB(t)
	repo := repos.NewJobRunRepo(db, testutil.Logger(t))
	mailer := &fakeMailer{}
	d := &fakeDispatcher{}
	h := New(testutil.Logger(t), mailer, d)

	jc := claim(t, repo, services.SendEmailPayload{Message: services.MailMessage{To: "ada@example.com"}})
	if err := h.Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(d.jobIDs) != 1 || d.jobIDs[0] != jc.Job.ID.String() {
		t.Fatalf("expected dispatch keyed by job id, got %v", d.jobIDs)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("mailer should not be used when dispatching")
	}
}
