package maildelivery

import (
	"context"
	"errors"
	"testing"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/coursehub-backend/internal/services"
)

type recordingMailer struct {
	failures int
	sent     []services.MailMessage
}

func (m *recordingMailer) Send(_ context.Context, msg services.MailMessage) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("provider unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newEnv(t *testing.T, mailer services.Mailer) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(Workflow, workflow.RegisterOptions{Name: WorkflowName})
	acts := &Activities{Mailer: mailer}
	env.RegisterActivityWithOptions(acts.Send, activity.RegisterOptions{Name: ActivitySendMail})
	return env
}

func TestWorkflowRetriesActivityUntilSent(t *testing.T) {
	mailer := &recordingMailer{failures: 2}
	env := newEnv(t, mailer)
	env.ExecuteWorkflow(WorkflowName, services.MailMessage{To: "ada@example.com", Subject: "hi"})
	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To != "ada@example.com" {
		t.Fatalf("expected one delivered message, got %+v", mailer.sent)
	}
}

func TestWorkflowRejectsMissingRecipient(t *testing.T) {
	mailer := &recordingMailer{}
	env := newEnv(t, mailer)
	env.ExecuteWorkflow(WorkflowName, services.MailMessage{Subject: "hi"})
	if env.GetWorkflowError() == nil {
		t.Fatalf("expected workflow error")
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected nothing sent")
	}
}
