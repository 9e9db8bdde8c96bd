package maildelivery

import (
	"context"
	"fmt"

	"go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/coursehub-backend/internal/services"
)

// Dispatcher runs a mail delivery workflow and waits for its outcome.
type Dispatcher interface {
	Deliver(ctx context.Context, jobID string, msg services.MailMessage) error
}

type dispatcher struct {
	tc        temporalsdkclient.Client
	taskQueue string
}

func NewDispatcher(tc temporalsdkclient.Client, taskQueue string) Dispatcher {
	return &dispatcher{tc: tc, taskQueue: taskQueue}
}

func (d *dispatcher) Deliver(ctx context.Context, jobID string, msg services.MailMessage) error {
	run, err := d.tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:                       WorkflowID(jobID),
		TaskQueue:                d.taskQueue,
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
		WorkflowIDConflictPolicy: enums.WORKFLOW_ID_CONFLICT_POLICY_USE_EXISTING,
	}, WorkflowName, msg)
	if err != nil {
		return fmt.Errorf("start mail workflow: %w", err)
	}
	if err := run.Get(ctx, nil); err != nil {
		return fmt.Errorf("mail workflow %s: %w", run.GetID(), err)
	}
	return nil
}
