package maildelivery

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/coursehub-backend/internal/services"
)

func Workflow(ctx workflow.Context, msg services.MailMessage) error {
	if strings.TrimSpace(msg.To) == "" {
		return temporal.NewNonRetryableApplicationError("mail recipient required", "invalid_message", nil)
	}
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    5 * time.Minute,
			MaximumAttempts:    5,
		},
	})
	if err := workflow.ExecuteActivity(ctx, ActivitySendMail, msg).Get(ctx, nil); err != nil {
		return fmt.Errorf("mail delivery: %w", err)
	}
	return nil
}
