package maildelivery

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type Activities struct {
	Log    *logger.Logger
	Mailer services.Mailer
}

func (a *Activities) Send(ctx context.Context, msg services.MailMessage) error {
	info := activity.GetInfo(ctx)
	if a.Log != nil {
		a.Log.Debug("Sending mail", "workflow_id", info.WorkflowExecution.ID, "attempt", info.Attempt, "category", msg.Category)
	}
	return a.Mailer.Send(ctx, msg)
}
