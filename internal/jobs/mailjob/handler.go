package mailjob

import (
	"fmt"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/jobs/runtime"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/services"
	"github.com/yungbote/coursehub-backend/internal/temporalx/maildelivery"
)

// Handler delivers send_email jobs, through Temporal when a dispatcher is set.
type Handler struct {
	log        *logger.Logger
	mailer     services.Mailer
	dispatcher maildelivery.Dispatcher
}

func New(log *logger.Logger, mailer services.Mailer, dispatcher maildelivery.Dispatcher) *Handler {
	return &Handler{log: log.With("handler", "SendEmail"), mailer: mailer, dispatcher: dispatcher}
}

func (h *Handler) Type() string { return types.JobTypeSendEmail }

func (h *Handler) Run(jc *runtime.Context) error {
	var p services.SendEmailPayload
	if err := jc.Decode(&p); err != nil {
		return jc.Fail("decode", err)
	}
	if p.Message.To == "" {
		return jc.Fail("validate", fmt.Errorf("mail recipient required"))
	}
	var err error
	if h.dispatcher != nil {
		err = h.dispatcher.Deliver(jc.Ctx, jc.Job.ID.String(), p.Message)
	} else {
		err = h.mailer.Send(jc.Ctx, p.Message)
	}
	if err != nil {
		h.log.Warn("Mail delivery failed", "job_id", jc.Job.ID, "attempt", jc.Job.Attempts, "request_id", p.RequestID, "error", err)
		return jc.Fail("send", err)
	}
	return jc.Succeed()
}
