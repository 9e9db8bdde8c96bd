package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/yungbote/coursehub-backend/internal/data/repos"
	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/dbctx"
	"github.com/yungbote/coursehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

// SendEmailPayload is the job_run payload for send_email jobs.
type SendEmailPayload struct {
	Message   MailMessage `json:"message"`
	TraceID   string      `json:"trace_id,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// MailOutbox queues mail as send_email jobs so it commits or rolls back with the caller.
type MailOutbox interface {
	Enqueue(dbc dbctx.Context, msgs ...MailMessage) error
}

type mailOutbox struct {
	log  *logger.Logger
	jobs repos.JobRunRepo
}

func NewMailOutbox(log *logger.Logger, jobs repos.JobRunRepo) MailOutbox {
	return &mailOutbox{log: log.With("service", "MailOutbox"), jobs: jobs}
}

func (o *mailOutbox) Enqueue(dbc dbctx.Context, msgs ...MailMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	var traceID, requestID string
	if td := ctxutil.GetTraceData(ctxutil.Default(dbc.Ctx)); td != nil {
		traceID, requestID = td.TraceID, td.RequestID
	}
	rows := make([]*types.JobRun, 0, len(msgs))
	for _, m := range msgs {
		raw, err := json.Marshal(SendEmailPayload{Message: m, TraceID: traceID, RequestID: requestID})
		if err != nil {
			return fmt.Errorf("encode mail payload: %w", err)
		}
		rows = append(rows, &types.JobRun{
			JobType: types.JobTypeSendEmail,
			Status:  types.JobStatusQueued,
			Payload: datatypes.JSON(raw),
		})
	}
	if _, err := o.jobs.Create(dbc, rows); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	o.log.Debug("Mail queued", "count", len(rows), "request_id", requestID)
	return nil
}
