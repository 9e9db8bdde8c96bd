package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/platform/sendgrid"
)

// MailMessage is the payload stored on send_email jobs.
type MailMessage struct {
	To       string `json:"to"`
	ToName   string `json:"toName,omitempty"`
	Subject  string `json:"subject"`
	Text     string `json:"text,omitempty"`
	HTML     string `json:"html,omitempty"`
	Category string `json:"category,omitempty"`
}

type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

type sendgridMailer struct {
	log    *logger.Logger
	client sendgrid.Client
	from   sendgrid.EmailAddress
}

func NewSendGridMailer(log *logger.Logger, client sendgrid.Client, fromEmail, fromName string) Mailer {
	return &sendgridMailer{
		log:    log.With("service", "SendGridMailer"),
		client: client,
		from:   sendgrid.EmailAddress{Email: fromEmail, Name: fromName},
	}
}

func (m *sendgridMailer) Send(ctx context.Context, msg MailMessage) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("mail recipient required")
	}
	req := sendgrid.SendEmailRequest{
		From:    m.from,
		To:      []sendgrid.EmailAddress{{Email: msg.To, Name: msg.ToName}},
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	}
	if msg.Category != "" {
		req.Categories = []string{msg.Category}
	}
	res, err := m.client.Send(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	m.log.Debug("Mail sent", "category", msg.Category, "message_id", res.MessageID)
	return nil
}

type logMailer struct {
	log *logger.Logger
}

// NewLogMailer only logs messages; used when SendGrid is not configured.
func NewLogMailer(log *logger.Logger) Mailer {
	return &logMailer{log: log.With("service", "LogMailer")}
}

func (m *logMailer) Send(_ context.Context, msg MailMessage) error {
	m.log.Info("Mail delivery skipped (no provider)", "email", msg.To, "subject", msg.Subject, "category", msg.Category)
	return nil
}
