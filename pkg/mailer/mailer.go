package mailer

import (
	"context"
	"fmt"

	"github.com/mateovidal/catalogbase-backend/pkg/config"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
)

// Message is an outbound transactional email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers transactional mail. The transport is an external
// collaborator; deployments wire a provider-backed implementation here.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes the message to the structured log instead of sending it.
// Used in dev and tests.
type LogSender struct {
	logg *logger.Logger
	from string
}

func NewLogSender(cfg config.MailConfig, logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg, from: cfg.DefaultFrom}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"mail_from":    s.from,
			"mail_to":      msg.To,
			"mail_subject": msg.Subject,
		})
		s.logg.Info(ctx, "mail.dev_delivery")
	}
	return nil
}
