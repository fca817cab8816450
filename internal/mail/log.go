package mail

import (
	"context"
	"log/slog"
)

// LogMailer logs messages instead of delivering them. Used in development
// when no SMTP server is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a log-only mailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message and discards it.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	recipients := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		recipients = append(recipients, to.Address)
	}
	m.logger.Info("email (not sent, log-only mailer)",
		slog.Any("to", recipients),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Text))
	return nil
}
