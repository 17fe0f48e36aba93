package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer writes emails to the log instead of delivering them.
// Used when no SMTP host is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a mailer that only logs
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendOTP logs the code
func (m *LogMailer) SendOTP(_ context.Context, to, name, code string) error {
	m.logger.Info("otp email (not delivered)",
		zap.String("to", to),
		zap.String("name", name),
		zap.String("code", code),
	)
	return nil
}

// SendWelcome logs the greeting
func (m *LogMailer) SendWelcome(_ context.Context, to, name string) error {
	m.logger.Info("welcome email (not delivered)",
		zap.String("to", to),
		zap.String("name", name),
	)
	return nil
}
