package notify

import (
	"context"
	"log/slog"
)

// LoggingMailer is the in-process Notifier implementation. Delivery through
// an actual mail provider happens outside this service; the adapter records
// the outbound message so operators can trace what would have been sent.
type LoggingMailer struct {
	logger *slog.Logger
}

// NewLoggingMailer constructs a mailer that logs outbound notifications.
func NewLoggingMailer(logger *slog.Logger) *LoggingMailer {
	return &LoggingMailer{logger: logger}
}

func (m *LoggingMailer) Send(ctx context.Context, address, subject, body string) error {
	m.logger.InfoContext(ctx, "notification dispatched",
		"module", "notify",
		"layer", "adapter",
		"operation", "send",
		"outcome", "success",
		"address", address,
		"subject", subject,
		"body_bytes", len(body),
	)
	return nil
}
