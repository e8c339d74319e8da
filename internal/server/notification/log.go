package notification

import (
	"context"

	"credkeeper/internal/logging"
)

// LogSink writes messages to the log instead of delivering them. Used in
// development when no SMTP server is configured.
type LogSink struct {
	logger logging.Logger
}

func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logger.With("module", "log_sink")}
}

func (s *LogSink) Send(ctx context.Context, to, subject, body string) error {
	s.logger.Info(ctx, "notification (not delivered)", "to", to, "subject", subject, "body", body)
	return nil
}
