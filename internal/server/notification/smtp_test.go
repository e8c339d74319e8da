package notification

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"credkeeper/internal/logging"
	"credkeeper/internal/server/config"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1})))
}

func TestFormatMessage(t *testing.T) {
	msg := formatMessage("noreply@x.com", "ana@x.com", "Password Reset Request", "click the link")

	assert.True(t, strings.HasPrefix(msg, "From: noreply@x.com\r\n"))
	assert.Contains(t, msg, "To: ana@x.com\r\n")
	assert.Contains(t, msg, "Subject: Password Reset Request\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\nclick the link\r\n"))
}

func TestNewSMTPSink_FromFallsBackToUsername(t *testing.T) {
	cfg := &config.Config{SMTPAddr: "smtp.example.com:587", SMTPUsername: "svc@x.com", SMTPTimeout: time.Second}
	s := NewSMTPSink(cfg, testLogger())
	assert.Equal(t, "svc@x.com", s.from)
}

func TestSMTPSink_SendUnreachableServer(t *testing.T) {
	cfg := &config.Config{SMTPAddr: "127.0.0.1:1", SMTPTimeout: 100 * time.Millisecond}
	s := NewSMTPSink(cfg, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := s.Send(ctx, "ana@x.com", "subject", "body")
	assert.Error(t, err)
}

func TestLogSink_Send(t *testing.T) {
	s := NewLogSink(testLogger())
	assert.NoError(t, s.Send(context.Background(), "ana@x.com", "subject", "body"))
}
