package sms

import (
	"context"
	"log/slog"
)

// Sender delivers text messages to a mobile number.
type Sender interface {
	Send(ctx context.Context, mobile, message string) error
}

// LogSender is a stub implementation that writes messages to the logger.
// Real gateway delivery is a deployment concern behind the same interface.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a logging SMS stub.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send writes the message to the structured logger.
func (s *LogSender) Send(_ context.Context, mobile, message string) error {
	if s == nil || s.logger == nil {
		return nil
	}
	s.logger.Info("sms", "mobile", mobile, "message", message)
	return nil
}
