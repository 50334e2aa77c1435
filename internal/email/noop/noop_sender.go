package noop

import (
	"context"
	"log/slog"

	"telehealth/internal/email"
	"telehealth/internal/port"
)

type noopSender struct {
	logger *slog.Logger
}

// NewNoopSender creates an EmailSender that logs alerts instead of delivering them.
func NewNoopSender(logger *slog.Logger) port.EmailSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &noopSender{logger: logger}
}

func (s *noopSender) SendEmergencyAlert(_ context.Context, notice port.EmergencyNotice) error {
	msg := email.ComposeEmergency(notice, "")
	s.logger.Warn("noop email: emergency alert not delivered",
		"to", notice.ToEmail,
		"subject", msg.Subject,
		"location", email.MapsURL(notice.Latitude, notice.Longitude),
	)
	return nil
}
