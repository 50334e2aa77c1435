package noop

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telehealth/internal/port"
)

func TestNoopSender_LogsAlert(t *testing.T) {
	var buf bytes.Buffer
	sender := NewNoopSender(slog.New(slog.NewTextHandler(&buf, nil)))

	err := sender.SendEmergencyAlert(context.Background(), port.EmergencyNotice{
		ToEmail:     "ravi@example.com",
		PatientName: "Asha",
		Kind:        "sos",
		OccurredAt:  time.Now(),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ravi@example.com")
	assert.Contains(t, buf.String(), "Asha needs help")
}
