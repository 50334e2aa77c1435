package email_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"telehealth/internal/email"
	"telehealth/internal/port"
)

func ptr(v float64) *float64 { return &v }

func TestComposeEmergency_Fall(t *testing.T) {
	msg := email.ComposeEmergency(port.EmergencyNotice{
		ToEmail:     "ravi@example.com",
		ToName:      "Ravi",
		PatientName: "Asha <Rao>",
		Kind:        "fall",
		Latitude:    ptr(12.9716),
		Longitude:   ptr(77.5946),
		OccurredAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}, "CareLink")

	assert.Equal(t, "[Fall detected] Asha <Rao> needs help", msg.Subject)
	assert.Contains(t, msg.Text, "may have fallen")
	assert.Contains(t, msg.Text, "https://maps.google.com/?q=12.971600,77.594600")
	assert.Contains(t, msg.HTML, "Asha &lt;Rao&gt;")
	assert.NotContains(t, msg.HTML, "<Rao>")
	assert.Contains(t, msg.HTML, "CareLink")
}

func TestComposeEmergency_SOSWithoutLocation(t *testing.T) {
	msg := email.ComposeEmergency(port.EmergencyNotice{
		ToName:      "Ravi",
		PatientName: "Asha",
		Kind:        "sos",
		Message:     "chest pain",
		OccurredAt:  time.Now(),
	}, "")

	assert.Equal(t, "[SOS] Asha needs help", msg.Subject)
	assert.Contains(t, msg.Text, "pressed the SOS button")
	assert.Contains(t, msg.Text, "Message: chest pain")
	assert.NotContains(t, msg.Text, "maps.google.com")
	assert.Contains(t, msg.Text, "Telehealth")
}

func TestMapsURL_NeedsBothCoordinates(t *testing.T) {
	assert.Empty(t, email.MapsURL(ptr(1), nil))
	assert.Empty(t, email.MapsURL(nil, nil))
}
