package port

import (
	"context"
	"time"
)

// EmergencyNotice carries what an emergency contact is told about an alert.
type EmergencyNotice struct {
	ToEmail     string
	ToName      string
	PatientName string
	Kind        string
	Message     string
	Latitude    *float64
	Longitude   *float64
	OccurredAt  time.Time
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendEmergencyAlert(ctx context.Context, notice EmergencyNotice) error
}
