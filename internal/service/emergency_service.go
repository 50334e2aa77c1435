package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"telehealth/internal/domain"
	"telehealth/internal/port"
	"telehealth/internal/sensor"
)

const (
	// DefaultFallThresholdG is used when no threshold is configured.
	DefaultFallThresholdG = 2.5
	notifyTimeout         = 10 * time.Second
)

// TriggerSOSInput is the DTO for a manual SOS.
type TriggerSOSInput struct {
	Latitude  *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Message   string   `json:"message" binding:"max=1000"`
}

// MotionInput is a batch of accelerometer samples from the app.
type MotionInput struct {
	Samples   []sensor.Sample `json:"samples" binding:"required,min=1,max=1000"`
	Latitude  *float64        `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64        `json:"longitude" binding:"omitempty,min=-180,max=180"`
}

// MotionResult reports whether a batch contained a fall.
type MotionResult struct {
	FallDetected bool                   `json:"fall_detected"`
	PeakG        float64                `json:"peak_g"`
	Alert        *domain.EmergencyAlert `json:"alert,omitempty"`
}

// EmergencyService defines the SOS and fall alert contract.
type EmergencyService interface {
	TriggerSOS(ctx context.Context, userID uuid.UUID, input TriggerSOSInput) (*domain.EmergencyAlert, error)
	ReportMotion(ctx context.Context, userID uuid.UUID, input MotionInput) (*MotionResult, error)
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.EmergencyAlert, int, error)
}

type emergencyService struct {
	repo        port.EmergencyAlertRepository
	patientRepo port.PatientRepository
	sender      port.EmailSender
	thresholdG  float64
	logger      *slog.Logger
}

// NewEmergencyService creates a new EmergencyService implementation.
func NewEmergencyService(
	repo port.EmergencyAlertRepository,
	patientRepo port.PatientRepository,
	sender port.EmailSender,
	fallThresholdG float64,
	logger *slog.Logger,
) EmergencyService {
	if fallThresholdG <= 0 {
		fallThresholdG = DefaultFallThresholdG
	}
	return &emergencyService{
		repo:        repo,
		patientRepo: patientRepo,
		sender:      sender,
		thresholdG:  fallThresholdG,
		logger:      logger,
	}
}

func (s *emergencyService) TriggerSOS(ctx context.Context, userID uuid.UUID, input TriggerSOSInput) (*domain.EmergencyAlert, error) {
	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return nil, err
	}
	return s.raise(ctx, patient, &domain.EmergencyAlert{
		PatientID: patient.ID,
		Kind:      domain.AlertKindSOS,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Message:   strings.TrimSpace(input.Message),
	})
}

func (s *emergencyService) ReportMotion(ctx context.Context, userID uuid.UUID, input MotionInput) (*MotionResult, error) {
	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return nil, err
	}

	_, peak, fell := sensor.DetectFall(input.Samples, s.thresholdG)
	result := &MotionResult{FallDetected: fell, PeakG: peak}
	if !fell {
		return result, nil
	}

	s.logger.Warn("emergency.ReportMotion: fall detected", "patient_id", patient.ID, "peak_g", peak)
	alert, err := s.raise(ctx, patient, &domain.EmergencyAlert{
		PatientID: patient.ID,
		Kind:      domain.AlertKindFall,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Message:   "Possible fall detected by the phone's motion sensor",
		PeakG:     &peak,
	})
	if err != nil {
		return nil, err
	}
	result.Alert = alert
	return result, nil
}

// raise stores the alert and then emails the emergency contact. A failed
// email is recorded on the alert; the alert itself still succeeds.
func (s *emergencyService) raise(ctx context.Context, patient *domain.Patient, alert *domain.EmergencyAlert) (*domain.EmergencyAlert, error) {
	alert.Status = domain.AlertPending
	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, err
	}

	status, notifyErr := s.notify(ctx, patient, alert)
	if err := s.repo.UpdateStatus(ctx, alert.ID, status, notifyErr); err != nil {
		s.logger.Error("emergency.raise: failed to record notification status",
			"alert_id", alert.ID, "status", status, "error", err)
	}
	alert.Status = status
	alert.NotifyError = notifyErr
	return alert, nil
}

func (s *emergencyService) notify(ctx context.Context, patient *domain.Patient, alert *domain.EmergencyAlert) (domain.AlertStatus, string) {
	if patient.EmergencyContactEmail == "" {
		s.logger.Warn("emergency.notify: patient has no emergency contact", "patient_id", patient.ID)
		return domain.AlertNoContact, ""
	}

	notifyCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	err := s.sender.SendEmergencyAlert(notifyCtx, port.EmergencyNotice{
		ToEmail:     patient.EmergencyContactEmail,
		ToName:      patient.EmergencyContactName,
		PatientName: patient.FullName,
		Kind:        string(alert.Kind),
		Message:     alert.Message,
		Latitude:    alert.Latitude,
		Longitude:   alert.Longitude,
		OccurredAt:  alert.CreatedAt,
	})
	if err != nil {
		s.logger.Error("emergency.notify: email failed", "alert_id", alert.ID, "error", err)
		return domain.AlertNotifyFailed, err.Error()
	}
	return domain.AlertNotified, ""
}

func (s *emergencyService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.EmergencyAlert, int, error) {
	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByPatient(ctx, patient.ID, offset, limit)
}
