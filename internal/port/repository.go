package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"telehealth/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByProviderID(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	LinkProvider(ctx context.Context, userID uuid.UUID, provider domain.AuthProvider, providerUserID string) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// PatientRepository defines the contract for patient profile persistence.
type PatientRepository interface {
	Create(ctx context.Context, patient *domain.Patient) error
	GetByID(ctx context.Context, patientID uuid.UUID) (*domain.Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Patient, error)
	List(ctx context.Context, offset, limit int) ([]domain.Patient, int, error)
	Update(ctx context.Context, patient *domain.Patient) error
}

// DoctorFilter narrows a doctor directory listing.
type DoctorFilter struct {
	Specialization string
	AvailableOnly  bool
}

// DoctorRepository defines the contract for doctor profile persistence.
type DoctorRepository interface {
	Create(ctx context.Context, doctor *domain.Doctor) error
	GetByID(ctx context.Context, doctorID uuid.UUID) (*domain.Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Doctor, error)
	List(ctx context.Context, filter DoctorFilter, offset, limit int) ([]domain.Doctor, int, error)
	Update(ctx context.Context, doctor *domain.Doctor) error
}

// AppointmentRepository defines the contract for appointment persistence.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, apptID uuid.UUID) (*domain.Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]domain.Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, offset, limit int) ([]domain.Appointment, int, error)
	ListUpcomingByPatient(ctx context.Context, patientID uuid.UUID, from time.Time, limit int) ([]domain.Appointment, error)
	// HasConflict reports whether the doctor has an open appointment overlapping
	// [start, start+duration). excludeID skips the appointment being rescheduled.
	HasConflict(ctx context.Context, doctorID uuid.UUID, start time.Time, durationMinutes int, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, appt *domain.Appointment) error
}

// PrescriptionRepository defines the contract for prescription persistence.
type PrescriptionRepository interface {
	Create(ctx context.Context, rx *domain.Prescription) error
	GetByID(ctx context.Context, rxID uuid.UUID) (*domain.Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]domain.Prescription, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, offset, limit int) ([]domain.Prescription, int, error)
}

// ReadingFilter narrows a health reading listing. Zero values match everything.
type ReadingFilter struct {
	Type domain.ReadingType
	From *time.Time
	To   *time.Time
}

// HealthReadingRepository defines the contract for health reading persistence.
type HealthReadingRepository interface {
	Create(ctx context.Context, reading *domain.HealthReading) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, filter ReadingFilter, offset, limit int) ([]domain.HealthReading, int, error)
	ListAllByPatient(ctx context.Context, patientID uuid.UUID, filter ReadingFilter) ([]domain.HealthReading, error)
	Delete(ctx context.Context, patientID, readingID uuid.UUID) error
}

// ChatMessageRepository defines the contract for chat history persistence.
type ChatMessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	// ListRecent returns the newest limit messages in chronological order.
	ListRecent(ctx context.Context, patientID uuid.UUID, limit int) ([]domain.ChatMessage, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]domain.ChatMessage, int, error)
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) error
}

// EmergencyAlertRepository defines the contract for emergency alert persistence.
type EmergencyAlertRepository interface {
	Create(ctx context.Context, alert *domain.EmergencyAlert) error
	UpdateStatus(ctx context.Context, alertID uuid.UUID, status domain.AlertStatus, notifyErr string) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]domain.EmergencyAlert, int, error)
}
