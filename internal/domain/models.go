package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User is an authenticated account. Patients and doctors each own one.
type User struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	Email          string       `db:"email" json:"email"`
	PasswordHash   string       `db:"password_hash" json:"-"`
	FullName       string       `db:"full_name" json:"full_name"`
	Role           UserRole     `db:"role" json:"role"`
	IsActive       bool         `db:"is_active" json:"is_active"`
	AuthProvider   AuthProvider `db:"auth_provider" json:"auth_provider"`
	ProviderUserID *string      `db:"provider_user_id" json:"-"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// Patient holds the medical profile of a patient user.
type Patient struct {
	ID                    uuid.UUID      `db:"id" json:"id"`
	UserID                uuid.UUID      `db:"user_id" json:"user_id"`
	FullName              string         `db:"full_name" json:"full_name"`
	DateOfBirth           *time.Time     `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender                string         `db:"gender" json:"gender"`
	Phone                 string         `db:"phone" json:"phone"`
	BloodGroup            string         `db:"blood_group" json:"blood_group"`
	Allergies             pq.StringArray `db:"allergies" json:"allergies"`
	EmergencyContactName  string         `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactEmail string         `db:"emergency_contact_email" json:"emergency_contact_email"`
	EmergencyContactPhone string         `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// Doctor holds the public directory profile of a doctor user.
type Doctor struct {
	ID              uuid.UUID `db:"id" json:"id"`
	UserID          uuid.UUID `db:"user_id" json:"user_id"`
	FullName        string    `db:"full_name" json:"full_name"`
	Specialization  string    `db:"specialization" json:"specialization"`
	LicenseNumber   string    `db:"license_number" json:"license_number"`
	Bio             string    `db:"bio" json:"bio"`
	ConsultationFee float64   `db:"consultation_fee" json:"consultation_fee"`
	IsAvailable     bool      `db:"is_available" json:"is_available"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Appointment is a booked consultation slot between a patient and a doctor.
type Appointment struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	ScheduledAt     time.Time         `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	EndsAt          time.Time         `db:"ends_at" json:"ends_at"`
	Reason          string            `db:"reason" json:"reason"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Notes           string            `db:"notes" json:"notes"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// Prescription is a doctor's prescription, structured from free text or an uploaded scan.
type Prescription struct {
	ID               uuid.UUID          `db:"id" json:"id"`
	PatientID        uuid.UUID          `db:"patient_id" json:"patient_id"`
	DoctorID         uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	AppointmentID    *uuid.UUID         `db:"appointment_id" json:"appointment_id,omitempty"`
	Source           PrescriptionSource `db:"source" json:"source"`
	RawText          string             `db:"raw_text" json:"raw_text"`
	Medicines        pq.StringArray     `db:"medicines" json:"medicines"`
	Instructions     string             `db:"instructions" json:"instructions"`
	ExtractionStatus ExtractionStatus   `db:"extraction_status" json:"extraction_status"`
	ModelUsed        string             `db:"model_used" json:"model_used"`
	S3Key            string             `db:"s3_key" json:"-"`
	ContentType      string             `db:"content_type" json:"content_type,omitempty"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updated_at"`
}

// HealthReading is a single vital-sign measurement.
// Blood pressure uses Systolic/Diastolic; every other type uses Value.
type HealthReading struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	PatientID        uuid.UUID        `db:"patient_id" json:"patient_id"`
	Type             ReadingType      `db:"type" json:"type"`
	Systolic         *float64         `db:"systolic" json:"systolic,omitempty"`
	Diastolic        *float64         `db:"diastolic" json:"diastolic,omitempty"`
	Value            *float64         `db:"value" json:"value,omitempty"`
	Unit             string           `db:"unit" json:"unit"`
	Confidence       *float64         `db:"confidence" json:"confidence,omitempty"`
	Source           ReadingSource    `db:"source" json:"source"`
	ExtractionStatus ExtractionStatus `db:"extraction_status" json:"extraction_status"`
	S3Key            string           `db:"s3_key" json:"-"`
	RecordedAt       time.Time        `db:"recorded_at" json:"recorded_at"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}

// ChatMessage is one turn of a patient's conversation with the assistant.
type ChatMessage struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	PatientID         uuid.UUID        `db:"patient_id" json:"patient_id"`
	Role              ChatRole         `db:"role" json:"role"`
	Content           string           `db:"content" json:"content"`
	FollowUpQuestions pq.StringArray   `db:"follow_up_questions" json:"follow_up_questions"`
	Urgent            bool             `db:"urgent" json:"urgent"`
	ExtractionStatus  ExtractionStatus `db:"extraction_status" json:"extraction_status"`
	ModelUsed         string           `db:"model_used" json:"model_used,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}

// EmergencyAlert records an SOS or detected fall and whether the contact was notified.
type EmergencyAlert struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	PatientID   uuid.UUID   `db:"patient_id" json:"patient_id"`
	Kind        AlertKind   `db:"kind" json:"kind"`
	Latitude    *float64    `db:"latitude" json:"latitude,omitempty"`
	Longitude   *float64    `db:"longitude" json:"longitude,omitempty"`
	Message     string      `db:"message" json:"message"`
	PeakG       *float64    `db:"peak_g" json:"peak_g,omitempty"`
	Status      AlertStatus `db:"status" json:"status"`
	NotifyError string      `db:"notify_error" json:"-"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}
