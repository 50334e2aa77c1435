package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeWEBP FileType = "webp"
)

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
	"image/webp":      FileTypeWEBP,
}

// UserRole defines what a signed-in user is allowed to do.
type UserRole string

const (
	RolePatient UserRole = "patient"
	RoleDoctor  UserRole = "doctor"
	RoleAdmin   UserRole = "admin"
)

// ValidUserRoles lists every assignable role.
var ValidUserRoles = map[UserRole]bool{
	RolePatient: true,
	RoleDoctor:  true,
	RoleAdmin:   true,
}

// AuthProvider identifies how a user signs in.
type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled: {AppointmentConfirmed, AppointmentCancelled},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCancelled},
}

// CanTransitionTo reports whether an appointment may move from s to next.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOpen reports whether the appointment still holds its slot.
func (s AppointmentStatus) IsOpen() bool {
	return s == AppointmentScheduled || s == AppointmentConfirmed
}

// ExtractionStatus records how a persisted record was derived from model output.
type ExtractionStatus string

const (
	ExtractionParsed       ExtractionStatus = "parsed"
	ExtractionFallbackUsed ExtractionStatus = "fallback_used"
	ExtractionRejected     ExtractionStatus = "rejected"
	// ExtractionNone marks records entered by hand without a completion call.
	ExtractionNone ExtractionStatus = "none"
)

// PrescriptionSource records what the doctor submitted.
type PrescriptionSource string

const (
	PrescriptionSourceText  PrescriptionSource = "text"
	PrescriptionSourceImage PrescriptionSource = "image"
	PrescriptionSourcePDF   PrescriptionSource = "pdf"
)

// ReadingType is the kind of vital sign a health reading captures.
type ReadingType string

const (
	ReadingBloodPressure ReadingType = "blood_pressure"
	ReadingBloodGlucose  ReadingType = "blood_glucose"
	ReadingHeartRate     ReadingType = "heart_rate"
	ReadingTemperature   ReadingType = "temperature"
	ReadingOxygen        ReadingType = "oxygen_saturation"
	ReadingWeight        ReadingType = "weight"
)

// ValidReadingTypes lists every accepted reading type.
var ValidReadingTypes = map[ReadingType]bool{
	ReadingBloodPressure: true,
	ReadingBloodGlucose:  true,
	ReadingHeartRate:     true,
	ReadingTemperature:   true,
	ReadingOxygen:        true,
	ReadingWeight:        true,
}

// ReadingSource records whether a reading was typed in or read from a photo.
type ReadingSource string

const (
	ReadingSourceManual ReadingSource = "manual"
	ReadingSourcePhoto  ReadingSource = "photo"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// AlertKind distinguishes a manual SOS from a detected fall.
type AlertKind string

const (
	AlertKindSOS  AlertKind = "sos"
	AlertKindFall AlertKind = "fall"
)

// AlertStatus is the notification outcome of an emergency alert.
type AlertStatus string

const (
	AlertPending      AlertStatus = "pending"
	AlertNotified     AlertStatus = "notified"
	AlertNotifyFailed AlertStatus = "notify_failed"
	AlertNoContact    AlertStatus = "no_contact"
)
