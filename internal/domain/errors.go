package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrUserInactive            = errors.New("user is inactive")
	ErrDuplicateEmail          = errors.New("email already registered")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrFileTooLarge            = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed            = errors.New("file upload to storage failed")
	ErrSocialAuthTokenInvalid  = errors.New("invalid social auth token")
	ErrSocialAuthUnavailable   = errors.New("social login is not configured")
	ErrPasswordLoginNotAllowed = errors.New("this account uses social login")

	ErrPatientProfileMissing = errors.New("patient profile not found for user")
	ErrDoctorProfileMissing  = errors.New("doctor profile not found for user")
	ErrDuplicateProfile      = errors.New("profile already exists for user")

	ErrDoctorUnavailable       = errors.New("doctor is not accepting appointments")
	ErrAppointmentInPast       = errors.New("appointment time must be in the future")
	ErrSlotTaken               = errors.New("doctor already has an appointment at this time")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
	ErrInvalidReading          = errors.New("invalid health reading")
	ErrEmptyMessage            = errors.New("message must not be empty")
	ErrEmptyPrescription       = errors.New("prescription text or file is required")
	ErrInvalidExportFormat     = errors.New("unsupported export format")

	// ErrCompletionUnavailable wraps transport, auth, and timeout failures of the completion endpoint.
	ErrCompletionUnavailable = errors.New("completion service unavailable")
	// ErrLowConfidenceReading is returned when a device photo could not be read reliably.
	ErrLowConfidenceReading = errors.New("reading could not be extracted reliably, please take a clearer photo")
	// ErrConstraintViolation wraps a data store constraint failure; its message is shown to the user.
	ErrConstraintViolation = errors.New("constraint violation")
)
