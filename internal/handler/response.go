package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"telehealth/internal/completion"
	"telehealth/internal/domain"
	"telehealth/internal/middleware"
	"telehealth/internal/service"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var rateLimited *completion.RateLimitError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, png, webp"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", "email already registered"
	case errors.Is(err, domain.ErrDuplicateProfile):
		return http.StatusConflict, "DUPLICATE_PROFILE", "a profile already exists for this user"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrSocialAuthTokenInvalid):
		return http.StatusUnauthorized, "INVALID_SOCIAL_TOKEN", "social authentication token is invalid or expired"
	case errors.Is(err, domain.ErrSocialAuthUnavailable):
		return http.StatusNotFound, "SOCIAL_LOGIN_DISABLED", "social login is not enabled for this provider"
	case errors.Is(err, domain.ErrPasswordLoginNotAllowed):
		return http.StatusBadRequest, "PASSWORD_LOGIN_NOT_ALLOWED", "this account uses social login; use your social provider to sign in"
	case errors.Is(err, domain.ErrPatientProfileMissing):
		return http.StatusForbidden, "PATIENT_PROFILE_MISSING", "this action requires a patient profile"
	case errors.Is(err, domain.ErrDoctorProfileMissing):
		return http.StatusForbidden, "DOCTOR_PROFILE_MISSING", "this action requires a doctor profile"
	case errors.Is(err, domain.ErrDoctorUnavailable):
		return http.StatusConflict, "DOCTOR_UNAVAILABLE", "doctor is not accepting appointments"
	case errors.Is(err, domain.ErrAppointmentInPast):
		return http.StatusBadRequest, "APPOINTMENT_IN_PAST", "appointment time must be in the future"
	case errors.Is(err, domain.ErrSlotTaken):
		return http.StatusConflict, "SLOT_TAKEN", "doctor already has an appointment at this time"
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusConflict, "INVALID_STATUS_TRANSITION", "appointment cannot move to the requested status"
	case errors.Is(err, domain.ErrInvalidReading):
		return http.StatusBadRequest, "INVALID_READING", readingMessage(err)
	case errors.Is(err, domain.ErrLowConfidenceReading):
		return http.StatusUnprocessableEntity, "LOW_CONFIDENCE", domain.ErrLowConfidenceReading.Error()
	case errors.Is(err, domain.ErrEmptyMessage):
		return http.StatusBadRequest, "EMPTY_MESSAGE", "message must not be empty"
	case errors.Is(err, domain.ErrEmptyPrescription):
		return http.StatusBadRequest, "EMPTY_PRESCRIPTION", "prescription text or file is required"
	case errors.Is(err, domain.ErrInvalidExportFormat):
		return http.StatusBadRequest, "INVALID_EXPORT_FORMAT", "unsupported export format; allowed: csv, xlsx"
	case errors.Is(err, domain.ErrConstraintViolation):
		return http.StatusConflict, "CONSTRAINT_VIOLATION", fromSentinel(err, domain.ErrConstraintViolation)
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests, "COMPLETION_RATE_LIMITED",
			fmt.Sprintf("assistant is busy, retry in %d seconds", int(math.Ceil(rateLimited.RetryAfter.Seconds())))
	case errors.Is(err, domain.ErrCompletionUnavailable):
		return http.StatusBadGateway, "COMPLETION_UNAVAILABLE", "assistant is temporarily unavailable, please try again"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// fromSentinel trims wrapping prefixes so the message starts at the sentinel text.
func fromSentinel(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}

func readingMessage(err error) string {
	return fromSentinel(err, domain.ErrInvalidReading)
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	HandleErrorWithData(c, err, nil)
}

// HandleErrorWithData is HandleError for failures that still produced a
// partial result the client needs, such as an id of a row already saved.
func HandleErrorWithData(c *gin.Context, err error, data interface{}) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get(middleware.ContextKeyRequestID)
		slog.ErrorContext(c.Request.Context(), "handler: request failed",
			"request_id", requestID, "path", c.FullPath(), "error", err)
	}
	c.JSON(status, APIResponse{
		Success: false,
		Data:    data,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// actorFrom reads the caller from the context.
// Returns false if auth context is missing (error response already written).
func actorFrom(c *gin.Context) (service.Actor, bool) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return service.Actor{}, false
	}
	return actor, true
}

// pathID parses a UUID path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads offset and limit, defaulting to 0 and 20 with a ceiling of 100.
func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
