package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"telehealth/internal/completion"
	"telehealth/internal/domain"
	"telehealth/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("userRepo.GetByID: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"file too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"unsupported file", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"social disabled", domain.ErrSocialAuthUnavailable, http.StatusNotFound, "SOCIAL_LOGIN_DISABLED"},
		{"empty prescription", domain.ErrEmptyPrescription, http.StatusBadRequest, "EMPTY_PRESCRIPTION"},
		{"empty message", domain.ErrEmptyMessage, http.StatusBadRequest, "EMPTY_MESSAGE"},
		{"constraint", domain.ErrConstraintViolation, http.StatusConflict, "CONSTRAINT_VIOLATION"},
		{"completion down", domain.ErrCompletionUnavailable, http.StatusBadGateway, "COMPLETION_UNAVAILABLE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"context", context.DeadlineExceeded, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestMapDomainError_InvalidReadingKeepsDetail(t *testing.T) {
	err := fmt.Errorf("healthReading.Record: %w", fmt.Errorf("%w: oxygen_saturation out of range", domain.ErrInvalidReading))

	status, code, msg := handler.MapDomainError(err)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_READING", code)
	assert.Equal(t, domain.ErrInvalidReading.Error()+": oxygen_saturation out of range", msg)
}

func TestMapDomainError_RateLimited(t *testing.T) {
	err := fmt.Errorf("chat.Send: %w", completion.NewRateLimitError("gemini", errors.New("429"), 7))

	status, code, msg := handler.MapDomainError(err)

	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "COMPLETION_RATE_LIMITED", code)
	assert.Contains(t, msg, "7 seconds")
}

func TestHandleError_WritesEnvelope(t *testing.T) {
	c, w := newContext(http.MethodGet, "/", nil)

	handler.HandleError(c, domain.ErrSlotTaken)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "SLOT_TAKEN", resp.Error.Code)
	assert.Nil(t, resp.Data)
}
