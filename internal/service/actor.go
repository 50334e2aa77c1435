package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"telehealth/internal/domain"
	"telehealth/internal/port"
)

// Actor is the authenticated caller of a service method.
type Actor struct {
	UserID uuid.UUID
	Role   domain.UserRole
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// patientFor resolves the patient profile owned by userID.
func patientFor(ctx context.Context, repo port.PatientRepository, userID uuid.UUID) (*domain.Patient, error) {
	p, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrPatientProfileMissing
		}
		return nil, fmt.Errorf("loading patient profile: %w", err)
	}
	return p, nil
}

// doctorFor resolves the doctor profile owned by userID.
func doctorFor(ctx context.Context, repo port.DoctorRepository, userID uuid.UUID) (*domain.Doctor, error) {
	d, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrDoctorProfileMissing
		}
		return nil, fmt.Errorf("loading doctor profile: %w", err)
	}
	return d, nil
}
