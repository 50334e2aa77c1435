package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"telehealth/internal/domain"
	"telehealth/internal/port"
)

// UpdatePatientInput is the DTO for a patient editing their own profile.
// Nil fields are left unchanged.
type UpdatePatientInput struct {
	FullName              *string    `json:"full_name"`
	DateOfBirth           *time.Time `json:"date_of_birth"`
	Gender                *string    `json:"gender"`
	Phone                 *string    `json:"phone"`
	BloodGroup            *string    `json:"blood_group"`
	Allergies             []string   `json:"allergies"`
	EmergencyContactName  *string    `json:"emergency_contact_name"`
	EmergencyContactEmail *string    `json:"emergency_contact_email" binding:"omitempty,email"`
	EmergencyContactPhone *string    `json:"emergency_contact_phone"`
}

// PatientService defines the patient profile contract.
type PatientService interface {
	GetMine(ctx context.Context, userID uuid.UUID) (*domain.Patient, error)
	UpdateMine(ctx context.Context, userID uuid.UUID, input UpdatePatientInput) (*domain.Patient, error)
	GetByID(ctx context.Context, actor Actor, patientID uuid.UUID) (*domain.Patient, error)
	List(ctx context.Context, actor Actor, offset, limit int) ([]domain.Patient, int, error)
}

type patientService struct {
	repo port.PatientRepository
}

// NewPatientService creates a new PatientService implementation.
func NewPatientService(repo port.PatientRepository) PatientService {
	return &patientService{repo: repo}
}

func (s *patientService) GetMine(ctx context.Context, userID uuid.UUID) (*domain.Patient, error) {
	return patientFor(ctx, s.repo, userID)
}

func (s *patientService) UpdateMine(ctx context.Context, userID uuid.UUID, input UpdatePatientInput) (*domain.Patient, error) {
	p, err := patientFor(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&p.FullName, input.FullName)
	setString(&p.Gender, input.Gender)
	setString(&p.Phone, input.Phone)
	setString(&p.BloodGroup, input.BloodGroup)
	setString(&p.EmergencyContactName, input.EmergencyContactName)
	setString(&p.EmergencyContactEmail, input.EmergencyContactEmail)
	setString(&p.EmergencyContactPhone, input.EmergencyContactPhone)
	if input.DateOfBirth != nil {
		p.DateOfBirth = input.DateOfBirth
	}
	if input.Allergies != nil {
		p.Allergies = cleanList(input.Allergies)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID is for doctors and admins looking up a patient's chart.
func (s *patientService) GetByID(ctx context.Context, actor Actor, patientID uuid.UUID) (*domain.Patient, error) {
	if actor.Role == domain.RolePatient {
		return nil, domain.ErrForbidden
	}
	return s.repo.GetByID(ctx, patientID)
}

func (s *patientService) List(ctx context.Context, actor Actor, offset, limit int) ([]domain.Patient, int, error) {
	if actor.Role == domain.RolePatient {
		return nil, 0, domain.ErrForbidden
	}
	return s.repo.List(ctx, offset, limit)
}

// cleanList trims items and drops empties and case-insensitive duplicates.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
