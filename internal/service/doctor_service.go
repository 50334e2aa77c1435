package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"telehealth/internal/domain"
	"telehealth/internal/port"
)

// CreateDoctorInput is the DTO for an admin onboarding a doctor. It creates
// the login and the directory profile together.
type CreateDoctorInput struct {
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required,min=8"`
	FullName        string  `json:"full_name" binding:"required"`
	Specialization  string  `json:"specialization" binding:"required"`
	LicenseNumber   string  `json:"license_number"`
	Bio             string  `json:"bio"`
	ConsultationFee float64 `json:"consultation_fee" binding:"gte=0"`
}

// UpdateDoctorInput is the DTO for a doctor editing their own profile.
type UpdateDoctorInput struct {
	FullName        *string  `json:"full_name"`
	Specialization  *string  `json:"specialization"`
	LicenseNumber   *string  `json:"license_number"`
	Bio             *string  `json:"bio"`
	ConsultationFee *float64 `json:"consultation_fee" binding:"omitempty,gte=0"`
	IsAvailable     *bool    `json:"is_available"`
}

// DoctorService defines the doctor directory contract.
type DoctorService interface {
	List(ctx context.Context, filter port.DoctorFilter, offset, limit int) ([]domain.Doctor, int, error)
	GetByID(ctx context.Context, doctorID uuid.UUID) (*domain.Doctor, error)
	GetMine(ctx context.Context, userID uuid.UUID) (*domain.Doctor, error)
	Create(ctx context.Context, input CreateDoctorInput) (*domain.Doctor, error)
	UpdateMine(ctx context.Context, userID uuid.UUID, input UpdateDoctorInput) (*domain.Doctor, error)
}

type doctorService struct {
	repo     port.DoctorRepository
	userRepo port.UserRepository
	logger   *slog.Logger
}

// NewDoctorService creates a new DoctorService implementation.
func NewDoctorService(repo port.DoctorRepository, userRepo port.UserRepository, logger *slog.Logger) DoctorService {
	return &doctorService{repo: repo, userRepo: userRepo, logger: logger}
}

func (s *doctorService) List(ctx context.Context, filter port.DoctorFilter, offset, limit int) ([]domain.Doctor, int, error) {
	filter.Specialization = strings.TrimSpace(filter.Specialization)
	return s.repo.List(ctx, filter, offset, limit)
}

func (s *doctorService) GetByID(ctx context.Context, doctorID uuid.UUID) (*domain.Doctor, error) {
	return s.repo.GetByID(ctx, doctorID)
}

func (s *doctorService) GetMine(ctx context.Context, userID uuid.UUID) (*domain.Doctor, error) {
	return doctorFor(ctx, s.repo, userID)
}

func (s *doctorService) Create(ctx context.Context, input CreateDoctorInput) (*domain.Doctor, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(input.FullName),
		Role:         domain.RoleDoctor,
		IsActive:     true,
		AuthProvider: domain.AuthProviderEmail,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	doctor := &domain.Doctor{
		UserID:          user.ID,
		FullName:        user.FullName,
		Specialization:  strings.TrimSpace(input.Specialization),
		LicenseNumber:   strings.TrimSpace(input.LicenseNumber),
		Bio:             input.Bio,
		ConsultationFee: input.ConsultationFee,
		IsAvailable:     true,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("doctor.Create: failed to remove user after profile error",
				"user_id", user.ID, "error", delErr)
		}
		return nil, fmt.Errorf("creating doctor profile: %w", err)
	}
	return doctor, nil
}

func (s *doctorService) UpdateMine(ctx context.Context, userID uuid.UUID, input UpdateDoctorInput) (*domain.Doctor, error) {
	d, err := doctorFor(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		d.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Specialization != nil {
		d.Specialization = strings.TrimSpace(*input.Specialization)
	}
	if input.LicenseNumber != nil {
		d.LicenseNumber = strings.TrimSpace(*input.LicenseNumber)
	}
	if input.Bio != nil {
		d.Bio = *input.Bio
	}
	if input.ConsultationFee != nil {
		d.ConsultationFee = *input.ConsultationFee
	}
	if input.IsAvailable != nil {
		d.IsAvailable = *input.IsAvailable
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
