package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"telehealth/internal/domain"
	"telehealth/internal/port"
)

// SocialLoginInput is the DTO for social login requests.
type SocialLoginInput struct {
	Provider string `json:"provider" binding:"required"`
	IDToken  string `json:"id_token" binding:"required"`
}

// SocialLoginOutput contains the results of a social login.
type SocialLoginOutput struct {
	User      *domain.User    `json:"user"`
	Patient   *domain.Patient `json:"patient,omitempty"`
	Tokens    *TokenPair      `json:"tokens"`
	IsNewUser bool            `json:"is_new_user"`
}

// SocialAuthService defines the social authentication contract.
type SocialAuthService interface {
	SocialLogin(ctx context.Context, input SocialLoginInput) (*SocialLoginOutput, error)
}

type socialAuthService struct {
	verifiers   map[string]port.SocialTokenVerifier
	userRepo    port.UserRepository
	patientRepo port.PatientRepository
	authSvc     AuthService
	logger      *slog.Logger
}

// NewSocialAuthService creates a new SocialAuthService. New social users sign up as patients.
func NewSocialAuthService(
	verifiers map[string]port.SocialTokenVerifier,
	userRepo port.UserRepository,
	patientRepo port.PatientRepository,
	authSvc AuthService,
	logger *slog.Logger,
) SocialAuthService {
	return &socialAuthService{
		verifiers:   verifiers,
		userRepo:    userRepo,
		patientRepo: patientRepo,
		authSvc:     authSvc,
		logger:      logger,
	}
}

func (s *socialAuthService) SocialLogin(ctx context.Context, input SocialLoginInput) (*SocialLoginOutput, error) {
	verifier, ok := s.verifiers[input.Provider]
	if !ok {
		return nil, domain.ErrSocialAuthUnavailable
	}

	claims, err := verifier.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		return nil, domain.ErrSocialAuthTokenInvalid
	}
	if !claims.EmailVerified {
		return nil, domain.ErrSocialAuthTokenInvalid
	}

	provider := domain.AuthProvider(input.Provider)

	// Returning social user.
	user, err := s.userRepo.GetByProviderID(ctx, provider, claims.Subject)
	if err == nil {
		return s.signIn(user, false)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("looking up provider user: %w", err)
	}

	// Existing email account: link it.
	user, err = s.userRepo.GetByEmail(ctx, claims.Email)
	if err == nil {
		if !user.IsActive {
			return nil, domain.ErrUserInactive
		}
		if linkErr := s.userRepo.LinkProvider(ctx, user.ID, provider, claims.Subject); linkErr != nil {
			return nil, fmt.Errorf("linking provider: %w", linkErr)
		}
		s.logger.Info("socialAuth.SocialLogin: linked provider", "user_id", user.ID, "provider", provider)
		return s.signIn(user, false)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("looking up email user: %w", err)
	}

	sub := claims.Subject
	user = &domain.User{
		Email:          claims.Email,
		FullName:       claims.FullName,
		Role:           domain.RolePatient,
		IsActive:       true,
		AuthProvider:   provider,
		ProviderUserID: &sub,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	patient, err := createPatientProfile(ctx, s.patientRepo, s.userRepo, s.logger, user, "", "", nil)
	if err != nil {
		return nil, err
	}

	out, err := s.signIn(user, true)
	if err != nil {
		return nil, err
	}
	out.Patient = patient
	return out, nil
}

func (s *socialAuthService) signIn(user *domain.User, isNew bool) (*SocialLoginOutput, error) {
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}
	tokens, err := s.authSvc.GenerateTokenPairForUser(user)
	if err != nil {
		return nil, fmt.Errorf("generating tokens: %w", err)
	}
	return &SocialLoginOutput{User: user, Tokens: tokens, IsNewUser: isNew}, nil
}
