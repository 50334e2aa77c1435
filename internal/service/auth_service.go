package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"telehealth/internal/config"
	"telehealth/internal/domain"
	"telehealth/internal/port"
)

const bcryptCost = 12

// Claims represents the JWT claims carried by access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID       `json:"user_id"`
	Email  string          `json:"email"`
	Role   domain.UserRole `json:"role"`
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LoginInput is the DTO for login requests.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RefreshInput is the DTO for token refresh requests.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RegisterInput is the DTO for patient self-registration.
type RegisterInput struct {
	Email       string     `json:"email" binding:"required,email"`
	Password    string     `json:"password" binding:"required,min=8"`
	FullName    string     `json:"full_name" binding:"required"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Gender      string     `json:"gender"`
}

// RegisterOutput contains the results of a successful registration.
type RegisterOutput struct {
	User    *domain.User    `json:"user"`
	Patient *domain.Patient `json:"patient"`
	Tokens  *TokenPair      `json:"tokens"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateToken(tokenString string) (*Claims, error)
	GenerateTokenPairForUser(user *domain.User) (*TokenPair, error)
}

type authService struct {
	userRepo    port.UserRepository
	patientRepo port.PatientRepository
	cfg         config.JWTConfig
	logger      *slog.Logger
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(
	userRepo port.UserRepository,
	patientRepo port.PatientRepository,
	cfg config.JWTConfig,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		patientRepo: patientRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// Register creates a patient account and its profile, then signs the user in.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(input.FullName),
		Role:         domain.RolePatient,
		IsActive:     true,
		AuthProvider: domain.AuthProviderEmail,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err // ErrDuplicateEmail propagates naturally
	}

	patient, err := createPatientProfile(ctx, s.patientRepo, s.userRepo, s.logger, user, input.Phone, input.Gender, input.DateOfBirth)
	if err != nil {
		return nil, err
	}

	tokens, err := s.GenerateTokenPairForUser(user)
	if err != nil {
		return nil, fmt.Errorf("generating tokens: %w", err)
	}
	return &RegisterOutput{User: user, Patient: patient, Tokens: tokens}, nil
}

// createPatientProfile inserts the patient row for a freshly created user. The
// two inserts are not transactional, so a failed profile removes the user again.
func createPatientProfile(
	ctx context.Context,
	patientRepo port.PatientRepository,
	userRepo port.UserRepository,
	logger *slog.Logger,
	user *domain.User,
	phone, gender string,
	dob *time.Time,
) (*domain.Patient, error) {
	patient := &domain.Patient{
		UserID:      user.ID,
		FullName:    user.FullName,
		Phone:       phone,
		Gender:      gender,
		DateOfBirth: dob,
	}
	if err := patientRepo.Create(ctx, patient); err != nil {
		if delErr := userRepo.Delete(ctx, user.ID); delErr != nil {
			logger.Error("auth.Register: failed to remove user after profile error",
				"user_id", user.ID, "error", delErr)
		}
		return nil, fmt.Errorf("creating patient profile: %w", err)
	}
	return patient, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.Login: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}
	if user.PasswordHash == "" {
		return nil, domain.ErrPasswordLoginNotAllowed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.GenerateTokenPairForUser(user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateTokenString(refreshToken, "refresh")
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	return s.GenerateTokenPairForUser(user)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	return s.validateTokenString(tokenString, "access")
}

func (s *authService) GenerateTokenPairForUser(user *domain.User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.cfg.AccessTokenExpiry)

	access, err := s.sign(user, "access", now, accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refresh, err := s.sign(user, "refresh", now, now.Add(s.cfg.RefreshTokenExpiry))
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExpiry,
	}, nil
}

func (s *authService) sign(user *domain.User, audience string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{audience},
		},
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
}

func (s *authService) validateTokenString(tokenString, audience string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	aud, _ := claims.GetAudience()
	if !slices.Contains(aud, audience) {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
