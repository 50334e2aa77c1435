package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"telehealth/internal/domain"
	"telehealth/internal/handler"
	"telehealth/internal/service"
	"telehealth/mocks"
)

func TestAuthHandler_Register_Success(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth, nil)

	mockAuth.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
		return in.Email == "asha@example.com" && in.FullName == "Asha Verma"
	})).Return(&service.RegisterOutput{
		User:    &domain.User{ID: uuid.New(), Role: domain.RolePatient},
		Patient: &domain.Patient{ID: uuid.New()},
		Tokens:  &service.TokenPair{AccessToken: "a", RefreshToken: "r"},
	}, nil)

	c, w := jsonContext(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "asha@example.com", "password": "password123", "full_name": "Asha Verma",
	})
	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth, nil)

	mockAuth.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrDuplicateEmail)

	c, w := jsonContext(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "asha@example.com", "password": "password123", "full_name": "Asha Verma",
	})
	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_EMAIL", decode(t, w).Error.Code)
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth, nil)

	c, w := jsonContext(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "asha@example.com", "password": "short", "full_name": "Asha",
	})
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockAuth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]string
		svcErr     error
		wantStatus int
	}{
		{"success", map[string]string{"email": "user@example.com", "password": "password123"}, nil, http.StatusOK},
		{"invalid credentials", map[string]string{"email": "user@example.com", "password": "password123"}, domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"inactive", map[string]string{"email": "user@example.com", "password": "password123"}, domain.ErrUserInactive, http.StatusForbidden},
		{"social-only", map[string]string{"email": "user@example.com", "password": "password123"}, domain.ErrPasswordLoginNotAllowed, http.StatusBadRequest},
		{"validation", map[string]string{"email": "not-an-email"}, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := new(mocks.MockAuthService)
			h := handler.NewAuthHandler(mockAuth, nil)
			if tt.svcErr != nil {
				mockAuth.On("Login", mock.Anything, mock.Anything).Return(nil, tt.svcErr)
			} else {
				mockAuth.On("Login", mock.Anything, service.LoginInput{Email: "user@example.com", Password: "password123"}).
					Return(&service.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Minute)}, nil).Maybe()
			}

			c, w := jsonContext(t, http.MethodPost, "/api/v1/auth/login", tt.body)
			h.Login(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	mockAuth := new(mocks.MockAuthService)
	h := handler.NewAuthHandler(mockAuth, nil)

	mockAuth.On("RefreshToken", mock.Anything, "valid-refresh-token").
		Return(&service.TokenPair{AccessToken: "new-access"}, nil)

	c, w := jsonContext(t, http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": "valid-refresh-token"})
	h.RefreshToken(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockAuth.AssertExpectations(t)
}

func TestAuthHandler_SocialLogin_Disabled(t *testing.T) {
	h := handler.NewAuthHandler(new(mocks.MockAuthService), nil)

	c, w := jsonContext(t, http.MethodPost, "/api/v1/auth/social-login", map[string]string{"provider": "google", "id_token": "tok"})
	h.SocialLogin(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_SocialLogin_StatusByNewness(t *testing.T) {
	for _, isNew := range []bool{true, false} {
		mockSocial := new(mocks.MockSocialAuthService)
		h := handler.NewAuthHandler(new(mocks.MockAuthService), mockSocial)
		mockSocial.On("SocialLogin", mock.Anything, service.SocialLoginInput{Provider: "google", IDToken: "tok"}).
			Return(&service.SocialLoginOutput{User: &domain.User{}, Tokens: &service.TokenPair{}, IsNewUser: isNew}, nil)

		c, w := jsonContext(t, http.MethodPost, "/api/v1/auth/social-login", map[string]string{"provider": "google", "id_token": "tok"})
		h.SocialLogin(c)

		want := http.StatusOK
		if isNew {
			want = http.StatusCreated
		}
		assert.Equal(t, want, w.Code)
	}
}

func TestAuthHandler_SocialLogin_InvalidToken(t *testing.T) {
	mockSocial := new(mocks.MockSocialAuthService)
	h := handler.NewAuthHandler(new(mocks.MockAuthService), mockSocial)
	mockSocial.On("SocialLogin", mock.Anything, mock.Anything).Return(nil, domain.ErrSocialAuthTokenInvalid)

	c, w := jsonContext(t, http.MethodPost, "/api/v1/auth/social-login", map[string]string{"provider": "google", "id_token": "bad"})
	h.SocialLogin(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_SOCIAL_TOKEN", decode(t, w).Error.Code)
}
