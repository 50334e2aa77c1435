package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"telehealth/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService       service.AuthService
	socialAuthService service.SocialAuthService
}

// NewAuthHandler creates a new AuthHandler. socialAuthService may be nil when
// no identity provider is configured.
func NewAuthHandler(authService service.AuthService, socialAuthService service.SocialAuthService) *AuthHandler {
	return &AuthHandler{authService: authService, socialAuthService: socialAuthService}
}

// Register handles POST /api/v1/auth/register
// @Summary Register a patient
// @Description Create a patient account and profile, returning tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration details"
// @Success 201 {object} Response{data=service.RegisterOutput} "Registered"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 409 {object} ErrorResponseBody "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	output, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, output)
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} Response{data=TokenResponse} "Token pair"
// @Failure 401 {object} ErrorResponseBody "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tokenPair, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tokenPair)
}

// RefreshToken handles POST /api/v1/auth/refresh
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} Response{data=TokenResponse} "Token pair"
// @Failure 401 {object} ErrorResponseBody "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input service.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tokenPair, err := h.authService.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tokenPair)
}

// SocialLogin handles POST /api/v1/auth/social-login
// @Summary Sign in with an identity provider
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SocialLoginInput true "Provider and ID token"
// @Success 200 {object} Response{data=service.SocialLoginOutput} "Existing user"
// @Success 201 {object} Response{data=service.SocialLoginOutput} "New user"
// @Failure 401 {object} ErrorResponseBody "Invalid token"
// @Router /auth/social-login [post]
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	if h.socialAuthService == nil {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "social login is not enabled")
		return
	}

	var input service.SocialLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	output, err := h.socialAuthService.SocialLogin(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	if output.IsNewUser {
		RespondCreated(c, output)
	} else {
		RespondOK(c, output)
	}
}
