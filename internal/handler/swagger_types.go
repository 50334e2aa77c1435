package handler

import (
	"time"

	"telehealth/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"asha@example.com"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// CreateUserRequest represents the create user request body.
type CreateUserRequest struct {
	Email    string          `json:"email" binding:"required" example:"dr.rao@clinic.example"`
	Password string          `json:"password" binding:"required" example:"securepassword123"`
	FullName string          `json:"full_name" example:"Meera Rao"`
	Role     domain.UserRole `json:"role" binding:"required" example:"doctor"`
}

// UpdateUserRequest represents the update user request body.
type UpdateUserRequest struct {
	Email    *string          `json:"email" example:"meera.rao@clinic.example"`
	FullName *string          `json:"full_name" example:"Dr. Meera Rao"`
	Role     *domain.UserRole `json:"role" example:"admin"`
	IsActive *bool            `json:"is_active" example:"true"`
}

// --- Response Types ---

// TokenResponse represents the authentication token response.
type TokenResponse struct {
	AccessToken  string    `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string    `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt    time.Time `json:"expires_at" example:"2026-01-15T10:30:00Z"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
