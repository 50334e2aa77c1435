package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"telehealth/internal/domain"
	"telehealth/internal/service"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"
	ContextKeyRole   = "role"
	ContextKeyClaims = "claims"
)

// TokenValidator validates access tokens. service.AuthService satisfies it.
type TokenValidator interface {
	ValidateToken(tokenString string) (*service.Claims, error)
}

// AuthMiddleware returns Gin middleware that validates JWT access tokens and
// injects the caller's identity into the context.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		claims, err := validator.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, string(claims.Role))
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireRole returns middleware that checks the user's role against allowed roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := domain.UserRole(GetRole(c))
		if role == "" {
			abort(c, http.StatusForbidden, "FORBIDDEN", "role not found in context")
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
	}
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": msg},
	})
}

// GetUserID extracts the user ID from the Gin context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil, domain.ErrUnauthorized
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return id, nil
}

// GetRole extracts the user role string from the Gin context.
func GetRole(c *gin.Context) string {
	val, exists := c.Get(ContextKeyRole)
	if !exists {
		return ""
	}
	s, _ := val.(string)
	return s
}

// GetActor returns the authenticated caller.
func GetActor(c *gin.Context) (service.Actor, error) {
	id, err := GetUserID(c)
	if err != nil {
		return service.Actor{}, err
	}
	return service.Actor{UserID: id, Role: domain.UserRole(GetRole(c))}, nil
}
