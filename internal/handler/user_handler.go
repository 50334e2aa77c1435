package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"telehealth/internal/domain"
	"telehealth/internal/service"
)

// UserHandler handles account management endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me handles GET /api/v1/users/me
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} Response{data=domain.User} "Current user"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), actor.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, user)
}

// Create handles POST /api/v1/users
// @Summary Create a user
// @Description Create an account with any role (admin only)
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User details"
// @Success 201 {object} Response{data=domain.User} "User created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Failure 409 {object} ErrorResponseBody "Email already exists"
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var input service.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.userService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, user)
}

// List handles GET /api/v1/users
// @Summary List users
// @Tags users
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.User,meta=PagMeta} "List of users"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	offset, limit := pagination(c)

	users, total, err := h.userService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, users, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/users/:id
// @Summary Get user by ID
// @Description Get user details (self or admin access)
// @Tags users
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Success 200 {object} Response{data=domain.User} "User details"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	if actor.UserID != userID && !actor.IsAdmin() {
		RespondError(c, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, user)
}

// Update handles PUT /api/v1/users/:id
// @Summary Update a user
// @Description Self can update name and email; admin can also change role and active status
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Param request body UpdateUserRequest true "Fields to update"
// @Success 200 {object} Response{data=domain.User} "User updated"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	if actor.UserID != userID && !actor.IsAdmin() {
		RespondError(c, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
		return
	}

	var input service.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if actor.Role != domain.RoleAdmin && (input.Role != nil || input.IsActive != nil) {
		RespondError(c, http.StatusForbidden, "FORBIDDEN", "only admins can change role or active status")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, user)
}

// Delete handles DELETE /api/v1/users/:id
// @Summary Delete a user
// @Tags users
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "User deleted"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Failure 404 {object} ErrorResponseBody "User not found"
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), userID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "user deleted"})
}
