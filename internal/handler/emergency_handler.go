package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"telehealth/internal/service"
)

// EmergencyHandler handles SOS and fall detection.
type EmergencyHandler struct {
	emergencyService service.EmergencyService
}

// NewEmergencyHandler creates a new EmergencyHandler.
func NewEmergencyHandler(emergencyService service.EmergencyService) *EmergencyHandler {
	return &EmergencyHandler{emergencyService: emergencyService}
}

// SOS handles POST /api/v1/emergency/sos
// @Summary Raise an SOS
// @Description Records the alert and emails the emergency contact. A failed notification is reported in the alert status, not as an error.
// @Tags emergency
// @Accept json
// @Produce json
// @Param request body service.TriggerSOSInput false "Location and message"
// @Success 201 {object} Response{data=domain.EmergencyAlert}
// @Security BearerAuth
// @Router /emergency/sos [post]
func (h *EmergencyHandler) SOS(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input service.TriggerSOSInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	alert, err := h.emergencyService.TriggerSOS(c.Request.Context(), actor.UserID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, alert)
}

// Motion handles POST /api/v1/emergency/motion
// @Summary Report accelerometer samples
// @Description Raises a fall alert when any sample exceeds the configured g threshold
// @Tags emergency
// @Accept json
// @Produce json
// @Param request body service.MotionInput true "Samples"
// @Success 200 {object} Response{data=service.MotionResult} "No fall"
// @Success 201 {object} Response{data=service.MotionResult} "Fall detected"
// @Security BearerAuth
// @Router /emergency/motion [post]
func (h *EmergencyHandler) Motion(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input service.MotionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.emergencyService.ReportMotion(c.Request.Context(), actor.UserID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	if result.FallDetected {
		RespondCreated(c, result)
		return
	}
	RespondOK(c, result)
}

// List handles GET /api/v1/emergency/alerts
func (h *EmergencyHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	alerts, total, err := h.emergencyService.List(c.Request.Context(), actor.UserID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, alerts, PagMeta{Total: total, Offset: offset, Limit: limit})
}
