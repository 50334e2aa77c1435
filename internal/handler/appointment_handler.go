package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"telehealth/internal/service"
)

// AppointmentHandler handles booking and appointment lifecycle endpoints.
type AppointmentHandler struct {
	appointmentService service.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// Book handles POST /api/v1/appointments
// @Summary Book an appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Param request body service.BookAppointmentInput true "Doctor and time"
// @Success 201 {object} Response{data=domain.Appointment}
// @Failure 400 {object} ErrorResponseBody "Time in the past"
// @Failure 409 {object} ErrorResponseBody "Slot taken or doctor unavailable"
// @Security BearerAuth
// @Router /appointments [post]
func (h *AppointmentHandler) Book(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input service.BookAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	appt, err := h.appointmentService.Book(c.Request.Context(), actor.UserID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, appt)
}

// List handles GET /api/v1/appointments
// @Summary List my appointments
// @Description Patients see their bookings, doctors see their schedule
// @Tags appointments
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Appointment,meta=PagMeta}
// @Security BearerAuth
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	appts, total, err := h.appointmentService.ListMine(c.Request.Context(), actor, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, appts, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/appointments/:id
func (h *AppointmentHandler) GetByID(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	apptID, ok := pathID(c, "id", "appointment")
	if !ok {
		return
	}

	appt, err := h.appointmentService.Get(c.Request.Context(), actor, apptID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, appt)
}

// UpdateStatus handles PUT /api/v1/appointments/:id/status
// @Summary Change appointment status
// @Description Doctors confirm, complete, or cancel; patients may only cancel
// @Tags appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID (UUID)"
// @Param request body service.UpdateAppointmentStatusInput true "New status"
// @Success 200 {object} Response{data=domain.Appointment}
// @Failure 409 {object} ErrorResponseBody "Invalid transition"
// @Security BearerAuth
// @Router /appointments/{id}/status [put]
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	apptID, ok := pathID(c, "id", "appointment")
	if !ok {
		return
	}

	var input service.UpdateAppointmentStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	appt, err := h.appointmentService.UpdateStatus(c.Request.Context(), actor, apptID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, appt)
}

// Reschedule handles PUT /api/v1/appointments/:id/schedule
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	apptID, ok := pathID(c, "id", "appointment")
	if !ok {
		return
	}

	var input service.RescheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	appt, err := h.appointmentService.Reschedule(c.Request.Context(), actor, apptID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, appt)
}
