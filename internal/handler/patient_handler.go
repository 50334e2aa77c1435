package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"telehealth/internal/service"
)

// PatientHandler handles patient profile endpoints.
type PatientHandler struct {
	patientService   service.PatientService
	dashboardService service.DashboardService
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(patientService service.PatientService, dashboardService service.DashboardService) *PatientHandler {
	return &PatientHandler{patientService: patientService, dashboardService: dashboardService}
}

// GetMe handles GET /api/v1/patients/me
// @Summary Own patient profile
// @Tags patients
// @Produce json
// @Success 200 {object} Response{data=domain.Patient}
// @Failure 404 {object} ErrorResponseBody "No patient profile"
// @Security BearerAuth
// @Router /patients/me [get]
func (h *PatientHandler) GetMe(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	patient, err := h.patientService.GetMine(c.Request.Context(), actor.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, patient)
}

// UpdateMe handles PUT /api/v1/patients/me
// @Summary Update own patient profile
// @Tags patients
// @Accept json
// @Produce json
// @Param request body service.UpdatePatientInput true "Fields to update"
// @Success 200 {object} Response{data=domain.Patient}
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Security BearerAuth
// @Router /patients/me [put]
func (h *PatientHandler) UpdateMe(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input service.UpdatePatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	patient, err := h.patientService.UpdateMine(c.Request.Context(), actor.UserID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, patient)
}

// Dashboard handles GET /api/v1/patients/me/dashboard
// @Summary Patient dashboard
// @Description Upcoming appointments, recent prescriptions, and latest readings
// @Tags patients
// @Produce json
// @Success 200 {object} Response{data=service.Dashboard}
// @Security BearerAuth
// @Router /patients/me/dashboard [get]
func (h *PatientHandler) Dashboard(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	dash, err := h.dashboardService.Get(c.Request.Context(), actor.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, dash)
}

// List handles GET /api/v1/patients (doctor or admin).
func (h *PatientHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	patients, total, err := h.patientService.List(c.Request.Context(), actor, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, patients, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/patients/:id (doctor or admin).
func (h *PatientHandler) GetByID(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	patientID, ok := pathID(c, "id", "patient")
	if !ok {
		return
	}

	patient, err := h.patientService.GetByID(c.Request.Context(), actor, patientID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, patient)
}
