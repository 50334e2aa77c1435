package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"telehealth/internal/port"
	"telehealth/internal/service"
)

// DoctorHandler handles the doctor directory and doctor profiles.
type DoctorHandler struct {
	doctorService service.DoctorService
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(doctorService service.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctorService: doctorService}
}

// List handles GET /api/v1/doctors
// @Summary Doctor directory
// @Tags doctors
// @Produce json
// @Param specialization query string false "Filter by specialization (case-insensitive)"
// @Param available query bool false "Only doctors accepting appointments"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Doctor,meta=PagMeta}
// @Security BearerAuth
// @Router /doctors [get]
func (h *DoctorHandler) List(c *gin.Context) {
	offset, limit := pagination(c)
	available, _ := strconv.ParseBool(c.DefaultQuery("available", "false"))
	filter := port.DoctorFilter{
		Specialization: c.Query("specialization"),
		AvailableOnly:  available,
	}

	doctors, total, err := h.doctorService.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, doctors, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/doctors/:id
func (h *DoctorHandler) GetByID(c *gin.Context) {
	doctorID, ok := pathID(c, "id", "doctor")
	if !ok {
		return
	}

	doctor, err := h.doctorService.GetByID(c.Request.Context(), doctorID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doctor)
}

// Create handles POST /api/v1/doctors
// @Summary Create a doctor account
// @Description Creates the doctor user and directory profile (admin only)
// @Tags doctors
// @Accept json
// @Produce json
// @Param request body service.CreateDoctorInput true "Doctor details"
// @Success 201 {object} Response{data=domain.Doctor}
// @Failure 409 {object} ErrorResponseBody "Email already registered"
// @Security BearerAuth
// @Router /doctors [post]
func (h *DoctorHandler) Create(c *gin.Context) {
	var input service.CreateDoctorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	doctor, err := h.doctorService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, doctor)
}

// GetMe handles GET /api/v1/doctors/me
func (h *DoctorHandler) GetMe(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	doctor, err := h.doctorService.GetMine(c.Request.Context(), actor.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doctor)
}

// UpdateMe handles PUT /api/v1/doctors/me
func (h *DoctorHandler) UpdateMe(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input service.UpdateDoctorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	doctor, err := h.doctorService.UpdateMine(c.Request.Context(), actor.UserID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doctor)
}
