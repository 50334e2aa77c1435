package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"telehealth/internal/service"
)

// PrescriptionHandler handles prescription endpoints.
type PrescriptionHandler struct {
	prescriptionService service.PrescriptionService
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(prescriptionService service.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptionService: prescriptionService}
}

// Create handles POST /api/v1/prescriptions
// @Summary Write a prescription
// @Description Doctor submits free text or an image/PDF scan; medicines and instructions are structured automatically
// @Tags prescriptions
// @Accept multipart/form-data
// @Produce json
// @Param patient_id formData string true "Patient ID (UUID)"
// @Param appointment_id formData string false "Appointment ID (UUID)"
// @Param text formData string false "Prescription text"
// @Param file formData file false "Scanned prescription (jpg, png, webp, pdf)"
// @Success 201 {object} Response{data=domain.Prescription}
// @Failure 400 {object} ErrorResponseBody "Empty prescription or unsupported file"
// @Failure 502 {object} ErrorResponseBody "Assistant unavailable"
// @Security BearerAuth
// @Router /prescriptions [post]
func (h *PrescriptionHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	patientID, err := uuid.Parse(c.PostForm("patient_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "patient_id must be a valid UUID")
		return
	}
	input := service.CreatePrescriptionInput{
		PatientID: patientID,
		Text:      c.PostForm("text"),
	}
	if raw := c.PostForm("appointment_id"); raw != "" {
		apptID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "appointment_id must be a valid UUID")
			return
		}
		input.AppointmentID = &apptID
	}

	file, err := readUpload(c, "file")
	switch {
	case errors.Is(err, errNoFile):
	case err != nil:
		RespondError(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
		return
	default:
		input.File = file
	}

	rx, err := h.prescriptionService.Create(c.Request.Context(), actor.UserID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, rx)
}

// List handles GET /api/v1/prescriptions
// @Summary List my prescriptions
// @Description Patients see prescriptions written for them, doctors see the ones they wrote
// @Tags prescriptions
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Prescription,meta=PagMeta}
// @Security BearerAuth
// @Router /prescriptions [get]
func (h *PrescriptionHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	items, total, err := h.prescriptionService.ListMine(c.Request.Context(), actor, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, items, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ListForPatient handles GET /api/v1/patients/:id/prescriptions
func (h *PrescriptionHandler) ListForPatient(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	patientID, ok := pathID(c, "id", "patient")
	if !ok {
		return
	}
	offset, limit := pagination(c)

	items, total, err := h.prescriptionService.ListForPatient(c.Request.Context(), actor, patientID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, items, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/prescriptions/:id
func (h *PrescriptionHandler) GetByID(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	rxID, ok := pathID(c, "id", "prescription")
	if !ok {
		return
	}

	rx, err := h.prescriptionService.Get(c.Request.Context(), actor, rxID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rx)
}

// FileURL handles GET /api/v1/prescriptions/:id/file
// Returns a presigned download URL for the uploaded original.
func (h *PrescriptionHandler) FileURL(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	rxID, ok := pathID(c, "id", "prescription")
	if !ok {
		return
	}

	url, err := h.prescriptionService.FileURL(c.Request.Context(), actor, rxID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"download_url": url})
}
