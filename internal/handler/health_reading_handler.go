package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"telehealth/internal/domain"
	"telehealth/internal/export"
	"telehealth/internal/port"
	"telehealth/internal/service"
)

// HealthReadingHandler handles vital-sign readings.
type HealthReadingHandler struct {
	readingService service.HealthReadingService
}

// NewHealthReadingHandler creates a new HealthReadingHandler.
func NewHealthReadingHandler(readingService service.HealthReadingService) *HealthReadingHandler {
	return &HealthReadingHandler{readingService: readingService}
}

// Record handles POST /api/v1/readings
// @Summary Record a reading
// @Tags readings
// @Accept json
// @Produce json
// @Param request body service.RecordReadingInput true "Reading"
// @Success 201 {object} Response{data=domain.HealthReading}
// @Failure 400 {object} ErrorResponseBody "Invalid reading"
// @Security BearerAuth
// @Router /readings [post]
func (h *HealthReadingHandler) Record(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input service.RecordReadingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	reading, err := h.readingService.Record(c.Request.Context(), actor.UserID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, reading)
}

// RecordFromPhoto handles POST /api/v1/readings/photo
// @Summary Read a device display from a photo
// @Description Nothing is stored when the value cannot be read with enough confidence
// @Tags readings
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Photo of the device display"
// @Param type formData string false "Expected reading type"
// @Success 201 {object} Response{data=domain.HealthReading}
// @Failure 422 {object} ErrorResponseBody "Low confidence"
// @Failure 502 {object} ErrorResponseBody "Assistant unavailable"
// @Security BearerAuth
// @Router /readings/photo [post]
func (h *HealthReadingHandler) RecordFromPhoto(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	photo, err := readUpload(c, "photo")
	if err != nil {
		if errors.Is(err, errNoFile) {
			RespondError(c, http.StatusBadRequest, "MISSING_FILE", "photo field is required")
			return
		}
		RespondError(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
		return
	}

	reading, err := h.readingService.RecordFromPhoto(c.Request.Context(), actor.UserID, service.PhotoReadingInput{
		Photo:        *photo,
		ExpectedType: domain.ReadingType(c.PostForm("type")),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, reading)
}

// List handles GET /api/v1/readings
// @Summary List my readings
// @Tags readings
// @Produce json
// @Param type query string false "Reading type"
// @Param from query string false "RFC3339 lower bound on recorded_at"
// @Param to query string false "RFC3339 upper bound on recorded_at"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.HealthReading,meta=PagMeta}
// @Security BearerAuth
// @Router /readings [get]
func (h *HealthReadingHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	filter, ok := readingFilter(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	readings, total, err := h.readingService.List(c.Request.Context(), actor.UserID, filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, readings, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ListForPatient handles GET /api/v1/patients/:id/readings
func (h *HealthReadingHandler) ListForPatient(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	patientID, ok := pathID(c, "id", "patient")
	if !ok {
		return
	}
	filter, ok := readingFilter(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	readings, total, err := h.readingService.ListForPatient(c.Request.Context(), actor, patientID, filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, readings, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Delete handles DELETE /api/v1/readings/:id
func (h *HealthReadingHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	readingID, ok := pathID(c, "id", "reading")
	if !ok {
		return
	}

	if err := h.readingService.Delete(c.Request.Context(), actor.UserID, readingID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "reading deleted"})
}

// Export handles GET /api/v1/readings/export
// @Summary Export my readings
// @Tags readings
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Param type query string false "Reading type"
// @Param from query string false "RFC3339 lower bound on recorded_at"
// @Param to query string false "RFC3339 upper bound on recorded_at"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponseBody "Invalid format"
// @Security BearerAuth
// @Router /readings/export [get]
func (h *HealthReadingHandler) Export(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}
	filter, ok := readingFilter(c)
	if !ok {
		return
	}

	file, err := h.readingService.Export(c.Request.Context(), actor.UserID, filter, format)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// readingFilter parses type, from, and to. Writes a 400 on malformed input.
func readingFilter(c *gin.Context) (port.ReadingFilter, bool) {
	filter := port.ReadingFilter{Type: domain.ReadingType(c.Query("type"))}
	if filter.Type != "" && !domain.ValidReadingTypes[filter.Type] {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown reading type")
		return filter, false
	}
	for _, b := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := c.Query(b.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", b.name+" must be an RFC3339 timestamp")
			return filter, false
		}
		*b.dst = &t
	}
	return filter, true
}
