package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"telehealth/internal/config"
	"telehealth/internal/domain"
	"telehealth/internal/export"
	"telehealth/internal/extraction"
	"telehealth/internal/port"
	"telehealth/internal/prompt"
)

// DefaultReadingConfidence is the minimum model confidence for a photo reading.
const DefaultReadingConfidence = 50.0

// readingRange is the plausible range for a measurement.
type readingRange struct{ min, max float64 }

var (
	systolicRange  = readingRange{40, 300}
	diastolicRange = readingRange{20, 200}
	valueRanges    = map[domain.ReadingType]readingRange{
		domain.ReadingBloodGlucose: {10, 1000},
		domain.ReadingHeartRate:    {20, 300},
		domain.ReadingTemperature:  {25, 113},
		domain.ReadingOxygen:       {50, 100},
		domain.ReadingWeight:       {1, 500},
	}
	defaultUnits = map[domain.ReadingType]string{
		domain.ReadingBloodPressure: "mmHg",
		domain.ReadingBloodGlucose:  "mg/dL",
		domain.ReadingHeartRate:     "bpm",
		domain.ReadingTemperature:   "°C",
		domain.ReadingOxygen:        "%",
		domain.ReadingWeight:        "kg",
	}
)

// RecordReadingInput is the DTO for a manually entered reading.
type RecordReadingInput struct {
	Type       domain.ReadingType `json:"type" binding:"required"`
	Systolic   *float64           `json:"systolic"`
	Diastolic  *float64           `json:"diastolic"`
	Value      *float64           `json:"value"`
	Unit       string             `json:"unit"`
	RecordedAt *time.Time         `json:"recorded_at"`
}

// PhotoReadingInput is a photo of a device display, with an optional hint of what it measures.
type PhotoReadingInput struct {
	Photo        Upload
	ExpectedType domain.ReadingType
}

// ExportFile is a rendered readings export.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// HealthReadingService defines the health reading contract.
type HealthReadingService interface {
	Record(ctx context.Context, userID uuid.UUID, input RecordReadingInput) (*domain.HealthReading, error)
	RecordFromPhoto(ctx context.Context, userID uuid.UUID, input PhotoReadingInput) (*domain.HealthReading, error)
	List(ctx context.Context, userID uuid.UUID, filter port.ReadingFilter, offset, limit int) ([]domain.HealthReading, int, error)
	ListForPatient(ctx context.Context, actor Actor, patientID uuid.UUID, filter port.ReadingFilter, offset, limit int) ([]domain.HealthReading, int, error)
	Delete(ctx context.Context, userID, readingID uuid.UUID) error
	Export(ctx context.Context, userID uuid.UUID, filter port.ReadingFilter, format export.Format) (*ExportFile, error)
}

type healthReadingService struct {
	repo        port.HealthReadingRepository
	patientRepo port.PatientRepository
	extractor   extraction.Extractor
	media       *mediaStore
	threshold   float64
	logger      *slog.Logger
	now         func() time.Time
}

// NewHealthReadingService creates a new HealthReadingService. Photo readings
// below confidenceThreshold are refused rather than stored.
func NewHealthReadingService(
	repo port.HealthReadingRepository,
	patientRepo port.PatientRepository,
	extractor extraction.Extractor,
	storage port.ObjectStorage,
	s3Cfg *config.S3Config,
	confidenceThreshold float64,
	logger *slog.Logger,
) HealthReadingService {
	if confidenceThreshold <= 0 {
		confidenceThreshold = DefaultReadingConfidence
	}
	return &healthReadingService{
		repo:        repo,
		patientRepo: patientRepo,
		extractor:   extractor,
		media:       newMediaStore(storage, s3Cfg, logger),
		threshold:   confidenceThreshold,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *healthReadingService) Record(ctx context.Context, userID uuid.UUID, input RecordReadingInput) (*domain.HealthReading, error) {
	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return nil, err
	}

	hr := &domain.HealthReading{
		PatientID:        patient.ID,
		Type:             input.Type,
		Systolic:         input.Systolic,
		Diastolic:        input.Diastolic,
		Value:            input.Value,
		Unit:             strings.TrimSpace(input.Unit),
		Source:           domain.ReadingSourceManual,
		ExtractionStatus: domain.ExtractionNone,
		RecordedAt:       s.now().UTC(),
	}
	if input.RecordedAt != nil {
		if input.RecordedAt.After(s.now().Add(5 * time.Minute)) {
			return nil, fmt.Errorf("%w: recorded_at is in the future", domain.ErrInvalidReading)
		}
		hr.RecordedAt = input.RecordedAt.UTC()
	}
	if err := normalizeReading(hr); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, hr); err != nil {
		return nil, err
	}
	return hr, nil
}

// normalizeReading checks the measurement fields for the reading type, clears
// the ones that do not apply, and fills a default unit.
func normalizeReading(hr *domain.HealthReading) error {
	if !domain.ValidReadingTypes[hr.Type] {
		return fmt.Errorf("%w: unknown type %q", domain.ErrInvalidReading, hr.Type)
	}
	if hr.Type == domain.ReadingBloodPressure {
		if hr.Systolic == nil || hr.Diastolic == nil {
			return fmt.Errorf("%w: blood pressure needs systolic and diastolic", domain.ErrInvalidReading)
		}
		if !systolicRange.contains(*hr.Systolic) || !diastolicRange.contains(*hr.Diastolic) {
			return fmt.Errorf("%w: blood pressure out of range", domain.ErrInvalidReading)
		}
		if *hr.Systolic <= *hr.Diastolic {
			return fmt.Errorf("%w: systolic must exceed diastolic", domain.ErrInvalidReading)
		}
		hr.Value = nil
	} else {
		if hr.Value == nil {
			return fmt.Errorf("%w: %s needs a value", domain.ErrInvalidReading, hr.Type)
		}
		if !valueRanges[hr.Type].contains(*hr.Value) {
			return fmt.Errorf("%w: %s out of range", domain.ErrInvalidReading, hr.Type)
		}
		hr.Systolic, hr.Diastolic = nil, nil
	}
	if hr.Unit == "" {
		hr.Unit = defaultUnits[hr.Type]
	}
	return nil
}

func (r readingRange) contains(v float64) bool {
	return v >= r.min && v <= r.max
}

// readingShape makes "type" optional when the patient named the reading type,
// so a reply that omits it still parses and takes the expected type.
func readingShape(expected domain.ReadingType) extraction.Shape {
	typeField := extraction.Field{Name: "type", Type: extraction.String}
	if expected != "" {
		typeField.Optional = true
		typeField.Default = extraction.Const(string(expected))
	}
	return extraction.Shape{
		typeField,
		{Name: "systolic", Type: extraction.Number, Optional: true},
		{Name: "diastolic", Type: extraction.Number, Optional: true},
		{Name: "value", Type: extraction.Number, Optional: true},
		{Name: "unit", Type: extraction.String, Optional: true},
		{Name: "confidence", Type: extraction.Confidence},
	}
}

// RecordFromPhoto reads a device display from a photo. Nothing is stored
// unless the model parsed cleanly with confidence at or above the threshold
// and the numbers are plausible for the reading type.
func (s *healthReadingService) RecordFromPhoto(ctx context.Context, userID uuid.UUID, input PhotoReadingInput) (*domain.HealthReading, error) {
	if input.ExpectedType != "" && !domain.ValidReadingTypes[input.ExpectedType] {
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidReading, input.ExpectedType)
	}
	contentType, err := s.media.validate(&input.Photo)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, domain.ErrUnsupportedFileType
	}

	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.extractor.Extract(ctx, extraction.Request{
		PromptTemplate: prompt.MustTemplate(prompt.DeviceReading),
		Vars:           map[string]any{"expected_type": string(input.ExpectedType)},
		Shape:          readingShape(input.ExpectedType),
		Attachment:     &port.Attachment{Data: input.Photo.Data, MIMEType: contentType},
	})
	if err != nil {
		return nil, err
	}

	confidence := result.Number("confidence")
	if result.Status != extraction.Parsed || confidence < s.threshold {
		s.logger.Info("healthReading.RecordFromPhoto: rejected low confidence",
			"patient_id", patient.ID, "status", result.Status, "confidence", confidence)
		return nil, domain.ErrLowConfidenceReading
	}

	readingType := domain.ReadingType(strings.ToLower(strings.TrimSpace(result.String("type"))))
	if readingType == "" {
		readingType = input.ExpectedType
	}
	hr := &domain.HealthReading{
		PatientID:        patient.ID,
		Type:             readingType,
		Systolic:         parsedNumber(result, "systolic"),
		Diastolic:        parsedNumber(result, "diastolic"),
		Value:            parsedNumber(result, "value"),
		Unit:             strings.TrimSpace(result.String("unit")),
		Confidence:       &confidence,
		Source:           domain.ReadingSourcePhoto,
		ExtractionStatus: result.Status,
		RecordedAt:       s.now().UTC(),
	}
	if err := normalizeReading(hr); err != nil {
		s.logger.Info("healthReading.RecordFromPhoto: implausible reading", "error", err)
		return nil, domain.ErrLowConfidenceReading
	}

	key, err := s.media.put(ctx, patient.ID, mediaReadings, input.Photo.Data, contentType)
	if err != nil {
		return nil, err
	}
	hr.S3Key = key
	if err := s.repo.Create(ctx, hr); err != nil {
		s.media.remove(ctx, key)
		return nil, err
	}
	return hr, nil
}

// parsedNumber returns the field only when the model actually supplied it.
func parsedNumber(r *extraction.Result, name string) *float64 {
	if r.IsDefaulted(name) {
		return nil
	}
	v := r.Number(name)
	return &v
}

func (s *healthReadingService) List(ctx context.Context, userID uuid.UUID, filter port.ReadingFilter, offset, limit int) ([]domain.HealthReading, int, error) {
	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByPatient(ctx, patient.ID, filter, offset, limit)
}

func (s *healthReadingService) ListForPatient(ctx context.Context, actor Actor, patientID uuid.UUID, filter port.ReadingFilter, offset, limit int) ([]domain.HealthReading, int, error) {
	if actor.Role == domain.RolePatient {
		return nil, 0, domain.ErrForbidden
	}
	return s.repo.ListByPatient(ctx, patientID, filter, offset, limit)
}

func (s *healthReadingService) Delete(ctx context.Context, userID, readingID uuid.UUID) error {
	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, patient.ID, readingID)
}

func (s *healthReadingService) Export(ctx context.Context, userID uuid.UUID, filter port.ReadingFilter, format export.Format) (*ExportFile, error) {
	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return nil, err
	}
	readings, err := s.repo.ListAllByPatient(ctx, patient.ID, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case export.FormatXLSX:
		if err := export.WriteXLSX(&buf, readings); err != nil {
			return nil, err
		}
	case export.FormatCSV:
		buf.Write(export.BOM)
		w := export.NewCSVWriter(&buf)
		if err := w.WriteHeader(); err != nil {
			return nil, fmt.Errorf("healthReading.Export: %w", err)
		}
		if err := w.WriteReadings(readings); err != nil {
			return nil, fmt.Errorf("healthReading.Export: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("healthReading.Export: %w", err)
		}
	default:
		return nil, domain.ErrInvalidExportFormat
	}

	return &ExportFile{
		Filename:    export.BuildFilename(patient.FullName+"_readings", format, s.now()),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}
