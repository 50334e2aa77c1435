package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"telehealth/internal/domain"
	"telehealth/internal/export"
	"telehealth/internal/extraction"
	"telehealth/internal/port"
	"telehealth/internal/service"
	"telehealth/mocks"
)

type readingFixture struct {
	svc         service.HealthReadingService
	repo        *mocks.MockHealthReadingRepo
	patientRepo *mocks.MockPatientRepo
	extractor   *mocks.MockExtractor
	storage     *mocks.MockObjectStorage
	patient     *domain.Patient
}

func newReadingFixture() readingFixture {
	f := readingFixture{
		repo:        new(mocks.MockHealthReadingRepo),
		patientRepo: new(mocks.MockPatientRepo),
		extractor:   new(mocks.MockExtractor),
		storage:     new(mocks.MockObjectStorage),
		patient:     &domain.Patient{ID: uuid.New(), UserID: uuid.New(), FullName: "Asha Verma"},
	}
	f.svc = service.NewHealthReadingService(f.repo, f.patientRepo, f.extractor, f.storage, testS3Config(), 0, discard)
	f.patientRepo.On("GetByUserID", mock.Anything, f.patient.UserID).Return(f.patient, nil).Maybe()
	return f
}

func TestHealthReadingService_Record_Valid(t *testing.T) {
	tests := []struct {
		name     string
		input    service.RecordReadingInput
		wantUnit string
	}{
		{"blood pressure", service.RecordReadingInput{Type: domain.ReadingBloodPressure, Systolic: ptr(120.0), Diastolic: ptr(80.0), Value: ptr(5.0)}, "mmHg"},
		{"heart rate", service.RecordReadingInput{Type: domain.ReadingHeartRate, Value: ptr(72.0), Systolic: ptr(1.0)}, "bpm"},
		{"glucose with unit", service.RecordReadingInput{Type: domain.ReadingBloodGlucose, Value: ptr(98.0), Unit: " mg/dl "}, "mg/dl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReadingFixture()
			f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.HealthReading")).Return(nil)

			hr, err := f.svc.Record(context.Background(), f.patient.UserID, tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.wantUnit, hr.Unit)
			assert.Equal(t, domain.ReadingSourceManual, hr.Source)
			assert.Equal(t, domain.ExtractionNone, hr.ExtractionStatus)
			if tt.input.Type == domain.ReadingBloodPressure {
				assert.Nil(t, hr.Value)
			} else {
				assert.Nil(t, hr.Systolic)
				assert.Nil(t, hr.Diastolic)
			}
		})
	}
}

func TestHealthReadingService_Record_Invalid(t *testing.T) {
	future := time.Now().Add(time.Hour)
	tests := []struct {
		name  string
		input service.RecordReadingInput
	}{
		{"unknown type", service.RecordReadingInput{Type: "cholesterol", Value: ptr(1.0)}},
		{"bp missing diastolic", service.RecordReadingInput{Type: domain.ReadingBloodPressure, Systolic: ptr(120.0)}},
		{"bp inverted", service.RecordReadingInput{Type: domain.ReadingBloodPressure, Systolic: ptr(80.0), Diastolic: ptr(120.0)}},
		{"oxygen over 100", service.RecordReadingInput{Type: domain.ReadingOxygen, Value: ptr(104.0)}},
		{"missing value", service.RecordReadingInput{Type: domain.ReadingWeight}},
		{"future timestamp", service.RecordReadingInput{Type: domain.ReadingWeight, Value: ptr(70.0), RecordedAt: &future}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReadingFixture()

			_, err := f.svc.Record(context.Background(), f.patient.UserID, tt.input)

			assert.ErrorIs(t, err, domain.ErrInvalidReading)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func photoResult(status extraction.Status, confidence float64) *extraction.Result {
	return &extraction.Result{
		Fields: map[string]any{
			"type":       "Blood_Pressure",
			"systolic":   132.0,
			"diastolic":  86.0,
			"value":      0.0,
			"unit":       "mmHg",
			"confidence": confidence,
		},
		Defaulted: []string{"value"},
		Status:    status,
		Model:     "gemini-2.0-flash",
	}
}

func TestHealthReadingService_RecordFromPhoto_Success(t *testing.T) {
	f := newReadingFixture()

	f.extractor.On("Extract", mock.Anything, mock.MatchedBy(func(req extraction.Request) bool {
		return req.Attachment != nil && req.Attachment.MIMEType == "image/png"
	})).Return(photoResult(extraction.Parsed, 91), nil)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return strings.Contains(in.Key, "/readings/") && strings.HasSuffix(in.Key, ".png")
	})).Return(&port.UploadOutput{}, nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.HealthReading")).Return(nil)

	hr, err := f.svc.RecordFromPhoto(context.Background(), f.patient.UserID, service.PhotoReadingInput{
		Photo: service.Upload{Data: pngBytes},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ReadingBloodPressure, hr.Type)
	assert.Equal(t, domain.ReadingSourcePhoto, hr.Source)
	require.NotNil(t, hr.Systolic)
	assert.InDelta(t, 132.0, *hr.Systolic, 0.001)
	assert.Nil(t, hr.Value)
	require.NotNil(t, hr.Confidence)
	assert.InDelta(t, 91.0, *hr.Confidence, 0.001)
	assert.NotEmpty(t, hr.S3Key)
}

func TestHealthReadingService_RecordFromPhoto_ExpectedTypeFillsMissingType(t *testing.T) {
	f := newReadingFixture()
	provider := new(mocks.MockCompletionProvider)
	provider.On("Complete", mock.Anything, mock.Anything).
		Return(&port.CompletionOutput{Text: `{"value": 72, "unit": "bpm", "confidence": 88}`, Model: "gemini-2.0-flash"}, nil)
	svc := service.NewHealthReadingService(f.repo, f.patientRepo, extraction.NewClient(provider), f.storage, testS3Config(), 0, discard)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.HealthReading")).Return(nil)

	hr, err := svc.RecordFromPhoto(context.Background(), f.patient.UserID, service.PhotoReadingInput{
		Photo:        service.Upload{Data: pngBytes},
		ExpectedType: domain.ReadingHeartRate,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ReadingHeartRate, hr.Type)
	assert.Equal(t, domain.ExtractionParsed, hr.ExtractionStatus)
	require.NotNil(t, hr.Value)
	assert.InDelta(t, 72.0, *hr.Value, 0.001)
}

func TestHealthReadingService_RecordFromPhoto_MissingTypeWithoutHintRefused(t *testing.T) {
	f := newReadingFixture()
	provider := new(mocks.MockCompletionProvider)
	provider.On("Complete", mock.Anything, mock.Anything).
		Return(&port.CompletionOutput{Text: `{"value": 72, "unit": "bpm", "confidence": 88}`}, nil)
	svc := service.NewHealthReadingService(f.repo, f.patientRepo, extraction.NewClient(provider), f.storage, testS3Config(), 0, discard)

	_, err := svc.RecordFromPhoto(context.Background(), f.patient.UserID, service.PhotoReadingInput{
		Photo: service.Upload{Data: pngBytes},
	})

	assert.ErrorIs(t, err, domain.ErrLowConfidenceReading)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHealthReadingService_RecordFromPhoto_Refused(t *testing.T) {
	tests := []struct {
		name   string
		result *extraction.Result
	}{
		{"low confidence", photoResult(extraction.Parsed, 30)},
		{"fallback reply", photoResult(extraction.FallbackUsed, 95)},
		{"implausible numbers", func() *extraction.Result {
			r := photoResult(extraction.Parsed, 90)
			r.Fields["systolic"] = 900.0
			return r
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReadingFixture()
			f.extractor.On("Extract", mock.Anything, mock.Anything).Return(tt.result, nil)

			_, err := f.svc.RecordFromPhoto(context.Background(), f.patient.UserID, service.PhotoReadingInput{
				Photo: service.Upload{Data: pngBytes},
			})

			assert.ErrorIs(t, err, domain.ErrLowConfidenceReading)
			f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestHealthReadingService_RecordFromPhoto_RejectsPDF(t *testing.T) {
	f := newReadingFixture()

	_, err := f.svc.RecordFromPhoto(context.Background(), f.patient.UserID, service.PhotoReadingInput{
		Photo: service.Upload{Data: pdfBytes},
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestHealthReadingService_RecordFromPhoto_UnknownExpectedType(t *testing.T) {
	f := newReadingFixture()

	_, err := f.svc.RecordFromPhoto(context.Background(), f.patient.UserID, service.PhotoReadingInput{
		Photo:        service.Upload{Data: pngBytes},
		ExpectedType: "cholesterol",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidReading)
}

func sampleReadings() []domain.HealthReading {
	at := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	return []domain.HealthReading{
		{Type: domain.ReadingHeartRate, Value: ptr(72.0), Unit: "bpm", Source: domain.ReadingSourceManual, ExtractionStatus: domain.ExtractionNone, RecordedAt: at},
		{Type: domain.ReadingBloodPressure, Systolic: ptr(120.0), Diastolic: ptr(80.0), Unit: "mmHg", Source: domain.ReadingSourcePhoto, ExtractionStatus: domain.ExtractionParsed, RecordedAt: at},
	}
}

func TestHealthReadingService_Export_CSV(t *testing.T) {
	f := newReadingFixture()
	filter := port.ReadingFilter{Type: domain.ReadingHeartRate}
	f.repo.On("ListAllByPatient", mock.Anything, f.patient.ID, filter).Return(sampleReadings(), nil)

	file, err := f.svc.Export(context.Background(), f.patient.UserID, filter, export.FormatCSV)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file.Data, export.BOM))
	assert.True(t, strings.HasPrefix(file.Filename, "Asha_Verma_readings_"))
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Data[len(export.BOM):])), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Recorded At,Type"))
	assert.Contains(t, lines[2], "120,80")
}

func TestHealthReadingService_Export_XLSX(t *testing.T) {
	f := newReadingFixture()
	f.repo.On("ListAllByPatient", mock.Anything, f.patient.ID, port.ReadingFilter{}).Return(sampleReadings(), nil)

	file, err := f.svc.Export(context.Background(), f.patient.UserID, port.ReadingFilter{}, export.FormatXLSX)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.Filename, ".xlsx"))

	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	rows, err := wb.GetRows("Readings")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestHealthReadingService_Export_UnknownFormat(t *testing.T) {
	f := newReadingFixture()
	f.repo.On("ListAllByPatient", mock.Anything, f.patient.ID, port.ReadingFilter{}).Return(nil, nil)

	_, err := f.svc.Export(context.Background(), f.patient.UserID, port.ReadingFilter{}, export.Format("pdf"))
	assert.ErrorIs(t, err, domain.ErrInvalidExportFormat)
}

func TestHealthReadingService_ListForPatient_StaffOnly(t *testing.T) {
	f := newReadingFixture()

	_, _, err := f.svc.ListForPatient(context.Background(), service.Actor{UserID: f.patient.UserID, Role: domain.RolePatient},
		f.patient.ID, port.ReadingFilter{}, 0, 20)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestHealthReadingService_Delete(t *testing.T) {
	f := newReadingFixture()
	readingID := uuid.New()
	f.repo.On("Delete", mock.Anything, f.patient.ID, readingID).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), f.patient.UserID, readingID))
	f.repo.AssertExpectations(t)
}
