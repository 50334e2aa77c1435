package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"telehealth/internal/domain"
	"telehealth/internal/extraction"
	"telehealth/internal/port"
	"telehealth/internal/service"
	"telehealth/mocks"
)

type rxFixture struct {
	svc         service.PrescriptionService
	repo        *mocks.MockPrescriptionRepo
	patientRepo *mocks.MockPatientRepo
	doctorRepo  *mocks.MockDoctorRepo
	apptRepo    *mocks.MockAppointmentRepo
	extractor   *mocks.MockExtractor
	pdfText     *mocks.MockTextExtractor
	storage     *mocks.MockObjectStorage
	patient     *domain.Patient
	doctor      *domain.Doctor
}

func newRxFixture() rxFixture {
	f := rxFixture{
		repo:        new(mocks.MockPrescriptionRepo),
		patientRepo: new(mocks.MockPatientRepo),
		doctorRepo:  new(mocks.MockDoctorRepo),
		apptRepo:    new(mocks.MockAppointmentRepo),
		extractor:   new(mocks.MockExtractor),
		pdfText:     new(mocks.MockTextExtractor),
		storage:     new(mocks.MockObjectStorage),
		patient:     &domain.Patient{ID: uuid.New(), UserID: uuid.New(), Allergies: []string{"Penicillin"}},
		doctor:      &domain.Doctor{ID: uuid.New(), UserID: uuid.New()},
	}
	f.svc = service.NewPrescriptionService(f.repo, f.patientRepo, f.doctorRepo, f.apptRepo,
		f.extractor, f.pdfText, f.storage, testS3Config(), discard)
	f.doctorRepo.On("GetByUserID", mock.Anything, f.doctor.UserID).Return(f.doctor, nil).Maybe()
	f.patientRepo.On("GetByID", mock.Anything, f.patient.ID).Return(f.patient, nil).Maybe()
	f.patientRepo.On("GetByUserID", mock.Anything, f.patient.UserID).Return(f.patient, nil).Maybe()
	return f
}

func parsedResult(medicines []string, instructions string) *extraction.Result {
	return &extraction.Result{
		Fields: map[string]any{"medicines": medicines, "instructions": instructions},
		Status: extraction.Parsed,
		Model:  "gemini-2.0-flash",
	}
}

func TestPrescriptionService_Create_Text(t *testing.T) {
	f := newRxFixture()

	f.extractor.On("Extract", mock.Anything, mock.MatchedBy(func(req extraction.Request) bool {
		return req.Attachment == nil &&
			req.Vars["text"] == "Amoxicillin 500mg tid" &&
			req.Vars["allergies"] == "Penicillin"
	})).Return(parsedResult([]string{"Amoxicillin 500mg", " amoxicillin 500mg"}, " three times daily "), nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Prescription")).Return(nil)

	rx, err := f.svc.Create(context.Background(), f.doctor.UserID, service.CreatePrescriptionInput{
		PatientID: f.patient.ID,
		Text:      "  Amoxicillin 500mg tid ",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PrescriptionSourceText, rx.Source)
	assert.Equal(t, []string{"Amoxicillin 500mg"}, []string(rx.Medicines))
	assert.Equal(t, "three times daily", rx.Instructions)
	assert.Equal(t, domain.ExtractionParsed, rx.ExtractionStatus)
	assert.Equal(t, "gemini-2.0-flash", rx.ModelUsed)
	assert.Empty(t, rx.S3Key)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestPrescriptionService_Create_Empty(t *testing.T) {
	f := newRxFixture()

	_, err := f.svc.Create(context.Background(), f.doctor.UserID, service.CreatePrescriptionInput{
		PatientID: f.patient.ID,
		Text:      "   ",
	})

	assert.ErrorIs(t, err, domain.ErrEmptyPrescription)
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestPrescriptionService_Create_AppointmentMismatch(t *testing.T) {
	f := newRxFixture()
	apptID := uuid.New()
	f.apptRepo.On("GetByID", mock.Anything, apptID).Return(&domain.Appointment{
		ID: apptID, PatientID: uuid.New(), DoctorID: f.doctor.ID,
	}, nil)

	_, err := f.svc.Create(context.Background(), f.doctor.UserID, service.CreatePrescriptionInput{
		PatientID:     f.patient.ID,
		AppointmentID: &apptID,
		Text:          "Paracetamol",
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPrescriptionService_Create_PDFWithTextLayer(t *testing.T) {
	f := newRxFixture()
	body := "Metformin 500mg twice daily after meals"

	f.pdfText.On("ExtractText", pdfBytes).Return(body, nil)
	f.extractor.On("Extract", mock.Anything, mock.MatchedBy(func(req extraction.Request) bool {
		text, _ := req.Vars["text"].(string)
		return req.Attachment == nil && strings.HasPrefix(text, body) && strings.HasSuffix(text, "review in 1 month")
	})).Return(parsedResult([]string{"Metformin 500mg"}, "twice daily"), nil)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "test-bucket" && in.ContentType == "application/pdf" &&
			strings.HasPrefix(in.Key, "patients/"+f.patient.ID.String()+"/prescriptions/") &&
			strings.HasSuffix(in.Key, ".pdf")
	})).Return(&port.UploadOutput{}, nil)
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Prescription")).Return(nil)

	rx, err := f.svc.Create(context.Background(), f.doctor.UserID, service.CreatePrescriptionInput{
		PatientID: f.patient.ID,
		Text:      "review in 1 month",
		File:      &service.Upload{Data: pdfBytes, ContentType: "application/octet-stream"},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PrescriptionSourcePDF, rx.Source)
	assert.Equal(t, "application/pdf", rx.ContentType)
	assert.NotEmpty(t, rx.S3Key)
}

func TestPrescriptionService_Create_ImageAttachment(t *testing.T) {
	f := newRxFixture()

	f.extractor.On("Extract", mock.Anything, mock.MatchedBy(func(req extraction.Request) bool {
		return req.Attachment != nil && req.Attachment.MIMEType == "image/png"
	})).Return(&extraction.Result{
		Fields:    map[string]any{"medicines": []string{"Cetirizine 10mg"}, "instructions": "Cetirizine 10mg"},
		Status:    extraction.FallbackUsed,
		Defaulted: []string{"medicines", "instructions"},
	}, nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	rx, err := f.svc.Create(context.Background(), f.doctor.UserID, service.CreatePrescriptionInput{
		PatientID: f.patient.ID,
		File:      &service.Upload{Data: pngBytes},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PrescriptionSourceImage, rx.Source)
	assert.Equal(t, domain.ExtractionFallbackUsed, rx.ExtractionStatus)
	f.pdfText.AssertNotCalled(t, "ExtractText", mock.Anything)
}

func TestPrescriptionService_Create_UnsupportedFile(t *testing.T) {
	f := newRxFixture()

	_, err := f.svc.Create(context.Background(), f.doctor.UserID, service.CreatePrescriptionInput{
		PatientID: f.patient.ID,
		File:      &service.Upload{Data: []byte("just some plain text, not an image")},
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestPrescriptionService_Create_RemovesObjectWhenInsertFails(t *testing.T) {
	f := newRxFixture()

	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(parsedResult([]string{"X"}, ""), nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.storage.On("Delete", mock.Anything, "test-bucket", mock.AnythingOfType("string")).Return(nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := f.svc.Create(context.Background(), f.doctor.UserID, service.CreatePrescriptionInput{
		PatientID: f.patient.ID,
		File:      &service.Upload{Data: pngBytes},
	})

	assert.Error(t, err)
	f.storage.AssertCalled(t, "Delete", mock.Anything, "test-bucket", mock.AnythingOfType("string"))
}

func TestPrescriptionService_Get_OtherPatientHidden(t *testing.T) {
	f := newRxFixture()
	rxID := uuid.New()
	f.repo.On("GetByID", mock.Anything, rxID).Return(&domain.Prescription{ID: rxID, PatientID: uuid.New()}, nil)

	_, err := f.svc.Get(context.Background(), service.Actor{UserID: f.patient.UserID, Role: domain.RolePatient}, rxID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPrescriptionService_FileURL(t *testing.T) {
	f := newRxFixture()
	rxID := uuid.New()
	f.repo.On("GetByID", mock.Anything, rxID).Return(&domain.Prescription{
		ID: rxID, PatientID: f.patient.ID, S3Key: "patients/x/prescriptions/y.pdf",
	}, nil)
	f.storage.On("GetPresignedURL", mock.Anything, "test-bucket", "patients/x/prescriptions/y.pdf", int64(600)).
		Return("https://signed.example/y.pdf", nil)

	url, err := f.svc.FileURL(context.Background(), service.Actor{UserID: f.patient.UserID, Role: domain.RolePatient}, rxID)

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/y.pdf", url)
}

func TestPrescriptionService_FileURL_TextOnly(t *testing.T) {
	f := newRxFixture()
	rxID := uuid.New()
	f.repo.On("GetByID", mock.Anything, rxID).Return(&domain.Prescription{ID: rxID, PatientID: f.patient.ID}, nil)

	_, err := f.svc.FileURL(context.Background(), service.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}, rxID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
