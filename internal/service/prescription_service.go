package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"telehealth/internal/config"
	"telehealth/internal/domain"
	"telehealth/internal/extraction"
	"telehealth/internal/port"
	"telehealth/internal/prompt"
)

// minPDFTextLen is the shortest embedded PDF text treated as a typed
// prescription. Anything shorter is sent to the model as a scan.
const minPDFTextLen = 20

// prescriptionShape is what the model must return for a prescription. A reply
// that is not JSON is usually the medicines listed one per line.
var prescriptionShape = extraction.Shape{
	{Name: "medicines", Type: extraction.StringList, Default: extraction.SplitLines},
	{Name: "instructions", Type: extraction.String, Default: extraction.RawText},
}

// CreatePrescriptionInput is a doctor's prescription for a patient. Either
// Text or File must be set; with a file, Text is passed along as notes.
type CreatePrescriptionInput struct {
	PatientID     uuid.UUID
	AppointmentID *uuid.UUID
	Text          string
	File          *Upload
}

// PrescriptionService defines the prescription contract.
type PrescriptionService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreatePrescriptionInput) (*domain.Prescription, error)
	Get(ctx context.Context, actor Actor, rxID uuid.UUID) (*domain.Prescription, error)
	ListMine(ctx context.Context, actor Actor, offset, limit int) ([]domain.Prescription, int, error)
	ListForPatient(ctx context.Context, actor Actor, patientID uuid.UUID, offset, limit int) ([]domain.Prescription, int, error)
	FileURL(ctx context.Context, actor Actor, rxID uuid.UUID) (string, error)
}

type prescriptionService struct {
	repo        port.PrescriptionRepository
	patientRepo port.PatientRepository
	doctorRepo  port.DoctorRepository
	apptRepo    port.AppointmentRepository
	extractor   extraction.Extractor
	pdfText     port.TextExtractor
	media       *mediaStore
	logger      *slog.Logger
}

// NewPrescriptionService creates a new PrescriptionService implementation.
func NewPrescriptionService(
	repo port.PrescriptionRepository,
	patientRepo port.PatientRepository,
	doctorRepo port.DoctorRepository,
	apptRepo port.AppointmentRepository,
	extractor extraction.Extractor,
	pdfText port.TextExtractor,
	storage port.ObjectStorage,
	s3Cfg *config.S3Config,
	logger *slog.Logger,
) PrescriptionService {
	return &prescriptionService{
		repo:        repo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		apptRepo:    apptRepo,
		extractor:   extractor,
		pdfText:     pdfText,
		media:       newMediaStore(storage, s3Cfg, logger),
		logger:      logger,
	}
}

func (s *prescriptionService) Create(ctx context.Context, userID uuid.UUID, input CreatePrescriptionInput) (*domain.Prescription, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" && input.File == nil {
		return nil, domain.ErrEmptyPrescription
	}

	doctor, err := doctorFor(ctx, s.doctorRepo, userID)
	if err != nil {
		return nil, err
	}
	patient, err := s.patientRepo.GetByID(ctx, input.PatientID)
	if err != nil {
		return nil, err
	}
	if input.AppointmentID != nil {
		appt, apptErr := s.apptRepo.GetByID(ctx, *input.AppointmentID)
		if apptErr != nil {
			return nil, apptErr
		}
		if appt.PatientID != patient.ID || appt.DoctorID != doctor.ID {
			return nil, domain.ErrForbidden
		}
	}

	rx := &domain.Prescription{
		PatientID:     patient.ID,
		DoctorID:      doctor.ID,
		AppointmentID: input.AppointmentID,
		Source:        domain.PrescriptionSourceText,
		RawText:       text,
	}

	req := extraction.Request{Shape: prescriptionShape}
	if input.File == nil {
		req.PromptTemplate = prompt.MustTemplate(prompt.Prescription)
		req.Vars = map[string]any{"text": text, "allergies": strings.Join(patient.Allergies, ", ")}
	} else {
		if err := s.fileRequest(&req, rx, patient, input.File, text); err != nil {
			return nil, err
		}
	}

	result, err := s.extractor.Extract(ctx, req)
	if err != nil {
		if errors.Is(err, extraction.ErrInvalidRequest) {
			return nil, domain.ErrUnsupportedFileType
		}
		return nil, err
	}

	rx.Medicines = cleanList(result.Strings("medicines"))
	rx.Instructions = strings.TrimSpace(result.String("instructions"))
	rx.ExtractionStatus = result.Status
	rx.ModelUsed = result.Model
	if result.Status == extraction.FallbackUsed {
		s.logger.Info("prescription.Create: stored fallback extraction",
			"patient_id", patient.ID, "defaulted", result.Defaulted)
	}

	if input.File != nil {
		key, putErr := s.media.put(ctx, patient.ID, mediaPrescriptions, input.File.Data, rx.ContentType)
		if putErr != nil {
			return nil, putErr
		}
		rx.S3Key = key
	}

	if err := s.repo.Create(ctx, rx); err != nil {
		if rx.S3Key != "" {
			s.media.remove(ctx, rx.S3Key)
		}
		return nil, err
	}
	return rx, nil
}

// fileRequest builds the extraction request for an uploaded prescription. A
// PDF with a text layer is read locally and treated like typed text. Scans and
// photos go to the model as attachments.
func (s *prescriptionService) fileRequest(req *extraction.Request, rx *domain.Prescription, patient *domain.Patient, file *Upload, notes string) error {
	contentType, err := s.media.validate(file)
	if err != nil {
		return err
	}
	rx.ContentType = contentType

	if contentType == "application/pdf" {
		rx.Source = domain.PrescriptionSourcePDF
		body, textErr := s.pdfText.ExtractText(file.Data)
		if textErr == nil && len(strings.TrimSpace(body)) >= minPDFTextLen {
			rx.RawText = strings.TrimSpace(body)
			if notes != "" {
				rx.RawText += "\n\n" + notes
			}
			req.PromptTemplate = prompt.MustTemplate(prompt.Prescription)
			req.Vars = map[string]any{"text": rx.RawText, "allergies": strings.Join(patient.Allergies, ", ")}
			return nil
		}
		if textErr != nil {
			s.logger.Debug("prescription.Create: no text layer, sending scan", "error", textErr)
		}
	} else {
		rx.Source = domain.PrescriptionSourceImage
	}

	req.PromptTemplate = prompt.MustTemplate(prompt.PrescriptionImage)
	req.Vars = map[string]any{"notes": notes}
	req.Attachment = &port.Attachment{Data: file.Data, MIMEType: contentType}
	return nil
}

func (s *prescriptionService) Get(ctx context.Context, actor Actor, rxID uuid.UUID) (*domain.Prescription, error) {
	rx, err := s.repo.GetByID(ctx, rxID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return rx, nil
	case domain.RolePatient:
		p, pErr := patientFor(ctx, s.patientRepo, actor.UserID)
		if pErr != nil {
			return nil, pErr
		}
		if p.ID == rx.PatientID {
			return rx, nil
		}
	case domain.RoleDoctor:
		// Any doctor may read a prescription, so the treating doctor sees history.
		if _, dErr := doctorFor(ctx, s.doctorRepo, actor.UserID); dErr != nil {
			return nil, dErr
		}
		return rx, nil
	}
	return nil, domain.ErrNotFound
}

func (s *prescriptionService) ListMine(ctx context.Context, actor Actor, offset, limit int) ([]domain.Prescription, int, error) {
	switch actor.Role {
	case domain.RolePatient:
		p, err := patientFor(ctx, s.patientRepo, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		return s.repo.ListByPatient(ctx, p.ID, offset, limit)
	case domain.RoleDoctor:
		d, err := doctorFor(ctx, s.doctorRepo, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		return s.repo.ListByDoctor(ctx, d.ID, offset, limit)
	}
	return nil, 0, domain.ErrForbidden
}

func (s *prescriptionService) ListForPatient(ctx context.Context, actor Actor, patientID uuid.UUID, offset, limit int) ([]domain.Prescription, int, error) {
	if actor.Role == domain.RolePatient {
		return nil, 0, domain.ErrForbidden
	}
	return s.repo.ListByPatient(ctx, patientID, offset, limit)
}

func (s *prescriptionService) FileURL(ctx context.Context, actor Actor, rxID uuid.UUID) (string, error) {
	rx, err := s.Get(ctx, actor, rxID)
	if err != nil {
		return "", err
	}
	u, err := s.media.url(ctx, rx.S3Key)
	if err != nil {
		return "", fmt.Errorf("prescription.FileURL: %w", err)
	}
	return u, nil
}
