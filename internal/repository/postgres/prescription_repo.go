package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"telehealth/internal/domain"
	"telehealth/internal/port"
)

type prescriptionRepo struct {
	db *sqlx.DB
}

// NewPrescriptionRepo creates a new PostgreSQL-backed PrescriptionRepository.
func NewPrescriptionRepo(db *sqlx.DB) port.PrescriptionRepository {
	return &prescriptionRepo{db: db}
}

func (r *prescriptionRepo) Create(ctx context.Context, rx *domain.Prescription) error {
	rx.ID = uuid.New()
	now := time.Now().UTC()
	rx.CreatedAt = now
	rx.UpdatedAt = now
	if rx.Medicines == nil {
		rx.Medicines = []string{}
	}

	query := `INSERT INTO prescriptions (id, patient_id, doctor_id, appointment_id, source, raw_text,
		medicines, instructions, extraction_status, model_used, s3_key, content_type,
		created_at, updated_at)
		VALUES (:id, :patient_id, :doctor_id, :appointment_id, :source, :raw_text,
		:medicines, :instructions, :extraction_status, :model_used, :s3_key, :content_type,
		:created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, rx); err != nil {
		return mapWriteError("prescriptionRepo.Create", err, nil)
	}
	return nil
}

func (r *prescriptionRepo) GetByID(ctx context.Context, rxID uuid.UUID) (*domain.Prescription, error) {
	var rx domain.Prescription
	if err := r.db.GetContext(ctx, &rx, "SELECT * FROM prescriptions WHERE id = $1", rxID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("prescriptionRepo.GetByID: %w", err)
	}
	return &rx, nil
}

func (r *prescriptionRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]domain.Prescription, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM prescriptions WHERE patient_id = $1", patientID)
	if err != nil {
		return nil, 0, fmt.Errorf("prescriptionRepo.ListByPatient count: %w", err)
	}

	var list []domain.Prescription
	err = r.db.SelectContext(ctx, &list,
		"SELECT * FROM prescriptions WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		patientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("prescriptionRepo.ListByPatient: %w", err)
	}
	return list, total, nil
}

func (r *prescriptionRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, offset, limit int) ([]domain.Prescription, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM prescriptions WHERE doctor_id = $1", doctorID)
	if err != nil {
		return nil, 0, fmt.Errorf("prescriptionRepo.ListByDoctor count: %w", err)
	}

	var list []domain.Prescription
	err = r.db.SelectContext(ctx, &list,
		"SELECT * FROM prescriptions WHERE doctor_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		doctorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("prescriptionRepo.ListByDoctor: %w", err)
	}
	return list, total, nil
}
