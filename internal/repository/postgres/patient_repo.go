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

type patientRepo struct {
	db *sqlx.DB
}

// NewPatientRepo creates a new PostgreSQL-backed PatientRepository.
func NewPatientRepo(db *sqlx.DB) port.PatientRepository {
	return &patientRepo{db: db}
}

func (r *patientRepo) Create(ctx context.Context, p *domain.Patient) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Allergies == nil {
		p.Allergies = []string{}
	}

	query := `INSERT INTO patients (id, user_id, full_name, date_of_birth, gender, phone, blood_group,
		allergies, emergency_contact_name, emergency_contact_email, emergency_contact_phone,
		created_at, updated_at)
		VALUES (:id, :user_id, :full_name, :date_of_birth, :gender, :phone, :blood_group,
		:allergies, :emergency_contact_name, :emergency_contact_email, :emergency_contact_phone,
		:created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return mapWriteError("patientRepo.Create", err, domain.ErrDuplicateProfile)
	}
	return nil
}

func (r *patientRepo) GetByID(ctx context.Context, patientID uuid.UUID) (*domain.Patient, error) {
	return r.get(ctx, "patientRepo.GetByID", "SELECT * FROM patients WHERE id = $1", patientID)
}

func (r *patientRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Patient, error) {
	return r.get(ctx, "patientRepo.GetByUserID", "SELECT * FROM patients WHERE user_id = $1", userID)
}

func (r *patientRepo) get(ctx context.Context, op, query string, id uuid.UUID) (*domain.Patient, error) {
	var p domain.Patient
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

func (r *patientRepo) List(ctx context.Context, offset, limit int) ([]domain.Patient, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM patients"); err != nil {
		return nil, 0, fmt.Errorf("patientRepo.List count: %w", err)
	}

	var patients []domain.Patient
	err := r.db.SelectContext(ctx, &patients,
		"SELECT * FROM patients ORDER BY full_name LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("patientRepo.List: %w", err)
	}
	return patients, total, nil
}

func (r *patientRepo) Update(ctx context.Context, p *domain.Patient) error {
	p.UpdatedAt = time.Now().UTC()
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	query := `UPDATE patients SET full_name = :full_name, date_of_birth = :date_of_birth,
		gender = :gender, phone = :phone, blood_group = :blood_group, allergies = :allergies,
		emergency_contact_name = :emergency_contact_name,
		emergency_contact_email = :emergency_contact_email,
		emergency_contact_phone = :emergency_contact_phone,
		updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return mapWriteError("patientRepo.Update", err, nil)
	}
	rows, _ := result.RowsAffected()
	return rowsOrNotFound(rows)
}
