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

type doctorRepo struct {
	db *sqlx.DB
}

// NewDoctorRepo creates a new PostgreSQL-backed DoctorRepository.
func NewDoctorRepo(db *sqlx.DB) port.DoctorRepository {
	return &doctorRepo{db: db}
}

func (r *doctorRepo) Create(ctx context.Context, d *domain.Doctor) error {
	d.ID = uuid.New()
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `INSERT INTO doctors (id, user_id, full_name, specialization, license_number, bio,
		consultation_fee, is_available, created_at, updated_at)
		VALUES (:id, :user_id, :full_name, :specialization, :license_number, :bio,
		:consultation_fee, :is_available, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, d); err != nil {
		return mapWriteError("doctorRepo.Create", err, domain.ErrDuplicateProfile)
	}
	return nil
}

func (r *doctorRepo) GetByID(ctx context.Context, doctorID uuid.UUID) (*domain.Doctor, error) {
	return r.get(ctx, "doctorRepo.GetByID", "SELECT * FROM doctors WHERE id = $1", doctorID)
}

func (r *doctorRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Doctor, error) {
	return r.get(ctx, "doctorRepo.GetByUserID", "SELECT * FROM doctors WHERE user_id = $1", userID)
}

func (r *doctorRepo) get(ctx context.Context, op, query string, id uuid.UUID) (*domain.Doctor, error) {
	var d domain.Doctor
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &d, nil
}

// An empty specialization matches every doctor.
const doctorFilterClause = `WHERE ($1 = '' OR lower(specialization) = lower($1))
	AND (NOT $2 OR is_available)`

func (r *doctorRepo) List(ctx context.Context, filter port.DoctorFilter, offset, limit int) ([]domain.Doctor, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM doctors "+doctorFilterClause,
		filter.Specialization, filter.AvailableOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("doctorRepo.List count: %w", err)
	}

	var doctors []domain.Doctor
	err = r.db.SelectContext(ctx, &doctors,
		"SELECT * FROM doctors "+doctorFilterClause+" ORDER BY full_name LIMIT $3 OFFSET $4",
		filter.Specialization, filter.AvailableOnly, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("doctorRepo.List: %w", err)
	}
	return doctors, total, nil
}

func (r *doctorRepo) Update(ctx context.Context, d *domain.Doctor) error {
	d.UpdatedAt = time.Now().UTC()
	query := `UPDATE doctors SET full_name = :full_name, specialization = :specialization,
		license_number = :license_number, bio = :bio, consultation_fee = :consultation_fee,
		is_available = :is_available, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, d)
	if err != nil {
		return mapWriteError("doctorRepo.Update", err, nil)
	}
	rows, _ := result.RowsAffected()
	return rowsOrNotFound(rows)
}
