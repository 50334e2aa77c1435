package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"telehealth/internal/domain"
	"telehealth/internal/port"
)

type healthReadingRepo struct {
	db *sqlx.DB
}

// NewHealthReadingRepo creates a new PostgreSQL-backed HealthReadingRepository.
func NewHealthReadingRepo(db *sqlx.DB) port.HealthReadingRepository {
	return &healthReadingRepo{db: db}
}

func (r *healthReadingRepo) Create(ctx context.Context, hr *domain.HealthReading) error {
	hr.ID = uuid.New()
	hr.CreatedAt = time.Now().UTC()
	if hr.RecordedAt.IsZero() {
		hr.RecordedAt = hr.CreatedAt
	}

	query := `INSERT INTO health_readings (id, patient_id, type, systolic, diastolic, value, unit,
		confidence, source, extraction_status, s3_key, recorded_at, created_at)
		VALUES (:id, :patient_id, :type, :systolic, :diastolic, :value, :unit,
		:confidence, :source, :extraction_status, :s3_key, :recorded_at, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, hr); err != nil {
		return mapWriteError("healthReadingRepo.Create", err, nil)
	}
	return nil
}

// Nil bounds and an empty type match everything.
const readingFilterClause = `WHERE patient_id = $1
	AND ($2 = '' OR type = $2)
	AND ($3::timestamptz IS NULL OR recorded_at >= $3)
	AND ($4::timestamptz IS NULL OR recorded_at < $4)`

func (r *healthReadingRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, filter port.ReadingFilter, offset, limit int) ([]domain.HealthReading, int, error) {
	args := []interface{}{patientID, string(filter.Type), filter.From, filter.To}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM health_readings "+readingFilterClause, args...); err != nil {
		return nil, 0, fmt.Errorf("healthReadingRepo.ListByPatient count: %w", err)
	}

	var readings []domain.HealthReading
	err := r.db.SelectContext(ctx, &readings,
		"SELECT * FROM health_readings "+readingFilterClause+" ORDER BY recorded_at DESC LIMIT $5 OFFSET $6",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("healthReadingRepo.ListByPatient: %w", err)
	}
	return readings, total, nil
}

func (r *healthReadingRepo) ListAllByPatient(ctx context.Context, patientID uuid.UUID, filter port.ReadingFilter) ([]domain.HealthReading, error) {
	var readings []domain.HealthReading
	err := r.db.SelectContext(ctx, &readings,
		"SELECT * FROM health_readings "+readingFilterClause+" ORDER BY recorded_at",
		patientID, string(filter.Type), filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("healthReadingRepo.ListAllByPatient: %w", err)
	}
	return readings, nil
}

func (r *healthReadingRepo) Delete(ctx context.Context, patientID, readingID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM health_readings WHERE id = $1 AND patient_id = $2", readingID, patientID)
	if err != nil {
		return fmt.Errorf("healthReadingRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rowsOrNotFound(rows)
}
