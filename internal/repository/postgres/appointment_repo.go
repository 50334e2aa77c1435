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

type appointmentRepo struct {
	db *sqlx.DB
}

// NewAppointmentRepo creates a new PostgreSQL-backed AppointmentRepository.
func NewAppointmentRepo(db *sqlx.DB) port.AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) Create(ctx context.Context, a *domain.Appointment) error {
	a.ID = uuid.New()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = domain.AppointmentScheduled
	}

	setEnd(a)

	query := `INSERT INTO appointments (id, patient_id, doctor_id, scheduled_at, duration_minutes,
		ends_at, reason, status, notes, created_at, updated_at)
		VALUES (:id, :patient_id, :doctor_id, :scheduled_at, :duration_minutes,
		:ends_at, :reason, :status, :notes, :created_at, :updated_at)`

	// The exclusion constraint on open slots turns a lost booking race into ErrSlotTaken.
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return mapWriteError("appointmentRepo.Create", err, domain.ErrSlotTaken)
	}
	return nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, apptID uuid.UUID) (*domain.Appointment, error) {
	var a domain.Appointment
	if err := r.db.GetContext(ctx, &a, "SELECT * FROM appointments WHERE id = $1", apptID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("appointmentRepo.GetByID: %w", err)
	}
	return &a, nil
}

func (r *appointmentRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]domain.Appointment, int, error) {
	return r.listBy(ctx, "appointmentRepo.ListByPatient", "patient_id", patientID, offset, limit)
}

func (r *appointmentRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, offset, limit int) ([]domain.Appointment, int, error) {
	return r.listBy(ctx, "appointmentRepo.ListByDoctor", "doctor_id", doctorID, offset, limit)
}

// listBy lists appointments where column equals id. column is never user input.
func (r *appointmentRepo) listBy(ctx context.Context, op, column string, id uuid.UUID, offset, limit int) ([]domain.Appointment, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		fmt.Sprintf("SELECT COUNT(*) FROM appointments WHERE %s = $1", column), id)
	if err != nil {
		return nil, 0, fmt.Errorf("%s count: %w", op, err)
	}

	var appts []domain.Appointment
	err = r.db.SelectContext(ctx, &appts,
		fmt.Sprintf("SELECT * FROM appointments WHERE %s = $1 ORDER BY scheduled_at LIMIT $2 OFFSET $3", column),
		id, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return appts, total, nil
}

func (r *appointmentRepo) ListUpcomingByPatient(ctx context.Context, patientID uuid.UUID, from time.Time, limit int) ([]domain.Appointment, error) {
	var appts []domain.Appointment
	err := r.db.SelectContext(ctx, &appts,
		`SELECT * FROM appointments
		 WHERE patient_id = $1 AND scheduled_at >= $2 AND status IN ('scheduled', 'confirmed')
		 ORDER BY scheduled_at LIMIT $3`,
		patientID, from, limit)
	if err != nil {
		return nil, fmt.Errorf("appointmentRepo.ListUpcomingByPatient: %w", err)
	}
	return appts, nil
}

const conflictQuery = `SELECT EXISTS (
	SELECT 1 FROM appointments
	WHERE doctor_id = $1
	  AND status IN ('scheduled', 'confirmed')
	  AND scheduled_at < $2::timestamptz + make_interval(mins => $3::int)
	  AND ends_at > $2::timestamptz
	  AND ($4::uuid IS NULL OR id <> $4::uuid)
)`

func (r *appointmentRepo) HasConflict(ctx context.Context, doctorID uuid.UUID, start time.Time, durationMinutes int, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, conflictQuery, doctorID, start, durationMinutes, excludeID); err != nil {
		return false, fmt.Errorf("appointmentRepo.HasConflict: %w", err)
	}
	return exists, nil
}

func (r *appointmentRepo) Update(ctx context.Context, a *domain.Appointment) error {
	a.UpdatedAt = time.Now().UTC()
	setEnd(a)
	query := `UPDATE appointments SET scheduled_at = :scheduled_at, duration_minutes = :duration_minutes,
		ends_at = :ends_at, reason = :reason, status = :status, notes = :notes, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return mapWriteError("appointmentRepo.Update", err, domain.ErrSlotTaken)
	}
	rows, _ := result.RowsAffected()
	return rowsOrNotFound(rows)
}

// setEnd derives ends_at, which the no-overlap exclusion constraint indexes.
func setEnd(a *domain.Appointment) {
	a.EndsAt = a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}
