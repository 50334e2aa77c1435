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

type emergencyAlertRepo struct {
	db *sqlx.DB
}

// NewEmergencyAlertRepo creates a new PostgreSQL-backed EmergencyAlertRepository.
func NewEmergencyAlertRepo(db *sqlx.DB) port.EmergencyAlertRepository {
	return &emergencyAlertRepo{db: db}
}

func (r *emergencyAlertRepo) Create(ctx context.Context, a *domain.EmergencyAlert) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	if a.Status == "" {
		a.Status = domain.AlertPending
	}

	query := `INSERT INTO emergency_alerts (id, patient_id, kind, latitude, longitude, message,
		peak_g, status, notify_error, created_at)
		VALUES (:id, :patient_id, :kind, :latitude, :longitude, :message,
		:peak_g, :status, :notify_error, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return mapWriteError("emergencyAlertRepo.Create", err, nil)
	}
	return nil
}

func (r *emergencyAlertRepo) UpdateStatus(ctx context.Context, alertID uuid.UUID, status domain.AlertStatus, notifyErr string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE emergency_alerts SET status = $1, notify_error = $2 WHERE id = $3",
		status, notifyErr, alertID)
	if err != nil {
		return mapWriteError("emergencyAlertRepo.UpdateStatus", err, nil)
	}
	rows, _ := result.RowsAffected()
	return rowsOrNotFound(rows)
}

func (r *emergencyAlertRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]domain.EmergencyAlert, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM emergency_alerts WHERE patient_id = $1", patientID)
	if err != nil {
		return nil, 0, fmt.Errorf("emergencyAlertRepo.ListByPatient count: %w", err)
	}

	var alerts []domain.EmergencyAlert
	err = r.db.SelectContext(ctx, &alerts,
		"SELECT * FROM emergency_alerts WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		patientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("emergencyAlertRepo.ListByPatient: %w", err)
	}
	return alerts, total, nil
}
