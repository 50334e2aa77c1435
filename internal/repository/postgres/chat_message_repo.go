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

type chatMessageRepo struct {
	db *sqlx.DB
}

// NewChatMessageRepo creates a new PostgreSQL-backed ChatMessageRepository.
func NewChatMessageRepo(db *sqlx.DB) port.ChatMessageRepository {
	return &chatMessageRepo{db: db}
}

func (r *chatMessageRepo) Create(ctx context.Context, m *domain.ChatMessage) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now().UTC()
	if m.FollowUpQuestions == nil {
		m.FollowUpQuestions = []string{}
	}

	query := `INSERT INTO chat_messages (id, patient_id, role, content, follow_up_questions, urgent,
		extraction_status, model_used, created_at)
		VALUES (:id, :patient_id, :role, :content, :follow_up_questions, :urgent,
		:extraction_status, :model_used, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return mapWriteError("chatMessageRepo.Create", err, nil)
	}
	return nil
}

func (r *chatMessageRepo) ListRecent(ctx context.Context, patientID uuid.UUID, limit int) ([]domain.ChatMessage, error) {
	var msgs []domain.ChatMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT * FROM (
			SELECT * FROM chat_messages WHERE patient_id = $1
			ORDER BY created_at DESC LIMIT $2
		 ) recent ORDER BY created_at`,
		patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("chatMessageRepo.ListRecent: %w", err)
	}
	return msgs, nil
}

func (r *chatMessageRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, offset, limit int) ([]domain.ChatMessage, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM chat_messages WHERE patient_id = $1", patientID)
	if err != nil {
		return nil, 0, fmt.Errorf("chatMessageRepo.ListByPatient count: %w", err)
	}

	var msgs []domain.ChatMessage
	err = r.db.SelectContext(ctx, &msgs,
		"SELECT * FROM chat_messages WHERE patient_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3",
		patientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("chatMessageRepo.ListByPatient: %w", err)
	}
	return msgs, total, nil
}

func (r *chatMessageRepo) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM chat_messages WHERE patient_id = $1", patientID); err != nil {
		return fmt.Errorf("chatMessageRepo.DeleteByPatient: %w", err)
	}
	return nil
}
