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

type userRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new PostgreSQL-backed UserRepository.
func NewUserRepo(db *sqlx.DB) port.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.New()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.AuthProvider == "" {
		user.AuthProvider = domain.AuthProviderEmail
	}

	query := `INSERT INTO users (id, email, password_hash, full_name, role, is_active,
		auth_provider, provider_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Role, user.IsActive,
		user.AuthProvider, user.ProviderUserID, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return mapWriteError("userRepo.Create", err, domain.ErrDuplicateEmail)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE lower(email) = lower($1)", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByEmail: %w", err)
	}
	return &user, nil
}

func (r *userRepo) GetByProviderID(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		"SELECT * FROM users WHERE auth_provider = $1 AND provider_user_id = $2", provider, providerUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByProviderID: %w", err)
	}
	return &user, nil
}

func (r *userRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users"); err != nil {
		return nil, 0, fmt.Errorf("userRepo.List count: %w", err)
	}

	var users []domain.User
	err := r.db.SelectContext(ctx, &users,
		"SELECT * FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("userRepo.List: %w", err)
	}
	return users, total, nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := `UPDATE users SET email = $1, full_name = $2, role = $3, is_active = $4,
		password_hash = $5, updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		user.Email, user.FullName, user.Role, user.IsActive, user.PasswordHash, user.UpdatedAt, user.ID)
	if err != nil {
		return mapWriteError("userRepo.Update", err, domain.ErrDuplicateEmail)
	}
	rows, _ := result.RowsAffected()
	return rowsOrNotFound(rows)
}

func (r *userRepo) LinkProvider(ctx context.Context, userID uuid.UUID, provider domain.AuthProvider, providerUserID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET auth_provider = $1, provider_user_id = $2, updated_at = NOW()
		 WHERE id = $3`,
		provider, providerUserID, userID)
	if err != nil {
		return mapWriteError("userRepo.LinkProvider", err, nil)
	}
	rows, _ := result.RowsAffected()
	return rowsOrNotFound(rows)
}

func (r *userRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return mapWriteError("userRepo.Delete", err, nil)
	}
	rows, _ := result.RowsAffected()
	return rowsOrNotFound(rows)
}
