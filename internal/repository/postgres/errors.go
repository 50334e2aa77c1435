package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"telehealth/internal/domain"
)

// Postgres SQLSTATE codes surfaced to callers.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeExclusionViolation  = "23P01"
)

// mapWriteError converts a driver error from an insert or update. A unique or
// exclusion violation becomes onDuplicate when given. Other constraint violations wrap
// domain.ErrConstraintViolation with the server's message so callers can show it.
func mapWriteError(op string, err error, onDuplicate error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgErr.Code {
	case codeUniqueViolation, codeExclusionViolation:
		if onDuplicate != nil {
			return onDuplicate
		}
		return fmt.Errorf("%w: %s", domain.ErrConstraintViolation, pgErr.Message)
	case codeForeignKeyViolation, codeNotNullViolation, codeCheckViolation:
		return fmt.Errorf("%w: %s", domain.ErrConstraintViolation, pgErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// rowsOrNotFound returns ErrNotFound when nothing was affected.
func rowsOrNotFound(n int64) error {
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
