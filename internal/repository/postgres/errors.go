package postgres

import (
	"errors"
	"fmt"

	"familytree/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories react to
const (
	sqlstateUniqueViolation     = "23505"
	sqlstateForeignKeyViolation = "23503"
)

// pgCode returns the SQLSTATE of a server error, empty for anything else
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError reports a unique index violation, e.g. a second account for one email
func IsPgDuplicateError(err error) bool {
	return pgCode(err) == sqlstateUniqueViolation
}

// IsPgForeignKeyError reports a parent_id that references a missing member, or a
// delete blocked by children
func IsPgForeignKeyError(err error) bool {
	return pgCode(err) == sqlstateForeignKeyViolation
}

func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// storageError wraps a driver failure so callers see domain.ErrStorage
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorage, err)
}
