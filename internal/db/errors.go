package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for type-safe error checking
// Use errors.Is() instead of string comparison
var (
	ErrUserNotFound = errors.New("user not found")

	// ErrReflectionConflict means the destination user already owns a
	// reflection for a week the source user also owns.
	ErrReflectionConflict = errors.New("destination user already has a reflection for a migrated week")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
