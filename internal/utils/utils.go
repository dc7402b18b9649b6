package utils

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsPGUniqueViolation reports whether error is PostgreSQL unique constraint violation (code 23505).
func IsPGUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}

// PGConstraintName returns the violated constraint's name, or "" if the error
// is not a Postgres error. Used to tell apart username vs email collisions.
func PGConstraintName(err error) string {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.ConstraintName
	}
	return ""
}
