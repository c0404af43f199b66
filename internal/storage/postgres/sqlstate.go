package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Codes raised by the schema's uniqueness and slot-exclusion constraints.
// The in-statement guards cannot see a concurrent uncommitted row, so the
// constraints are the authority; the stores translate these into the same
// domain errors the guards produce.
const (
	uniqueViolation    = "23505"
	exclusionViolation = "23P01"
)

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
