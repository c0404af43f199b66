package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

// ── Constraint-violation classification ──

func TestSQLState(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unique violation", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "uq_applications_active_pair"}, "23505"},
		{"exclusion violation", &pgconn.PgError{Code: exclusionViolation, ConstraintName: "interviews_slot_no_overlap"}, "23P01"},
		{"wrapped", fmt.Errorf("create interview: %w", &pgconn.PgError{Code: exclusionViolation}), "23P01"},
		{"not a pg error", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sqlState(tt.err); got != tt.want {
				t.Fatalf("sqlState(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

// Constraint violations must reach the conflict mapping, not the retry loop.
func TestConstraintViolationsAreNotTransient(t *testing.T) {
	for _, code := range []string{uniqueViolation, exclusionViolation} {
		if transient(&pgconn.PgError{Code: code}) {
			t.Errorf("transient(%s) = true, want false", code)
		}
	}
}
