package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Connectivity failures get a short second chance before the caller sees
// them. The driver only reports SafeToRetry when the statement never reached
// the server, so retried guarded writes cannot double-apply.
const (
	retryAttempts = 3
	retryBase     = 50 * time.Millisecond
)

func transient(err error) bool {
	if pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// SQLSTATE class 08: connection exceptions.
		return strings.HasPrefix(pgErr.Code, "08")
	}
	return false
}

func withRetry[T any](ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	var (
		out T
		err error
	)
	for attempt := 1; ; attempt++ {
		out, err = op(ctx)
		if err == nil || attempt == retryAttempts || !transient(err) {
			return out, err
		}
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBase):
		}
	}
}
