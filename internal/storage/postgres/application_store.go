// Package postgres implements the hiring storage ports on pgx. Every status
// write is conditional on the previously observed state, so a lost race
// surfaces as a conflict instead of a silent overwrite.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
)

const appCols = `id, job_id, seeker_id, company_id, job_title, company_name,
	status, cover_letter, expected_salary, availability, chat_id, start_at,
	feedback, COALESCE(rating, 0), history, reminders_sent, created_at, updated_at`

// ApplicationStore persists job applications.
type ApplicationStore struct {
	pool *pgxpool.Pool
}

// NewApplicationStore returns a store backed by the given pool.
func NewApplicationStore(pool *pgxpool.Pool) *ApplicationStore {
	return &ApplicationStore{pool: pool}
}

// Create inserts the application unless an active one already exists for the
// (job, seeker) pair. The in-statement NOT EXISTS handles the common case;
// a concurrent uncommitted apply slips past it and is rejected instead by
// the partial unique index, surfacing as 23505.
func (s *ApplicationStore) Create(ctx context.Context, app *hiring.JobApplication) (*hiring.JobApplication, error) {
	history, err := json.Marshal(app.History)
	if err != nil {
		return nil, fmt.Errorf("marshal history: %w", err)
	}
	created, err := withRetry(ctx, func(ctx context.Context) (*hiring.JobApplication, error) {
		row := s.pool.QueryRow(ctx,
			`WITH ins AS (
			   INSERT INTO job_applications
			     (id, job_id, seeker_id, company_id, job_title, company_name,
			      status, cover_letter, expected_salary, availability, history,
			      created_at, updated_at)
			   SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12, $12
			   WHERE NOT EXISTS (
			     SELECT 1 FROM job_applications
			     WHERE job_id = $2 AND seeker_id = $3
			       AND status NOT IN ('rejected', 'withdrawn')
			   )
			   RETURNING *
			 )
			 SELECT `+appCols+` FROM ins`,
			app.ID, app.JobID, app.SeekerID, app.CompanyID, app.JobTitle, app.CompanyName,
			string(app.Status), app.CoverLetter, app.ExpectedSalary, app.Availability,
			string(history), app.CreatedAt,
		)
		return scanApplication(row)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || sqlState(err) == uniqueViolation {
			return nil, hiring.NewError(hiring.CodeConflict, "an active application already exists for this job", nil)
		}
		return nil, fmt.Errorf("create application: %w", err)
	}
	return created, nil
}

// Get returns one application by id.
func (s *ApplicationStore) Get(ctx context.Context, id string) (*hiring.JobApplication, error) {
	app, err := withRetry(ctx, func(ctx context.Context) (*hiring.JobApplication, error) {
		row := s.pool.QueryRow(ctx,
			`SELECT `+appCols+` FROM job_applications WHERE id = $1`, id)
		return scanApplication(row)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hiring.NewError(hiring.CodeNotFound, "application not found", nil)
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// ListBySeeker returns a seeker's applications, newest first.
func (s *ApplicationStore) ListBySeeker(ctx context.Context, seekerID string) ([]hiring.JobApplication, error) {
	return s.list(ctx, `seeker_id = $1`, seekerID)
}

// ListByCompany returns a company's applications, newest first.
func (s *ApplicationStore) ListByCompany(ctx context.Context, companyID string) ([]hiring.JobApplication, error) {
	return s.list(ctx, `company_id = $1`, companyID)
}

func (s *ApplicationStore) list(ctx context.Context, where string, arg any) ([]hiring.JobApplication, error) {
	return withRetry(ctx, func(ctx context.Context) ([]hiring.JobApplication, error) {
		rows, err := s.pool.Query(ctx,
			`SELECT `+appCols+` FROM job_applications WHERE `+where+` ORDER BY updated_at DESC`, arg)
		if err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		defer rows.Close()

		apps := make([]hiring.JobApplication, 0)
		for rows.Next() {
			app, err := scanApplication(rows)
			if err != nil {
				return nil, fmt.Errorf("list applications scan: %w", err)
			}
			apps = append(apps, *app)
		}
		return apps, rows.Err()
	})
}

// UpdateStatus commits the transition only if the row still holds the
// expected status, appending the history entry in the same statement.
func (s *ApplicationStore) UpdateStatus(ctx context.Context, id string, upd hiring.ApplicationUpdate) (*hiring.JobApplication, error) {
	entry, err := json.Marshal(upd.Change)
	if err != nil {
		return nil, fmt.Errorf("marshal history entry: %w", err)
	}
	updated, err := withRetry(ctx, func(ctx context.Context) (*hiring.JobApplication, error) {
		row := s.pool.QueryRow(ctx,
			`WITH upd AS (
			   UPDATE job_applications
			   SET status     = $1,
			       history    = history || $2::jsonb,
			       feedback   = COALESCE($3, feedback),
			       rating     = COALESCE($4, rating),
			       start_at   = COALESCE($5, start_at),
			       updated_at = $6
			   WHERE id = $7 AND status = $8
			   RETURNING *
			 )
			 SELECT `+appCols+` FROM upd`,
			string(upd.Change.Status), fmt.Sprintf("[%s]", entry),
			upd.Feedback, upd.Rating, upd.StartAt, upd.Change.At,
			id, string(upd.From),
		)
		return scanApplication(row)
	})
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update application status: %w", err)
	}
	// Zero rows: missing row or stale precondition. Re-read to tell apart.
	current, getErr := s.Get(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, hiring.NewError(hiring.CodeConflict, "application changed concurrently", map[string]string{
		"current": string(current.Status), "expected": string(upd.From),
	})
}

// SetChatID sets the chat id exactly once. Concurrent callers lose the
// conditional write and are handed the winner's id.
func (s *ApplicationStore) SetChatID(ctx context.Context, id, chatID string) (string, bool, error) {
	current, err := withRetry(ctx, func(ctx context.Context) (string, error) {
		var got string
		err := s.pool.QueryRow(ctx,
			`UPDATE job_applications
			 SET chat_id = $1, updated_at = NOW()
			 WHERE id = $2 AND (chat_id IS NULL OR chat_id = '')
			 RETURNING chat_id`,
			chatID, id,
		).Scan(&got)
		return got, err
	})
	if err == nil {
		return current, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, fmt.Errorf("set chat id: %w", err)
	}
	existing, err := withRetry(ctx, func(ctx context.Context) (*string, error) {
		var got *string
		err := s.pool.QueryRow(ctx, `SELECT chat_id FROM job_applications WHERE id = $1`, id).Scan(&got)
		return got, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, hiring.NewError(hiring.CodeNotFound, "application not found", nil)
		}
		return "", false, fmt.Errorf("read chat id: %w", err)
	}
	if existing == nil {
		return "", false, fmt.Errorf("chat id unset after conditional write lost")
	}
	return *existing, false, nil
}

// UpcomingHires lists hired applications whose instant-hire start falls
// inside [from, to).
func (s *ApplicationStore) UpcomingHires(ctx context.Context, from, to time.Time) ([]hiring.JobApplication, error) {
	return withRetry(ctx, func(ctx context.Context) ([]hiring.JobApplication, error) {
		rows, err := s.pool.Query(ctx,
			`SELECT `+appCols+` FROM job_applications
			 WHERE status = 'hired' AND start_at >= $1 AND start_at < $2`,
			from, to)
		if err != nil {
			return nil, fmt.Errorf("upcoming hires: %w", err)
		}
		defer rows.Close()

		apps := make([]hiring.JobApplication, 0)
		for rows.Next() {
			app, err := scanApplication(rows)
			if err != nil {
				return nil, fmt.Errorf("upcoming hires scan: %w", err)
			}
			apps = append(apps, *app)
		}
		return apps, rows.Err()
	})
}

// MarkReminderSent appends the lead bucket at most once per application.
func (s *ApplicationStore) MarkReminderSent(ctx context.Context, id, bucket string) (bool, error) {
	sent, err := withRetry(ctx, func(ctx context.Context) (bool, error) {
		tag, err := s.pool.Exec(ctx,
			`UPDATE job_applications
			 SET reminders_sent = array_append(reminders_sent, $1)
			 WHERE id = $2 AND NOT ($1 = ANY(reminders_sent))`,
			bucket, id)
		if err != nil {
			return false, err
		}
		return tag.RowsAffected() > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("mark hire reminder: %w", err)
	}
	return sent, nil
}

func scanApplication(row pgx.Row) (*hiring.JobApplication, error) {
	var (
		a       hiring.JobApplication
		status  string
		history []byte
	)
	if err := row.Scan(
		&a.ID, &a.JobID, &a.SeekerID, &a.CompanyID, &a.JobTitle, &a.CompanyName,
		&status, &a.CoverLetter, &a.ExpectedSalary, &a.Availability, &a.ChatID, &a.StartAt,
		&a.Feedback, &a.Rating, &history, &a.RemindersSent, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Status = hiring.Status(status)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &a.History); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
		}
	}
	return &a, nil
}
