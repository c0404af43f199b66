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

const interviewCols = `id, application_id, job_id, company_id, seeker_id,
	date::text, start_min, duration_min, interview_type, location, interviewer,
	status, result, COALESCE(rating, 0), feedback, additional_dates, reschedules,
	reminders_sent, completed_at, created_at, updated_at`

// InterviewStore persists interviews. The slot-overlap predicate runs inside
// the same statement that books or moves a slot; a concurrent uncommitted
// booking is invisible to that predicate, so the schema's exclusion
// constraint rejects the losing writer at commit and the store reports it
// as a slot conflict.
type InterviewStore struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewInterviewStore returns a store resolving interview instants in loc
// (UTC when nil).
func NewInterviewStore(pool *pgxpool.Pool, loc *time.Location) *InterviewStore {
	if loc == nil {
		loc = time.UTC
	}
	return &InterviewStore{pool: pool, loc: loc}
}

// overlapPredicate guards inserts and reschedules. Parameters: company id,
// date, candidate start, candidate end, excluded interview id.
const overlapPredicate = `EXISTS (
	SELECT 1 FROM interviews x
	WHERE x.company_id = %s AND x.date = %s::date
	  AND x.id <> %s
	  AND x.status IN ('scheduled', 'confirmed')
	  AND x.start_min < %s AND %s < x.start_min + x.duration_min
)`

// Create books the slot with the overlap predicate in the insert itself,
// backed by the exclusion constraint for writers racing the predicate.
func (s *InterviewStore) Create(ctx context.Context, iv *hiring.Interview) (*hiring.Interview, error) {
	start, err := hiring.MinuteOfDay(iv.StartTime)
	if err != nil {
		return nil, hiring.NewValidationError("invalid startTime", nil)
	}
	startsAt, err := iv.StartsAt(s.loc)
	if err != nil {
		return nil, hiring.NewValidationError("invalid slot", nil)
	}
	guard := fmt.Sprintf(overlapPredicate, "$4", "$6", "''", "$7 + $8", "$7")
	created, err := withRetry(ctx, func(ctx context.Context) (*hiring.Interview, error) {
		row := s.pool.QueryRow(ctx,
			`WITH ins AS (
			   INSERT INTO interviews
			     (id, application_id, job_id, company_id, seeker_id, date, start_min,
			      duration_min, interview_type, location, interviewer, status, result,
			      additional_dates, reschedules, starts_at, created_at, updated_at)
			   SELECT $1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10, $11,
			          'scheduled', 'pending', '[]'::jsonb, '[]'::jsonb, $12, $13, $13
			   WHERE NOT `+guard+`
			   RETURNING *
			 )
			 SELECT `+interviewCols+` FROM ins`,
			iv.ID, iv.ApplicationID, iv.JobID, iv.CompanyID, iv.SeekerID,
			iv.Date, start, iv.DurationMinutes, string(iv.Type), iv.Location, iv.Interviewer,
			startsAt, iv.CreatedAt,
		)
		return scanInterview(row)
	})
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) && sqlState(err) != exclusionViolation {
		return nil, fmt.Errorf("create interview: %w", err)
	}
	conflictID, findErr := s.conflictingID(ctx, iv.CompanyID, iv.Date, start, iv.DurationMinutes, "")
	if findErr != nil {
		return nil, findErr
	}
	return nil, hiring.NewSlotConflict(conflictID)
}

// Get returns one interview by id.
func (s *InterviewStore) Get(ctx context.Context, id string) (*hiring.Interview, error) {
	iv, err := withRetry(ctx, func(ctx context.Context) (*hiring.Interview, error) {
		row := s.pool.QueryRow(ctx,
			`SELECT `+interviewCols+` FROM interviews WHERE id = $1`, id)
		return scanInterview(row)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hiring.NewError(hiring.CodeNotFound, "interview not found", nil)
		}
		return nil, fmt.Errorf("get interview: %w", err)
	}
	return iv, nil
}

// ListByApplication returns an application's interviews, newest first.
func (s *InterviewStore) ListByApplication(ctx context.Context, applicationID string) ([]hiring.Interview, error) {
	return withRetry(ctx, func(ctx context.Context) ([]hiring.Interview, error) {
		rows, err := s.pool.Query(ctx,
			`SELECT `+interviewCols+` FROM interviews
			 WHERE application_id = $1 ORDER BY created_at DESC`, applicationID)
		if err != nil {
			return nil, fmt.Errorf("list interviews: %w", err)
		}
		defer rows.Close()
		return collectInterviews(rows)
	})
}

// Bookings returns the occupied intervals for a company on one date.
func (s *InterviewStore) Bookings(ctx context.Context, companyID, date, excludeID string) ([]hiring.Booking, error) {
	return withRetry(ctx, func(ctx context.Context) ([]hiring.Booking, error) {
		rows, err := s.pool.Query(ctx,
			`SELECT id, start_min, duration_min FROM interviews
			 WHERE company_id = $1 AND date = $2::date AND id <> $3
			   AND status IN ('scheduled', 'confirmed')
			 ORDER BY start_min`,
			companyID, date, excludeID)
		if err != nil {
			return nil, fmt.Errorf("bookings: %w", err)
		}
		defer rows.Close()

		bookings := make([]hiring.Booking, 0)
		for rows.Next() {
			var b hiring.Booking
			if err := rows.Scan(&b.InterviewID, &b.StartMinute, &b.DurationMinutes); err != nil {
				return nil, fmt.Errorf("bookings scan: %w", err)
			}
			bookings = append(bookings, b)
		}
		return bookings, rows.Err()
	})
}

// UpdateStatus commits the transition only if the row still holds the
// expected status.
func (s *InterviewStore) UpdateStatus(ctx context.Context, id string, upd hiring.InterviewUpdate) (*hiring.Interview, error) {
	updated, err := withRetry(ctx, func(ctx context.Context) (*hiring.Interview, error) {
		row := s.pool.QueryRow(ctx,
			`WITH upd AS (
			   UPDATE interviews
			   SET status       = $1,
			       result       = COALESCE($2, result),
			       rating       = COALESCE($3, rating),
			       feedback     = COALESCE($4, feedback),
			       completed_at = COALESCE($5, completed_at),
			       updated_at   = NOW()
			   WHERE id = $6 AND status = $7
			   RETURNING *
			 )
			 SELECT `+interviewCols+` FROM upd`,
			string(upd.To), resultArg(upd.Result), upd.Rating, upd.Feedback, upd.CompletedAt,
			id, string(upd.From),
		)
		return scanInterview(row)
	})
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update interview status: %w", err)
	}
	current, getErr := s.Get(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, hiring.NewError(hiring.CodeConflict, "interview changed concurrently", map[string]string{
		"current": string(current.Status), "expected": string(upd.From),
	})
}

// Reschedule moves the interview to a new slot, re-running the overlap
// predicate against the new slot and excluding the interview's own prior
// booking, all inside the update statement.
func (s *InterviewStore) Reschedule(ctx context.Context, id string, from hiring.InterviewStatus, to hiring.SlotOption, entry hiring.RescheduleEntry) (*hiring.Interview, error) {
	start, err := hiring.MinuteOfDay(to.StartTime)
	if err != nil {
		return nil, hiring.NewValidationError("invalid startTime", nil)
	}
	startsAt, err := time.ParseInLocation("2006-01-02 15:04", to.Date+" "+to.StartTime, s.loc)
	if err != nil {
		return nil, hiring.NewValidationError("invalid slot", nil)
	}
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal reschedule entry: %w", err)
	}
	guard := fmt.Sprintf(overlapPredicate, "interviews.company_id", "$1", "$5", "$2 + interviews.duration_min", "$2")
	updated, err := withRetry(ctx, func(ctx context.Context) (*hiring.Interview, error) {
		row := s.pool.QueryRow(ctx,
			`WITH upd AS (
			   UPDATE interviews
			   SET date        = $1::date,
			       start_min   = $2,
			       status      = 'scheduled',
			       reschedules = reschedules || $3::jsonb,
			       starts_at   = $4,
			       updated_at  = NOW()
			   WHERE id = $5 AND status = $6
			     AND NOT `+guard+`
			   RETURNING *
			 )
			 SELECT `+interviewCols+` FROM upd`,
			to.Date, start, fmt.Sprintf("[%s]", entryJSON), startsAt, id, string(from),
		)
		return scanInterview(row)
	})
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) && sqlState(err) != exclusionViolation {
		return nil, fmt.Errorf("reschedule interview: %w", err)
	}
	// Zero rows: missing, stale status, or slot conflict. A 23P01 means a
	// concurrent booking beat the guard to the slot. Re-read to tell.
	current, getErr := s.Get(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status != from {
		return nil, hiring.NewError(hiring.CodeConflict, "interview changed concurrently", map[string]string{
			"current": string(current.Status), "expected": string(from),
		})
	}
	conflictID, findErr := s.conflictingID(ctx, current.CompanyID, to.Date, start, current.DurationMinutes, id)
	if findErr != nil {
		return nil, findErr
	}
	return nil, hiring.NewSlotConflict(conflictID)
}

// AddDateOptions appends alternate slots without touching status.
func (s *InterviewStore) AddDateOptions(ctx context.Context, id string, opts []hiring.SlotOption) (*hiring.Interview, error) {
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("marshal date options: %w", err)
	}
	updated, err := withRetry(ctx, func(ctx context.Context) (*hiring.Interview, error) {
		row := s.pool.QueryRow(ctx,
			`WITH upd AS (
			   UPDATE interviews
			   SET additional_dates = additional_dates || $1::jsonb,
			       updated_at       = NOW()
			   WHERE id = $2
			   RETURNING *
			 )
			 SELECT `+interviewCols+` FROM upd`,
			string(optsJSON), id,
		)
		return scanInterview(row)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hiring.NewError(hiring.CodeNotFound, "interview not found", nil)
		}
		return nil, fmt.Errorf("add date options: %w", err)
	}
	return updated, nil
}

// UpcomingBooked lists scheduled/confirmed interviews starting in [from, to).
func (s *InterviewStore) UpcomingBooked(ctx context.Context, from, to time.Time) ([]hiring.Interview, error) {
	return withRetry(ctx, func(ctx context.Context) ([]hiring.Interview, error) {
		rows, err := s.pool.Query(ctx,
			`SELECT `+interviewCols+` FROM interviews
			 WHERE starts_at >= $1 AND starts_at < $2
			   AND status IN ('scheduled', 'confirmed')`,
			from, to)
		if err != nil {
			return nil, fmt.Errorf("upcoming interviews: %w", err)
		}
		defer rows.Close()
		return collectInterviews(rows)
	})
}

// MarkReminderSent appends the lead bucket at most once per interview.
func (s *InterviewStore) MarkReminderSent(ctx context.Context, id, bucket string) (bool, error) {
	sent, err := withRetry(ctx, func(ctx context.Context) (bool, error) {
		tag, err := s.pool.Exec(ctx,
			`UPDATE interviews
			 SET reminders_sent = array_append(reminders_sent, $1)
			 WHERE id = $2 AND NOT ($1 = ANY(reminders_sent))`,
			bucket, id)
		if err != nil {
			return false, err
		}
		return tag.RowsAffected() > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("mark interview reminder: %w", err)
	}
	return sent, nil
}

func (s *InterviewStore) conflictingID(ctx context.Context, companyID, date string, start, duration int, excludeID string) (string, error) {
	id, err := withRetry(ctx, func(ctx context.Context) (string, error) {
		var got string
		err := s.pool.QueryRow(ctx,
			`SELECT id FROM interviews
			 WHERE company_id = $1 AND date = $2::date AND id <> $3
			   AND status IN ('scheduled', 'confirmed')
			   AND start_min < $4 AND $5 < start_min + duration_min
			 ORDER BY start_min LIMIT 1`,
			companyID, date, excludeID, start+duration, start,
		).Scan(&got)
		return got, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Guard fired but the overlap is gone already; report it plainly.
			return "", hiring.NewSlotConflict("")
		}
		return "", fmt.Errorf("find conflicting interview: %w", err)
	}
	return id, nil
}

func resultArg(r *hiring.Result) *string {
	if r == nil {
		return nil
	}
	s := string(*r)
	return &s
}

func collectInterviews(rows pgx.Rows) ([]hiring.Interview, error) {
	out := make([]hiring.Interview, 0)
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("interview scan: %w", err)
		}
		out = append(out, *iv)
	}
	return out, rows.Err()
}

func scanInterview(row pgx.Row) (*hiring.Interview, error) {
	var (
		iv          hiring.Interview
		startMin    int
		typ, status string
		result      string
		dates       []byte
		reschedules []byte
	)
	if err := row.Scan(
		&iv.ID, &iv.ApplicationID, &iv.JobID, &iv.CompanyID, &iv.SeekerID,
		&iv.Date, &startMin, &iv.DurationMinutes, &typ, &iv.Location, &iv.Interviewer,
		&status, &result, &iv.Rating, &iv.Feedback, &dates, &reschedules,
		&iv.RemindersSent, &iv.CompletedAt, &iv.CreatedAt, &iv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	iv.StartTime = hiring.ClockOfMinute(startMin)
	iv.Type = hiring.InterviewType(typ)
	iv.Status = hiring.InterviewStatus(status)
	iv.Result = hiring.Result(result)
	if len(dates) > 0 {
		if err := json.Unmarshal(dates, &iv.AdditionalDates); err != nil {
			return nil, fmt.Errorf("unmarshal date options: %w", err)
		}
	}
	if len(reschedules) > 0 {
		if err := json.Unmarshal(reschedules, &iv.Reschedules); err != nil {
			return nil, fmt.Errorf("unmarshal reschedules: %w", err)
		}
	}
	return &iv, nil
}
