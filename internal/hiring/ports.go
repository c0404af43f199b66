package hiring

import (
	"context"
	"time"
)

// Storage and collaborator ports consumed by the orchestrator. Concrete
// implementations are injected at construction; the engine holds no global
// handles.

// ApplicationUpdate is a conditional status write: the new status (carried
// in Change) is committed only if the row still holds the From status.
// Optional field pointers are applied in the same write.
type ApplicationUpdate struct {
	From     Status
	Change   StatusChange
	Feedback *string
	Rating   *int
	StartAt  *time.Time
}

// ApplicationStore persists job applications. Implementations must make
// every write conditional: a stale precondition surfaces as CodeConflict,
// never as a silent overwrite.
type ApplicationStore interface {
	// Create inserts the application unless an active (non-rejected,
	// non-withdrawn) application already exists for the (jobID, seekerID)
	// pair, in which case it fails with CodeConflict.
	Create(ctx context.Context, app *JobApplication) (*JobApplication, error)
	Get(ctx context.Context, id string) (*JobApplication, error)
	ListBySeeker(ctx context.Context, seekerID string) ([]JobApplication, error)
	ListByCompany(ctx context.Context, companyID string) ([]JobApplication, error)
	// UpdateStatus applies the conditional transition and appends the
	// history entry atomically.
	UpdateStatus(ctx context.Context, id string, upd ApplicationUpdate) (*JobApplication, error)
	// SetChatID sets chat_id only if it is still null. It returns the chat
	// id now on the row and whether this call was the one that set it.
	SetChatID(ctx context.Context, id, chatID string) (current string, won bool, err error)
	// UpcomingHires lists hired applications whose instant-hire start falls
	// inside [from, to).
	UpcomingHires(ctx context.Context, from, to time.Time) ([]JobApplication, error)
	// MarkReminderSent appends the lead bucket to reminders_sent unless it
	// is already present. Returns true when this call won the append.
	MarkReminderSent(ctx context.Context, id, bucket string) (bool, error)
}

// InterviewUpdate is a conditional interview status write.
type InterviewUpdate struct {
	From        InterviewStatus
	To          InterviewStatus
	Reason      string
	Result      *Result
	Rating      *int
	Feedback    *string
	CompletedAt *time.Time
}

// InterviewStore persists interviews. Create and Reschedule re-run the slot
// overlap predicate inside the same guarded write that books the slot,
// closing the race between "checked free" and "booked".
type InterviewStore interface {
	// Create books the slot unless it overlaps an interview of the same
	// company, on the same date, in a booked (scheduled/confirmed) status;
	// overlap fails with CodeSlotConflict carrying the conflicting id.
	Create(ctx context.Context, iv *Interview) (*Interview, error)
	Get(ctx context.Context, id string) (*Interview, error)
	ListByApplication(ctx context.Context, applicationID string) ([]Interview, error)
	// Bookings returns the occupied intervals for a company on one date,
	// optionally excluding one interview (for reschedules).
	Bookings(ctx context.Context, companyID, date, excludeID string) ([]Booking, error)
	UpdateStatus(ctx context.Context, id string, upd InterviewUpdate) (*Interview, error)
	// Reschedule moves the interview to the new slot and appends the
	// history entry, conflict-checked against the new slot excluding the
	// interview's own prior booking.
	Reschedule(ctx context.Context, id string, from InterviewStatus, to SlotOption, entry RescheduleEntry) (*Interview, error)
	AddDateOptions(ctx context.Context, id string, opts []SlotOption) (*Interview, error)
	// UpcomingBooked lists scheduled/confirmed interviews starting inside
	// [from, to).
	UpcomingBooked(ctx context.Context, from, to time.Time) ([]Interview, error)
	MarkReminderSent(ctx context.Context, id, bucket string) (bool, error)
}

// JobDirectory looks up jobs; the engine requires published status before
// accepting applications.
type JobDirectory interface {
	FindJob(ctx context.Context, jobID string) (*Job, error)
}

// CompanyGate answers plan-limit questions. A false verdict surfaces as
// Forbidden with the PLAN_LIMIT reason code.
type CompanyGate interface {
	CanPerformAction(ctx context.Context, companyID, action string) (bool, error)
}

// ChatService creates the company↔seeker chat channel. Deduplication is the
// orchestrator's job, not the chat service's.
type ChatService interface {
	CreateChat(ctx context.Context, companyID, seekerID, applicationID string) (string, error)
}

// Notifier delivers events fire-and-forget.
type Notifier interface {
	Emit(ctx context.Context, ev Event) error
}

// Lease is a short-lived mutual-exclusion lease bounding the external chat
// create call under concurrent retries.
type Lease interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
