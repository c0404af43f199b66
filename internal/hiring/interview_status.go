package hiring

import "fmt"

// InterviewStatus values mirror the interview_status enum in PostgreSQL.
//
// Status graph:
//
//	scheduled ──► confirmed ──► completed
//	    │   ▲          │
//	    │   └── rescheduled (loops back with new timing)
//	    ▼              ▼
//	declined     no_show | cancelled
//
// completed, declined, cancelled and no_show are terminal. A reschedule
// passes through rescheduled and lands back in scheduled; the prior slot is
// preserved in the interview's reschedule history.
type InterviewStatus string

const (
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewConfirmed   InterviewStatus = "confirmed"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewDeclined    InterviewStatus = "declined"
	InterviewCancelled   InterviewStatus = "cancelled"
	InterviewNoShow      InterviewStatus = "no_show"
	InterviewRescheduled InterviewStatus = "rescheduled"
)

var validInterviewTransitions = map[InterviewStatus][]InterviewStatus{
	InterviewScheduled:   {InterviewConfirmed, InterviewDeclined, InterviewCancelled, InterviewRescheduled},
	InterviewConfirmed:   {InterviewCompleted, InterviewNoShow, InterviewCancelled, InterviewRescheduled},
	InterviewRescheduled: {InterviewScheduled},
	// completed, declined, cancelled, no_show are terminal
}

// ParseInterviewStatus converts a raw string to an InterviewStatus.
func ParseInterviewStatus(s string) (InterviewStatus, error) {
	st := InterviewStatus(s)
	switch st {
	case InterviewScheduled, InterviewConfirmed, InterviewCompleted,
		InterviewDeclined, InterviewCancelled, InterviewNoShow, InterviewRescheduled:
		return st, nil
	}
	return "", fmt.Errorf("unknown interview status %q", s)
}

// IsInterviewTransitionAllowed returns true when moving from → to is
// permitted by the interview state machine.
func IsInterviewTransitionAllowed(from, to InterviewStatus) bool {
	for _, s := range validInterviewTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedInterviewFrom returns the statuses reachable from the given status.
func AllowedInterviewFrom(from InterviewStatus) []InterviewStatus {
	allowed := validInterviewTransitions[from]
	out := make([]InterviewStatus, len(allowed))
	copy(out, allowed)
	return out
}

// InterviewIsTerminal returns true when the status permits no further
// transitions.
func InterviewIsTerminal(s InterviewStatus) bool {
	return len(validInterviewTransitions[s]) == 0
}

// IsBooked reports whether the status occupies the company's slot for
// conflict detection purposes.
func IsBooked(s InterviewStatus) bool {
	return s == InterviewScheduled || s == InterviewConfirmed
}
