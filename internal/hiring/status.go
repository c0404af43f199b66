// Package hiring implements the hiring workflow engine for the Shift
// marketplace: the job-application state machine, the interview state
// machine with slot-conflict detection, and the orchestrator that
// coordinates both and opens the company↔seeker chat channel.
//
// Application status graph:
//
//	applied ──► viewed ──► shortlisted ──► interview_requested ──► interview_accepted
//	   │                                          │                        │
//	   │                                          ▼                        ▼
//	   │                                  interview_declined ──►── hire_request_sent
//	   │                                                                   │
//	   └──────────► hire_request_sent (instant hire) ◄── hire_declined ◄───┤
//	                                                                       ▼
//	                                              hired ──► completed | cancelled
//
// rejected and withdrawn are reachable from every non-terminal state.
// completed, cancelled, rejected and withdrawn are terminal.
package hiring

import "fmt"

// Status values mirror the application_status enum in PostgreSQL.
type Status string

const (
	StatusApplied            Status = "applied"
	StatusViewed             Status = "viewed"
	StatusShortlisted        Status = "shortlisted"
	StatusInterviewRequested Status = "interview_requested"
	StatusInterviewAccepted  Status = "interview_accepted"
	StatusInterviewDeclined  Status = "interview_declined"
	StatusHireRequestSent    Status = "hire_request_sent"
	StatusHired              Status = "hired"
	StatusHireDeclined       Status = "hire_declined"
	StatusCompleted          Status = "completed"
	StatusCancelled          Status = "cancelled"
	StatusRejected           Status = "rejected"
	StatusWithdrawn          Status = "withdrawn"
)

// validTransitions lists every allowed (from → to) pair. rejected and
// withdrawn appear as targets of every non-terminal state; hired can only
// finish as completed or cancelled, so a seeker can no longer withdraw once
// the hire is confirmed.
var validTransitions = map[Status][]Status{
	StatusApplied:            {StatusViewed, StatusShortlisted, StatusInterviewRequested, StatusHireRequestSent, StatusRejected, StatusWithdrawn},
	StatusViewed:             {StatusShortlisted, StatusInterviewRequested, StatusHireRequestSent, StatusRejected, StatusWithdrawn},
	StatusShortlisted:        {StatusInterviewRequested, StatusHireRequestSent, StatusRejected, StatusWithdrawn},
	StatusInterviewRequested: {StatusInterviewAccepted, StatusInterviewDeclined, StatusRejected, StatusWithdrawn},
	StatusInterviewAccepted:  {StatusHireRequestSent, StatusRejected, StatusWithdrawn},
	StatusInterviewDeclined:  {StatusInterviewRequested, StatusHireRequestSent, StatusRejected, StatusWithdrawn},
	StatusHireRequestSent:    {StatusHired, StatusHireDeclined, StatusRejected, StatusWithdrawn},
	StatusHireDeclined:       {StatusHireRequestSent, StatusRejected, StatusWithdrawn},
	StatusHired:              {StatusCompleted, StatusCancelled},
	// completed, cancelled, rejected, withdrawn are terminal — no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := validTransitions[st]; ok {
		return st, nil
	}
	switch st {
	case StatusCompleted, StatusCancelled, StatusRejected, StatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedFrom returns the set of statuses reachable from the given status.
// Used to populate invalid-transition error details.
func AllowedFrom(from Status) []Status {
	allowed := validTransitions[from]
	out := make([]Status, len(allowed))
	copy(out, allowed)
	return out
}

// IsTerminal returns true when the status permits no further transitions.
func IsTerminal(s Status) bool {
	return len(validTransitions[s]) == 0
}

// IsHireMilestone reports whether the status requires a direct chat channel
// between company and seeker. Reaching any of these for the first time
// triggers chat creation.
func IsHireMilestone(s Status) bool {
	switch s {
	case StatusInterviewAccepted, StatusHireRequestSent, StatusHired:
		return true
	}
	return false
}
