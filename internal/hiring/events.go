package hiring

import "time"

// Event is a notification the engine intends to emit after a committed
// transition. The orchestrator collects events and hands them to the
// Notifier once the write is durable; delivery is the notification
// service's concern and failures never roll back the transition.
type Event struct {
	Type          string            `json:"type"`
	ApplicationID string            `json:"applicationId"`
	InterviewID   string            `json:"interviewId,omitempty"`
	JobID         string            `json:"jobId,omitempty"`
	CompanyID     string            `json:"companyId,omitempty"`
	SeekerID      string            `json:"seekerId,omitempty"`
	Payload       map[string]string `json:"payload,omitempty"`
	At            time.Time         `json:"at"`
}

// Event types published on the notification channel of the same name.
const (
	EventApplicationApplied   = "application.applied"
	EventApplicationViewed    = "application.viewed"
	EventApplicationShortlist = "application.shortlisted"
	EventApplicationRejected  = "application.rejected"
	EventApplicationWithdrawn = "application.withdrawn"
	EventInterviewScheduled   = "interview.scheduled"
	EventInterviewConfirmed   = "interview.confirmed"
	EventInterviewDeclined    = "interview.declined"
	EventInterviewRescheduled = "interview.rescheduled"
	EventInterviewCompleted   = "interview.completed"
	EventInterviewNoShow      = "interview.no_show"
	EventInterviewCancelled   = "interview.cancelled"
	EventInterviewDatesAdded  = "interview.dates_added"
	EventHireRequested        = "hire.requested"
	EventHireAccepted         = "hire.accepted"
	EventHireDeclined         = "hire.declined"
	EventJobCompleted         = "job.completed"
	EventJobCancelled         = "job.cancelled"
	EventChatCreated          = "chat.created"
	EventReminderInterview    = "reminder.interview"
	EventReminderHireStart    = "reminder.hire_start"
)

// appEvent builds an event carrying the application's identity fields.
func appEvent(typ string, app *JobApplication, payload map[string]string, at time.Time) Event {
	return Event{
		Type:          typ,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		CompanyID:     app.CompanyID,
		SeekerID:      app.SeekerID,
		Payload:       payload,
		At:            at,
	}
}

// interviewEvent builds an event carrying the interview's identity fields.
func interviewEvent(typ string, iv *Interview, payload map[string]string, at time.Time) Event {
	return Event{
		Type:          typ,
		ApplicationID: iv.ApplicationID,
		InterviewID:   iv.ID,
		JobID:         iv.JobID,
		CompanyID:     iv.CompanyID,
		SeekerID:      iv.SeekerID,
		Payload:       payload,
		At:            at,
	}
}
