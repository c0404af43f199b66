package hiring

import "time"

// Role identifies which side of the marketplace an actor belongs to. The
// Gateway authenticates; the engine only authorizes by comparing ownership.
type Role string

const (
	RoleSeeker  Role = "seeker"
	RoleCompany Role = "company"
)

// Actor is the authenticated caller forwarded by the Gateway.
type Actor struct {
	ID   string
	Role Role
}

// StatusChange is one append-only entry of an application's status history.
type StatusChange struct {
	Status    Status    `json:"status"`
	ActorID   string    `json:"actorId"`
	ActorRole Role      `json:"actorRole"`
	At        time.Time `json:"at"`
	Reason    string    `json:"reason,omitempty"`
}

// JobApplication is a seeker's request to be considered for a job. Identity
// fields and the apply-time job snapshot are immutable after creation.
type JobApplication struct {
	ID        string `json:"id"`
	JobID     string `json:"jobId"`
	SeekerID  string `json:"seekerId"`
	CompanyID string `json:"companyId"`

	// Snapshot at apply time, not re-synced with the job directory.
	JobTitle    string `json:"jobTitle"`
	CompanyName string `json:"companyName"`

	Status         Status         `json:"status"`
	CoverLetter    string         `json:"coverLetter,omitempty"`
	ExpectedSalary string         `json:"expectedSalary,omitempty"`
	Availability   string         `json:"availability,omitempty"`
	ChatID         *string        `json:"chatId"`
	StartAt        *time.Time     `json:"startAt,omitempty"` // instant-hire start, set on accept
	Feedback       string         `json:"feedback,omitempty"`
	Rating         int            `json:"rating,omitempty"`
	History        []StatusChange `json:"statusHistory"`
	RemindersSent  []string       `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InterviewType is how the interview is conducted.
type InterviewType string

const (
	InterviewInPerson InterviewType = "in-person"
	InterviewPhone    InterviewType = "phone"
	InterviewVideo    InterviewType = "video"
	InterviewGroup    InterviewType = "group"
)

// ParseInterviewType validates a raw interview type string.
func ParseInterviewType(s string) (InterviewType, bool) {
	t := InterviewType(s)
	switch t {
	case InterviewInPerson, InterviewPhone, InterviewVideo, InterviewGroup:
		return t, true
	}
	return "", false
}

// Result is the outcome a company records when completing an interview.
type Result string

const (
	ResultPending Result = "pending"
	ResultPass    Result = "pass"
	ResultFail    Result = "fail"
)

// SlotOption is one concrete (date, startTime) candidate for an interview.
type SlotOption struct {
	Date      string `json:"date"`      // 2006-01-02
	StartTime string `json:"startTime"` // 15:04
}

// RescheduleEntry records one reschedule, append-only.
type RescheduleEntry struct {
	FromDate  string    `json:"fromDate"`
	FromStart string    `json:"fromStart"`
	ToDate    string    `json:"toDate"`
	ToStart   string    `json:"toStart"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// Interview is owned exclusively by the application it references. It is
// never physically deleted; cancellation is a status change so the audit
// history survives.
type Interview struct {
	ID            string `json:"id"`
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	CompanyID     string `json:"companyId"`
	SeekerID      string `json:"seekerId"`

	Date            string        `json:"date"`      // 2006-01-02
	StartTime       string        `json:"startTime"` // 15:04
	DurationMinutes int           `json:"durationMinutes"`
	Type            InterviewType `json:"interviewType"`
	Location        string        `json:"location,omitempty"`
	Interviewer     string        `json:"interviewer,omitempty"`

	Status          InterviewStatus   `json:"status"`
	AdditionalDates []SlotOption      `json:"additionalDateOptions,omitempty"`
	Reschedules     []RescheduleEntry `json:"rescheduleHistory,omitempty"`
	Result          Result            `json:"result"`
	Rating          int               `json:"rating,omitempty"`
	Feedback        string            `json:"feedback,omitempty"`
	CompletedAt     *time.Time        `json:"completedAt,omitempty"`
	RemindersSent   []string          `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StartsAt resolves the interview's start instant in the given location.
func (iv *Interview) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", iv.Date+" "+iv.StartTime, loc)
}

// EndsAt resolves the interview's end instant in the given location.
func (iv *Interview) EndsAt(loc *time.Location) (time.Time, error) {
	start, err := iv.StartsAt(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(iv.DurationMinutes) * time.Minute), nil
}

// JobStatus is the publication status reported by the job directory.
type JobStatus string

// JobPublished is the only job status that accepts new applications.
const JobPublished JobStatus = "published"

// Job is the job-directory row the engine consults before accepting an
// application. The directory is an external collaborator; the engine never
// writes to it.
type Job struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"companyId"`
	Title       string    `json:"title"`
	CompanyName string    `json:"companyName"`
	Status      JobStatus `json:"status"`
}
