package hiring

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Orchestrator sequences the application and interview state machines and
// owns every status write. All other components consult state read-only.
type Orchestrator struct {
	apps       ApplicationStore
	interviews InterviewStore
	jobs       JobDirectory
	gate       CompanyGate
	chat       ChatService
	notifier   Notifier
	lease      Lease
	window     Window
	loc        *time.Location
	log        *slog.Logger

	now   func() time.Time
	newID func() string
}

// Dependencies carries everything the orchestrator needs at construction.
type Dependencies struct {
	Applications ApplicationStore
	Interviews   InterviewStore
	Jobs         JobDirectory
	Gate         CompanyGate
	Chat         ChatService
	Notifier     Notifier
	Lease        Lease
	Window       Window
	Location     *time.Location
	Logger       *slog.Logger
}

// Gate actions consulted before plan-limited operations.
const (
	actionScheduleInterview = "schedule_interview"
	actionHire              = "hire"
)

// chatLeaseTTL bounds how long a single chat-create attempt can hold the
// creation lease.
const chatLeaseTTL = 30 * time.Second

// NewOrchestrator returns a configured Orchestrator.
func NewOrchestrator(deps Dependencies) *Orchestrator {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		apps:       deps.Applications,
		interviews: deps.Interviews,
		jobs:       deps.Jobs,
		gate:       deps.Gate,
		chat:       deps.Chat,
		notifier:   deps.Notifier,
		lease:      deps.Lease,
		window:     deps.Window,
		loc:        loc,
		log:        logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// ─── Application operations ──────────────────────────────────────────────────

// ApplyInput is the seeker-supplied application payload.
type ApplyInput struct {
	JobID          string `json:"jobId"`
	CoverLetter    string `json:"coverLetter"`
	ExpectedSalary string `json:"expectedSalary"`
	Availability   string `json:"availability"`
}

// Apply creates a new application in the applied status. It fails with
// NotFound when the job is absent or not published, and with Conflict when
// an active application already exists for the (job, seeker) pair.
func (o *Orchestrator) Apply(ctx context.Context, actor Actor, in ApplyInput) (*JobApplication, error) {
	if err := requireRole(actor, RoleSeeker); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.JobID) == "" {
		return nil, NewValidationError("invalid request", map[string]string{"jobId": "jobId is required"})
	}
	job, err := o.jobs.FindJob(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != JobPublished {
		return nil, NewError(CodeNotFound, "job is not open for applications", map[string]string{"jobId": in.JobID})
	}

	now := o.now()
	app := &JobApplication{
		ID:             o.newID(),
		JobID:          job.ID,
		SeekerID:       actor.ID,
		CompanyID:      job.CompanyID,
		JobTitle:       job.Title,
		CompanyName:    job.CompanyName,
		Status:         StatusApplied,
		CoverLetter:    in.CoverLetter,
		ExpectedSalary: in.ExpectedSalary,
		Availability:   in.Availability,
		History: []StatusChange{{
			Status: StatusApplied, ActorID: actor.ID, ActorRole: actor.Role, At: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := o.apps.Create(ctx, app)
	if err != nil {
		return nil, err
	}
	o.emit(ctx, appEvent(EventApplicationApplied, created, nil, now))
	return created, nil
}

// MarkViewed moves applied → viewed. It is idempotent: once the application
// has left applied, the call is a no-op.
func (o *Orchestrator) MarkViewed(ctx context.Context, actor Actor, applicationID string) (*JobApplication, error) {
	app, err := o.loadOwnedByCompany(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != StatusApplied {
		return app, nil
	}
	updated, err := o.transition(ctx, app, actor, StatusViewed, "")
	if err != nil {
		if IsCode(err, CodeConflict) {
			// Raced with another viewer; the no-op contract still holds.
			return o.apps.Get(ctx, applicationID)
		}
		return nil, err
	}
	o.emit(ctx, appEvent(EventApplicationViewed, updated, nil, o.now()))
	return updated, nil
}

// Shortlist moves the application to shortlisted.
func (o *Orchestrator) Shortlist(ctx context.Context, actor Actor, applicationID string) (*JobApplication, error) {
	app, err := o.loadOwnedByCompany(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	updated, err := o.transition(ctx, app, actor, StatusShortlisted, "")
	if err != nil {
		return nil, err
	}
	o.emit(ctx, appEvent(EventApplicationShortlist, updated, nil, o.now()))
	return updated, nil
}

// Reject is legal from any non-terminal state, company-only.
func (o *Orchestrator) Reject(ctx context.Context, actor Actor, applicationID, reason string) (*JobApplication, error) {
	app, err := o.loadOwnedByCompany(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	updated, err := o.transition(ctx, app, actor, StatusRejected, reason)
	if err != nil {
		return nil, err
	}
	o.emit(ctx, appEvent(EventApplicationRejected, updated, reasonPayload(reason), o.now()))
	return updated, nil
}

// Withdraw is legal from any non-terminal, pre-hire state, seeker-only.
func (o *Orchestrator) Withdraw(ctx context.Context, actor Actor, applicationID string) (*JobApplication, error) {
	app, err := o.loadOwnedBySeeker(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	updated, err := o.transition(ctx, app, actor, StatusWithdrawn, "")
	if err != nil {
		return nil, err
	}
	o.emit(ctx, appEvent(EventApplicationWithdrawn, updated, nil, o.now()))
	return updated, nil
}

// AcceptInput optionally carries the instant-hire start instant, used by the
// reminder sweep.
type AcceptInput struct {
	StartAt *time.Time `json:"startAt,omitempty"`
}

// Accept sends a hire request directly, skipping the interview flow (the
// instant-hire path). It opens the chat channel exactly once and is
// idempotent: a repeat call on an application already in hire_request_sent
// returns the same chat id instead of failing.
func (o *Orchestrator) Accept(ctx context.Context, actor Actor, applicationID string, in AcceptInput) (*JobApplication, error) {
	app, err := o.loadOwnedByCompany(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status == StatusHireRequestSent {
		o.ensureChat(ctx, app)
		return o.apps.Get(ctx, applicationID)
	}
	if !IsTransitionAllowed(app.Status, StatusHireRequestSent) {
		return nil, NewInvalidTransition(string(app.Status), string(StatusHireRequestSent), statusStrings(AllowedFrom(app.Status)))
	}
	if err := o.checkGate(ctx, app.CompanyID, actionHire); err != nil {
		return nil, err
	}
	updated, err := o.apps.UpdateStatus(ctx, applicationID, ApplicationUpdate{
		From:    app.Status,
		Change:  o.change(actor, StatusHireRequestSent, ""),
		StartAt: in.StartAt,
	})
	if err != nil {
		return nil, err
	}
	o.ensureChat(ctx, updated)
	o.emit(ctx, appEvent(EventHireRequested, updated, nil, o.now()))
	return updated, nil
}

// RespondToHireRequest is the seeker's answer to a pending hire request.
func (o *Orchestrator) RespondToHireRequest(ctx context.Context, actor Actor, applicationID string, accepted bool) (*JobApplication, error) {
	app, err := o.loadOwnedBySeeker(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	target := StatusHired
	eventType := EventHireAccepted
	if !accepted {
		target = StatusHireDeclined
		eventType = EventHireDeclined
	}
	updated, err := o.transition(ctx, app, actor, target, "")
	if err != nil {
		return nil, err
	}
	if accepted {
		o.ensureChat(ctx, updated)
	}
	o.emit(ctx, appEvent(eventType, updated, nil, o.now()))
	return updated, nil
}

// CompleteJob closes a hired engagement with optional feedback and rating.
func (o *Orchestrator) CompleteJob(ctx context.Context, actor Actor, applicationID, feedback string, rating int) (*JobApplication, error) {
	app, err := o.loadOwnedByCompany(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if rating != 0 && (rating < 1 || rating > 5) {
		return nil, NewValidationError("invalid request", map[string]string{"rating": "rating must be between 1 and 5"})
	}
	upd := ApplicationUpdate{From: app.Status, Change: o.change(actor, StatusCompleted, "")}
	if feedback != "" {
		upd.Feedback = &feedback
	}
	if rating != 0 {
		upd.Rating = &rating
	}
	if !IsTransitionAllowed(app.Status, StatusCompleted) {
		return nil, NewInvalidTransition(string(app.Status), string(StatusCompleted), statusStrings(AllowedFrom(app.Status)))
	}
	updated, err := o.apps.UpdateStatus(ctx, applicationID, upd)
	if err != nil {
		return nil, err
	}
	o.emit(ctx, appEvent(EventJobCompleted, updated, nil, o.now()))
	return updated, nil
}

// CancelJob cancels a hired engagement. Either party may cancel.
func (o *Orchestrator) CancelJob(ctx context.Context, actor Actor, applicationID, reason string) (*JobApplication, error) {
	app, err := o.loadOwnedByParty(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	updated, err := o.transition(ctx, app, actor, StatusCancelled, reason)
	if err != nil {
		return nil, err
	}
	o.emit(ctx, appEvent(EventJobCancelled, updated, reasonPayload(reason), o.now()))
	return updated, nil
}

// GetApplication returns one application after an ownership check.
func (o *Orchestrator) GetApplication(ctx context.Context, actor Actor, applicationID string) (*JobApplication, error) {
	return o.loadOwnedByParty(ctx, actor, applicationID)
}

// ListApplications lists the caller's applications, newest first.
func (o *Orchestrator) ListApplications(ctx context.Context, actor Actor) ([]JobApplication, error) {
	switch actor.Role {
	case RoleSeeker:
		return o.apps.ListBySeeker(ctx, actor.ID)
	case RoleCompany:
		return o.apps.ListByCompany(ctx, actor.ID)
	}
	return nil, NewError(CodeForbidden, "unknown role", nil)
}

// ─── Chat channel ────────────────────────────────────────────────────────────

// ensureChat opens the chat channel for an application exactly once. The
// redis lease bounds the external create call under concurrent retries; the
// conditional chat_id write guarantees a single persisted id either way.
// External chat failures are logged and left for operator-triggered retry —
// the committed transition stands.
func (o *Orchestrator) ensureChat(ctx context.Context, app *JobApplication) {
	if app.ChatID != nil && *app.ChatID != "" {
		return
	}
	key := "hiring:chat:" + app.ID
	acquired, err := o.lease.Acquire(ctx, key, chatLeaseTTL)
	if err != nil {
		o.log.Warn("chat lease acquire failed", "applicationId", app.ID, "err", err)
	}
	if !acquired && err == nil {
		// Another request is creating the chat; it will persist the id.
		return
	}
	defer func() {
		if acquired {
			if err := o.lease.Release(ctx, key); err != nil {
				o.log.Warn("chat lease release failed", "applicationId", app.ID, "err", err)
			}
		}
	}()

	// Re-read under the lease: a prior holder may have finished already.
	fresh, err := o.apps.Get(ctx, app.ID)
	if err == nil && fresh.ChatID != nil && *fresh.ChatID != "" {
		app.ChatID = fresh.ChatID
		return
	}

	chatID, err := o.chat.CreateChat(ctx, app.CompanyID, app.SeekerID, app.ID)
	if err != nil {
		o.log.Warn("chat creation failed", "applicationId", app.ID, "err", err)
		return
	}
	current, won, err := o.apps.SetChatID(ctx, app.ID, chatID)
	if err != nil {
		o.log.Warn("chat id persist failed", "applicationId", app.ID, "err", err)
		return
	}
	app.ChatID = &current
	if won {
		o.emit(ctx, appEvent(EventChatCreated, app, map[string]string{"chatId": current}, o.now()))
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// transition applies a conditional application status write with full
// transition-table validation against the loaded state.
func (o *Orchestrator) transition(ctx context.Context, app *JobApplication, actor Actor, to Status, reason string) (*JobApplication, error) {
	if !IsTransitionAllowed(app.Status, to) {
		return nil, NewInvalidTransition(string(app.Status), string(to), statusStrings(AllowedFrom(app.Status)))
	}
	return o.apps.UpdateStatus(ctx, app.ID, ApplicationUpdate{
		From:   app.Status,
		Change: o.change(actor, to, reason),
	})
}

func (o *Orchestrator) change(actor Actor, to Status, reason string) StatusChange {
	return StatusChange{Status: to, ActorID: actor.ID, ActorRole: actor.Role, At: o.now(), Reason: reason}
}

func (o *Orchestrator) checkGate(ctx context.Context, companyID, action string) error {
	ok, err := o.gate.CanPerformAction(ctx, companyID, action)
	if err != nil {
		return err
	}
	if !ok {
		return NewError(CodeForbidden, "plan does not allow this action", map[string]string{
			"reason": ReasonPlanLimit, "action": action,
		})
	}
	return nil
}

// emit hands events to the notifier, fire-and-forget.
func (o *Orchestrator) emit(ctx context.Context, events ...Event) {
	for _, ev := range events {
		if err := o.notifier.Emit(ctx, ev); err != nil {
			o.log.Warn("notification emit failed", "type", ev.Type, "applicationId", ev.ApplicationID, "err", err)
		}
	}
}

func (o *Orchestrator) loadOwnedByCompany(ctx context.Context, actor Actor, applicationID string) (*JobApplication, error) {
	if err := requireRole(actor, RoleCompany); err != nil {
		return nil, err
	}
	app, err := o.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.CompanyID != actor.ID {
		return nil, NewError(CodeForbidden, "application belongs to another company", nil)
	}
	return app, nil
}

func (o *Orchestrator) loadOwnedBySeeker(ctx context.Context, actor Actor, applicationID string) (*JobApplication, error) {
	if err := requireRole(actor, RoleSeeker); err != nil {
		return nil, err
	}
	app, err := o.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.SeekerID != actor.ID {
		return nil, NewError(CodeForbidden, "application belongs to another seeker", nil)
	}
	return app, nil
}

func (o *Orchestrator) loadOwnedByParty(ctx context.Context, actor Actor, applicationID string) (*JobApplication, error) {
	app, err := o.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.Role == RoleCompany && app.CompanyID == actor.ID:
		return app, nil
	case actor.Role == RoleSeeker && app.SeekerID == actor.ID:
		return app, nil
	}
	return nil, NewError(CodeForbidden, "application belongs to another party", nil)
}

func requireRole(actor Actor, role Role) error {
	if actor.ID == "" {
		return NewError(CodeForbidden, "missing actor identity", nil)
	}
	if actor.Role != role {
		return NewError(CodeForbidden, "insufficient role", map[string]string{"required": string(role)})
	}
	return nil
}

func reasonPayload(reason string) map[string]string {
	if reason == "" {
		return nil
	}
	return map[string]string{"reason": reason}
}
