package hiring

import (
	"context"
	"strings"
	"time"
)

// Interview-side orchestration. Every slot-affecting write re-runs the
// conflict predicate inside the store's guarded statement; the pure check in
// this file exists only to produce a precise error before touching storage.

// Duration bounds for a single interview slot.
const (
	MinInterviewMinutes = 15
	MaxInterviewMinutes = 180
)

// ScheduleInput describes the primary slot for a new interview.
type ScheduleInput struct {
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Type            string `json:"interviewType"`
	Location        string `json:"location"`
	Interviewer     string `json:"interviewer"`
}

func (in ScheduleInput) validate() (InterviewType, error) {
	fields := map[string]string{}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		fields["date"] = "date must be YYYY-MM-DD"
	}
	if _, err := MinuteOfDay(in.StartTime); err != nil {
		fields["startTime"] = "startTime must be HH:MM"
	}
	if in.DurationMinutes < MinInterviewMinutes || in.DurationMinutes > MaxInterviewMinutes {
		fields["durationMinutes"] = "duration must be between 15 and 180 minutes"
	}
	typ, ok := ParseInterviewType(in.Type)
	if !ok {
		fields["interviewType"] = "interviewType must be in-person, phone, video or group"
	}
	if len(fields) > 0 {
		return "", NewValidationError("invalid interview slot", fields)
	}
	return typ, nil
}

// ScheduleInterview books the primary slot and moves the application to
// interview_requested. The booking is committed first; if the application
// write then loses its precondition race, the fresh booking is released
// again so no partial transition survives.
func (o *Orchestrator) ScheduleInterview(ctx context.Context, actor Actor, applicationID string, in ScheduleInput) (*Interview, error) {
	app, err := o.loadOwnedByCompany(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	typ, err := in.validate()
	if err != nil {
		return nil, err
	}
	if !IsTransitionAllowed(app.Status, StatusInterviewRequested) {
		return nil, NewInvalidTransition(string(app.Status), string(StatusInterviewRequested), statusStrings(AllowedFrom(app.Status)))
	}
	if err := o.checkGate(ctx, app.CompanyID, actionScheduleInterview); err != nil {
		return nil, err
	}

	start, _ := MinuteOfDay(in.StartTime)
	bookings, err := o.interviews.Bookings(ctx, app.CompanyID, in.Date, "")
	if err != nil {
		return nil, err
	}
	if conflictID, conflict := FindConflict(start, in.DurationMinutes, bookings); conflict {
		return nil, NewSlotConflict(conflictID)
	}

	now := o.now()
	iv := &Interview{
		ID:              o.newID(),
		ApplicationID:   app.ID,
		JobID:           app.JobID,
		CompanyID:       app.CompanyID,
		SeekerID:        app.SeekerID,
		Date:            in.Date,
		StartTime:       in.StartTime,
		DurationMinutes: in.DurationMinutes,
		Type:            typ,
		Location:        in.Location,
		Interviewer:     in.Interviewer,
		Status:          InterviewScheduled,
		Result:          ResultPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	created, err := o.interviews.Create(ctx, iv)
	if err != nil {
		return nil, err
	}

	if _, err := o.apps.UpdateStatus(ctx, app.ID, ApplicationUpdate{
		From:   app.Status,
		Change: o.change(actor, StatusInterviewRequested, ""),
	}); err != nil {
		// Release the slot we just booked; the application write lost.
		if _, cancelErr := o.interviews.UpdateStatus(ctx, created.ID, InterviewUpdate{
			From: InterviewScheduled, To: InterviewCancelled, Reason: "application transition failed",
		}); cancelErr != nil {
			o.log.Warn("orphaned interview after failed transition", "interviewId", created.ID, "err", cancelErr)
		}
		return nil, err
	}
	o.emit(ctx, interviewEvent(EventInterviewScheduled, created, nil, now))
	return created, nil
}

// ConfirmInterview is the seeker accepting the primary slot. The application
// follows into interview_accepted, the first hire-track milestone, which
// opens the chat channel.
func (o *Orchestrator) ConfirmInterview(ctx context.Context, actor Actor, interviewID string) (*Interview, error) {
	iv, err := o.loadInterviewBySeeker(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}
	updated, err := o.interviewTransition(ctx, iv, InterviewConfirmed, "")
	if err != nil {
		return nil, err
	}
	app, err := o.followApplication(ctx, actor, iv.ApplicationID, StatusInterviewAccepted, "")
	if err != nil {
		o.log.Warn("application did not follow interview confirm", "applicationId", iv.ApplicationID, "err", err)
	}
	if app != nil {
		o.ensureChat(ctx, app)
	}
	o.emit(ctx, interviewEvent(EventInterviewConfirmed, updated, nil, o.now()))
	return updated, nil
}

// DeclineInterview is the seeker declining the primary slot.
func (o *Orchestrator) DeclineInterview(ctx context.Context, actor Actor, interviewID, reason string) (*Interview, error) {
	iv, err := o.loadInterviewBySeeker(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}
	updated, err := o.interviewTransition(ctx, iv, InterviewDeclined, reason)
	if err != nil {
		return nil, err
	}
	if _, err := o.followApplication(ctx, actor, iv.ApplicationID, StatusInterviewDeclined, reason); err != nil {
		o.log.Warn("application did not follow interview decline", "applicationId", iv.ApplicationID, "err", err)
	}
	o.emit(ctx, interviewEvent(EventInterviewDeclined, updated, reasonPayload(reason), o.now()))
	return updated, nil
}

// RescheduleInput is a new primary slot for an existing interview.
type RescheduleInput struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	Reason    string `json:"reason"`
}

// RescheduleInterview moves the interview to a new slot. The conflict check
// runs against the new slot only, excluding the interview's own prior
// booking, so rescheduling to the original time always succeeds.
func (o *Orchestrator) RescheduleInterview(ctx context.Context, actor Actor, interviewID string, in RescheduleInput) (*Interview, error) {
	iv, err := o.loadInterviewByParty(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		fields["date"] = "date must be YYYY-MM-DD"
	}
	start, err := MinuteOfDay(in.StartTime)
	if err != nil {
		fields["startTime"] = "startTime must be HH:MM"
	}
	if len(fields) > 0 {
		return nil, NewValidationError("invalid reschedule slot", fields)
	}
	if !IsInterviewTransitionAllowed(iv.Status, InterviewRescheduled) {
		return nil, NewInvalidTransition(string(iv.Status), string(InterviewRescheduled), interviewStatusStrings(AllowedInterviewFrom(iv.Status)))
	}

	bookings, err := o.interviews.Bookings(ctx, iv.CompanyID, in.Date, iv.ID)
	if err != nil {
		return nil, err
	}
	if conflictID, conflict := FindConflict(start, iv.DurationMinutes, bookings); conflict {
		return nil, NewSlotConflict(conflictID)
	}

	entry := RescheduleEntry{
		FromDate:  iv.Date,
		FromStart: iv.StartTime,
		ToDate:    in.Date,
		ToStart:   in.StartTime,
		Reason:    in.Reason,
		At:        o.now(),
	}
	updated, err := o.interviews.Reschedule(ctx, iv.ID, iv.Status, SlotOption{Date: in.Date, StartTime: in.StartTime}, entry)
	if err != nil {
		return nil, err
	}
	o.emit(ctx, interviewEvent(EventInterviewRescheduled, updated, reasonPayload(in.Reason), o.now()))
	return updated, nil
}

// CompleteInput is the company's record of a finished interview.
type CompleteInput struct {
	Result   string `json:"result"`
	Feedback string `json:"feedback"`
	Rating   int    `json:"rating"`
}

// CompleteInterview records the outcome of a confirmed interview.
func (o *Orchestrator) CompleteInterview(ctx context.Context, actor Actor, interviewID string, in CompleteInput) (*Interview, error) {
	iv, err := o.loadInterviewByCompany(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}
	result := Result(in.Result)
	if result != ResultPass && result != ResultFail {
		return nil, NewValidationError("invalid request", map[string]string{"result": "result must be pass or fail"})
	}
	if in.Rating != 0 && (in.Rating < 1 || in.Rating > 5) {
		return nil, NewValidationError("invalid request", map[string]string{"rating": "rating must be between 1 and 5"})
	}
	if !IsInterviewTransitionAllowed(iv.Status, InterviewCompleted) {
		return nil, NewInvalidTransition(string(iv.Status), string(InterviewCompleted), interviewStatusStrings(AllowedInterviewFrom(iv.Status)))
	}
	now := o.now()
	upd := InterviewUpdate{From: iv.Status, To: InterviewCompleted, Result: &result, CompletedAt: &now}
	if in.Feedback != "" {
		upd.Feedback = &in.Feedback
	}
	if in.Rating != 0 {
		upd.Rating = &in.Rating
	}
	updated, err := o.interviews.UpdateStatus(ctx, iv.ID, upd)
	if err != nil {
		return nil, err
	}
	o.emit(ctx, interviewEvent(EventInterviewCompleted, updated, map[string]string{"result": in.Result}, now))
	return updated, nil
}

// MarkNoShow records a seeker no-show. Only valid once the scheduled end
// time has passed.
func (o *Orchestrator) MarkNoShow(ctx context.Context, actor Actor, interviewID string) (*Interview, error) {
	iv, err := o.loadInterviewByCompany(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}
	end, err := iv.EndsAt(o.loc)
	if err != nil {
		return nil, NewValidationError("interview has a malformed slot", nil)
	}
	if o.now().Before(end) {
		return nil, NewValidationError("interview has not ended yet", map[string]string{"endsAt": end.Format(time.RFC3339)})
	}
	updated, err := o.interviewTransition(ctx, iv, InterviewNoShow, "")
	if err != nil {
		return nil, err
	}
	o.emit(ctx, interviewEvent(EventInterviewNoShow, updated, nil, o.now()))
	return updated, nil
}

// CancelInterview cancels a scheduled or confirmed interview. The record is
// kept for audit; only the status changes.
func (o *Orchestrator) CancelInterview(ctx context.Context, actor Actor, interviewID, reason string) (*Interview, error) {
	iv, err := o.loadInterviewByParty(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}
	updated, err := o.interviewTransition(ctx, iv, InterviewCancelled, reason)
	if err != nil {
		return nil, err
	}
	o.emit(ctx, interviewEvent(EventInterviewCancelled, updated, reasonPayload(reason), o.now()))
	return updated, nil
}

// AddInterviewDates appends alternate slot options the seeker may pick
// instead of the primary slot. The interview status is untouched.
func (o *Orchestrator) AddInterviewDates(ctx context.Context, actor Actor, interviewID string, opts []SlotOption) (*Interview, error) {
	iv, err := o.loadInterviewByCompany(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status != InterviewScheduled {
		return nil, NewInvalidTransition(string(iv.Status), string(InterviewScheduled), interviewStatusStrings(AllowedInterviewFrom(iv.Status)))
	}
	if len(opts) == 0 {
		return nil, NewValidationError("invalid request", map[string]string{"options": "at least one alternate slot is required"})
	}
	for _, opt := range opts {
		if _, err := time.Parse("2006-01-02", opt.Date); err != nil {
			return nil, NewValidationError("invalid alternate slot", map[string]string{"date": "date must be YYYY-MM-DD"})
		}
		if _, err := MinuteOfDay(opt.StartTime); err != nil {
			return nil, NewValidationError("invalid alternate slot", map[string]string{"startTime": "startTime must be HH:MM"})
		}
	}
	updated, err := o.interviews.AddDateOptions(ctx, iv.ID, opts)
	if err != nil {
		return nil, err
	}
	o.emit(ctx, interviewEvent(EventInterviewDatesAdded, updated, nil, o.now()))
	return updated, nil
}

// GetInterview returns one interview after an ownership check.
func (o *Orchestrator) GetInterview(ctx context.Context, actor Actor, interviewID string) (*Interview, error) {
	return o.loadInterviewByParty(ctx, actor, interviewID)
}

// ListInterviews lists the interviews spawned by one application.
func (o *Orchestrator) ListInterviews(ctx context.Context, actor Actor, applicationID string) ([]Interview, error) {
	if _, err := o.loadOwnedByParty(ctx, actor, applicationID); err != nil {
		return nil, err
	}
	return o.interviews.ListByApplication(ctx, applicationID)
}

// AvailableSlots computes the free starts for a company on one date within
// the configured working-hours window.
func (o *Orchestrator) AvailableSlots(ctx context.Context, actor Actor, date string, duration int) ([]string, error) {
	if err := requireRole(actor, RoleCompany); err != nil {
		return nil, err
	}
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(date)); err != nil {
		return nil, NewValidationError("invalid request", map[string]string{"date": "date must be YYYY-MM-DD"})
	}
	if duration < MinInterviewMinutes || duration > MaxInterviewMinutes {
		return nil, NewValidationError("invalid request", map[string]string{"duration": "duration must be between 15 and 180 minutes"})
	}
	bookings, err := o.interviews.Bookings(ctx, actor.ID, date, "")
	if err != nil {
		return nil, err
	}
	return AvailableSlots(bookings, duration, o.window), nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (o *Orchestrator) interviewTransition(ctx context.Context, iv *Interview, to InterviewStatus, reason string) (*Interview, error) {
	if !IsInterviewTransitionAllowed(iv.Status, to) {
		return nil, NewInvalidTransition(string(iv.Status), string(to), interviewStatusStrings(AllowedInterviewFrom(iv.Status)))
	}
	return o.interviews.UpdateStatus(ctx, iv.ID, InterviewUpdate{From: iv.Status, To: to, Reason: reason})
}

// followApplication mirrors an interview outcome onto the owning
// application when the move is legal; a stale or already-moved application
// is not an error for the interview operation itself.
func (o *Orchestrator) followApplication(ctx context.Context, actor Actor, applicationID string, to Status, reason string) (*JobApplication, error) {
	app, err := o.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status == to {
		return app, nil
	}
	if !IsTransitionAllowed(app.Status, to) {
		return nil, NewInvalidTransition(string(app.Status), string(to), statusStrings(AllowedFrom(app.Status)))
	}
	return o.apps.UpdateStatus(ctx, applicationID, ApplicationUpdate{
		From:   app.Status,
		Change: o.change(actor, to, reason),
	})
}

func (o *Orchestrator) loadInterviewByCompany(ctx context.Context, actor Actor, interviewID string) (*Interview, error) {
	if err := requireRole(actor, RoleCompany); err != nil {
		return nil, err
	}
	iv, err := o.interviews.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.CompanyID != actor.ID {
		return nil, NewError(CodeForbidden, "interview belongs to another company", nil)
	}
	return iv, nil
}

func (o *Orchestrator) loadInterviewBySeeker(ctx context.Context, actor Actor, interviewID string) (*Interview, error) {
	if err := requireRole(actor, RoleSeeker); err != nil {
		return nil, err
	}
	iv, err := o.interviews.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.SeekerID != actor.ID {
		return nil, NewError(CodeForbidden, "interview belongs to another seeker", nil)
	}
	return iv, nil
}

func (o *Orchestrator) loadInterviewByParty(ctx context.Context, actor Actor, interviewID string) (*Interview, error) {
	iv, err := o.interviews.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.Role == RoleCompany && iv.CompanyID == actor.ID:
		return iv, nil
	case actor.Role == RoleSeeker && iv.SeekerID == actor.ID:
		return iv, nil
	}
	return nil, NewError(CodeForbidden, "interview belongs to another party", nil)
}
