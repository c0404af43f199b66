// Package memory provides in-memory implementations of the hiring storage
// ports plus stub collaborators. It backs unit tests and local development
// without PostgreSQL or Redis; the same conditional-write semantics as the
// postgres package are enforced under a mutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
)

// Store holds both entity collections behind one mutex so cross-entity
// reads inside a write (the slot-overlap check) see a consistent snapshot.
type Store struct {
	mu         sync.Mutex
	apps       map[string]*hiring.JobApplication
	interviews map[string]*hiring.Interview
	loc        *time.Location
}

// NewStore returns an empty Store resolving interview instants in loc
// (UTC when nil).
func NewStore(loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{
		apps:       make(map[string]*hiring.JobApplication),
		interviews: make(map[string]*hiring.Interview),
		loc:        loc,
	}
}

// Applications returns the ApplicationStore view of the Store.
func (s *Store) Applications() hiring.ApplicationStore { return (*appStore)(s) }

// Interviews returns the InterviewStore view of the Store.
func (s *Store) Interviews() hiring.InterviewStore { return (*interviewStore)(s) }

// ─── ApplicationStore ────────────────────────────────────────────────────────

type appStore Store

func (s *appStore) Create(_ context.Context, app *hiring.JobApplication) (*hiring.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.apps {
		if existing.JobID == app.JobID && existing.SeekerID == app.SeekerID &&
			existing.Status != hiring.StatusRejected && existing.Status != hiring.StatusWithdrawn {
			return nil, hiring.NewError(hiring.CodeConflict, "an active application already exists for this job", map[string]string{
				"applicationId": existing.ID,
			})
		}
	}
	clone := cloneApp(app)
	s.apps[app.ID] = clone
	return cloneApp(clone), nil
}

func (s *appStore) Get(_ context.Context, id string) (*hiring.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, hiring.NewError(hiring.CodeNotFound, "application not found", nil)
	}
	return cloneApp(app), nil
}

func (s *appStore) ListBySeeker(_ context.Context, seekerID string) ([]hiring.JobApplication, error) {
	return s.list(func(a *hiring.JobApplication) bool { return a.SeekerID == seekerID })
}

func (s *appStore) ListByCompany(_ context.Context, companyID string) ([]hiring.JobApplication, error) {
	return s.list(func(a *hiring.JobApplication) bool { return a.CompanyID == companyID })
}

func (s *appStore) list(match func(*hiring.JobApplication) bool) ([]hiring.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]hiring.JobApplication, 0)
	for _, a := range s.apps {
		if match(a) {
			out = append(out, *cloneApp(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *appStore) UpdateStatus(_ context.Context, id string, upd hiring.ApplicationUpdate) (*hiring.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, hiring.NewError(hiring.CodeNotFound, "application not found", nil)
	}
	if app.Status != upd.From {
		return nil, hiring.NewError(hiring.CodeConflict, "application changed concurrently", map[string]string{
			"current": string(app.Status), "expected": string(upd.From),
		})
	}
	app.Status = upd.Change.Status
	app.History = append(app.History, upd.Change)
	if upd.Feedback != nil {
		app.Feedback = *upd.Feedback
	}
	if upd.Rating != nil {
		app.Rating = *upd.Rating
	}
	if upd.StartAt != nil {
		app.StartAt = upd.StartAt
	}
	app.UpdatedAt = upd.Change.At
	return cloneApp(app), nil
}

func (s *appStore) SetChatID(_ context.Context, id, chatID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return "", false, hiring.NewError(hiring.CodeNotFound, "application not found", nil)
	}
	if app.ChatID != nil && *app.ChatID != "" {
		return *app.ChatID, false, nil
	}
	app.ChatID = &chatID
	return chatID, true, nil
}

func (s *appStore) UpcomingHires(_ context.Context, from, to time.Time) ([]hiring.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]hiring.JobApplication, 0)
	for _, a := range s.apps {
		if a.Status != hiring.StatusHired || a.StartAt == nil {
			continue
		}
		if !a.StartAt.Before(from) && a.StartAt.Before(to) {
			out = append(out, *cloneApp(a))
		}
	}
	return out, nil
}

func (s *appStore) MarkReminderSent(_ context.Context, id, bucket string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return false, hiring.NewError(hiring.CodeNotFound, "application not found", nil)
	}
	for _, b := range app.RemindersSent {
		if b == bucket {
			return false, nil
		}
	}
	app.RemindersSent = append(app.RemindersSent, bucket)
	return true, nil
}

// ─── InterviewStore ──────────────────────────────────────────────────────────

type interviewStore Store

func (s *interviewStore) Create(_ context.Context, iv *hiring.Interview) (*hiring.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conflictID, conflict := s.conflict(iv.CompanyID, iv.Date, iv.StartTime, iv.DurationMinutes, ""); conflict {
		return nil, hiring.NewSlotConflict(conflictID)
	}
	clone := cloneInterview(iv)
	s.interviews[iv.ID] = clone
	return cloneInterview(clone), nil
}

func (s *interviewStore) Get(_ context.Context, id string) (*hiring.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.interviews[id]
	if !ok {
		return nil, hiring.NewError(hiring.CodeNotFound, "interview not found", nil)
	}
	return cloneInterview(iv), nil
}

func (s *interviewStore) ListByApplication(_ context.Context, applicationID string) ([]hiring.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]hiring.Interview, 0)
	for _, iv := range s.interviews {
		if iv.ApplicationID == applicationID {
			out = append(out, *cloneInterview(iv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *interviewStore) Bookings(_ context.Context, companyID, date, excludeID string) ([]hiring.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings(companyID, date, excludeID), nil
}

func (s *interviewStore) UpdateStatus(_ context.Context, id string, upd hiring.InterviewUpdate) (*hiring.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.interviews[id]
	if !ok {
		return nil, hiring.NewError(hiring.CodeNotFound, "interview not found", nil)
	}
	if iv.Status != upd.From {
		return nil, hiring.NewError(hiring.CodeConflict, "interview changed concurrently", map[string]string{
			"current": string(iv.Status), "expected": string(upd.From),
		})
	}
	iv.Status = upd.To
	if upd.Result != nil {
		iv.Result = *upd.Result
	}
	if upd.Rating != nil {
		iv.Rating = *upd.Rating
	}
	if upd.Feedback != nil {
		iv.Feedback = *upd.Feedback
	}
	if upd.CompletedAt != nil {
		iv.CompletedAt = upd.CompletedAt
		iv.UpdatedAt = *upd.CompletedAt
	} else {
		iv.UpdatedAt = time.Now()
	}
	return cloneInterview(iv), nil
}

func (s *interviewStore) Reschedule(_ context.Context, id string, from hiring.InterviewStatus, to hiring.SlotOption, entry hiring.RescheduleEntry) (*hiring.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.interviews[id]
	if !ok {
		return nil, hiring.NewError(hiring.CodeNotFound, "interview not found", nil)
	}
	if iv.Status != from {
		return nil, hiring.NewError(hiring.CodeConflict, "interview changed concurrently", map[string]string{
			"current": string(iv.Status), "expected": string(from),
		})
	}
	if conflictID, conflict := s.conflict(iv.CompanyID, to.Date, to.StartTime, iv.DurationMinutes, iv.ID); conflict {
		return nil, hiring.NewSlotConflict(conflictID)
	}
	iv.Date = to.Date
	iv.StartTime = to.StartTime
	iv.Status = hiring.InterviewScheduled
	iv.Reschedules = append(iv.Reschedules, entry)
	iv.UpdatedAt = entry.At
	return cloneInterview(iv), nil
}

func (s *interviewStore) AddDateOptions(_ context.Context, id string, opts []hiring.SlotOption) (*hiring.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.interviews[id]
	if !ok {
		return nil, hiring.NewError(hiring.CodeNotFound, "interview not found", nil)
	}
	iv.AdditionalDates = append(iv.AdditionalDates, opts...)
	iv.UpdatedAt = time.Now()
	return cloneInterview(iv), nil
}

func (s *interviewStore) UpcomingBooked(_ context.Context, from, to time.Time) ([]hiring.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]hiring.Interview, 0)
	for _, iv := range s.interviews {
		if !hiring.IsBooked(iv.Status) {
			continue
		}
		start, err := iv.StartsAt(s.loc)
		if err != nil {
			continue
		}
		if !start.Before(from) && start.Before(to) {
			out = append(out, *cloneInterview(iv))
		}
	}
	return out, nil
}

func (s *interviewStore) MarkReminderSent(_ context.Context, id, bucket string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.interviews[id]
	if !ok {
		return false, hiring.NewError(hiring.CodeNotFound, "interview not found", nil)
	}
	for _, b := range iv.RemindersSent {
		if b == bucket {
			return false, nil
		}
	}
	iv.RemindersSent = append(iv.RemindersSent, bucket)
	return true, nil
}

// conflict must be called with the mutex held.
func (s *interviewStore) conflict(companyID, date, startTime string, duration int, excludeID string) (string, bool) {
	start, err := hiring.MinuteOfDay(startTime)
	if err != nil {
		return "", false
	}
	return hiring.FindConflict(start, duration, s.bookings(companyID, date, excludeID))
}

// bookings must be called with the mutex held.
func (s *interviewStore) bookings(companyID, date, excludeID string) []hiring.Booking {
	out := make([]hiring.Booking, 0)
	for _, iv := range s.interviews {
		if iv.CompanyID != companyID || iv.Date != date || iv.ID == excludeID {
			continue
		}
		if !hiring.IsBooked(iv.Status) {
			continue
		}
		start, err := hiring.MinuteOfDay(iv.StartTime)
		if err != nil {
			continue
		}
		out = append(out, hiring.Booking{InterviewID: iv.ID, StartMinute: start, DurationMinutes: iv.DurationMinutes})
	}
	return out
}

// ─── Clones ──────────────────────────────────────────────────────────────────

func cloneApp(a *hiring.JobApplication) *hiring.JobApplication {
	c := *a
	c.History = append([]hiring.StatusChange(nil), a.History...)
	c.RemindersSent = append([]string(nil), a.RemindersSent...)
	if a.ChatID != nil {
		id := *a.ChatID
		c.ChatID = &id
	}
	if a.StartAt != nil {
		t := *a.StartAt
		c.StartAt = &t
	}
	return &c
}

func cloneInterview(iv *hiring.Interview) *hiring.Interview {
	c := *iv
	c.AdditionalDates = append([]hiring.SlotOption(nil), iv.AdditionalDates...)
	c.Reschedules = append([]hiring.RescheduleEntry(nil), iv.Reschedules...)
	c.RemindersSent = append([]string(nil), iv.RemindersSent...)
	if iv.CompletedAt != nil {
		t := *iv.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
