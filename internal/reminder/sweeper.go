// Package reminder computes and emits T-minus reminder events for upcoming
// interviews and instant-hire starts. It decides when a reminder is due and
// records that it fired; delivery belongs to the notification service.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
)

// Store is the slice of the storage ports the sweep needs.
type Store interface {
	UpcomingBooked(ctx context.Context, from, to time.Time) ([]hiring.Interview, error)
	MarkInterviewReminder(ctx context.Context, id, bucket string) (bool, error)
	UpcomingHires(ctx context.Context, from, to time.Time) ([]hiring.JobApplication, error)
	MarkHireReminder(ctx context.Context, id, bucket string) (bool, error)
}

// Due decides whether a reminder for the given lead is owed right now. A
// reminder fires once inside [startAt-lead, startAt); buckets already in
// sent stay silent, which makes the decision at-most-once per lead.
func Due(now, startAt time.Time, lead time.Duration, sent []string) (string, bool) {
	bucket := Bucket(lead)
	if now.Before(startAt.Add(-lead)) || !now.Before(startAt) {
		return bucket, false
	}
	for _, b := range sent {
		if b == bucket {
			return bucket, false
		}
	}
	return bucket, true
}

// Bucket names the at-most-once guard entry for one lead time.
func Bucket(lead time.Duration) string {
	return "T-" + lead.String()
}

// Sweeper wraps robfig/cron and runs the periodic reminder sweep.
type Sweeper struct {
	cron     *cron.Cron
	store    Store
	notifier hiring.Notifier
	leads    []time.Duration
	loc      *time.Location
	spec     string
	log      *slog.Logger

	now func() time.Time
}

// New creates a Sweeper firing on the given cron spec (e.g. "@every 2m")
// with the given lead times, longest first or not — order does not matter.
func New(store Store, notifier hiring.Notifier, leads []time.Duration, loc *time.Location, spec string, log *slog.Logger) *Sweeper {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{
		cron:     cron.New(),
		store:    store,
		notifier: notifier,
		leads:    leads,
		loc:      loc,
		spec:     spec,
		log:      log,
		now:      time.Now,
	}
}

// Start registers the sweep and starts the scheduler. One sweep runs
// immediately so a restart does not miss reminders that came due while the
// process was down.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.log.Info("reminder sweep started", "spec", s.spec, "leads", len(s.leads))

	go s.Sweep(ctx)
	return nil
}

// Stop shuts the scheduler down.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	s.log.Info("reminder sweep stopped")
}

// Sweep runs one pass over everything starting inside the largest lead
// window and emits whatever is due.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.now()
	horizon := now.Add(s.maxLead())

	interviews, err := s.store.UpcomingBooked(ctx, now, horizon)
	if err != nil {
		s.log.Warn("reminder sweep: list interviews failed", "err", err)
	} else {
		for i := range interviews {
			s.sweepInterview(ctx, now, &interviews[i])
		}
	}

	hires, err := s.store.UpcomingHires(ctx, now, horizon)
	if err != nil {
		s.log.Warn("reminder sweep: list hires failed", "err", err)
		return
	}
	for i := range hires {
		s.sweepHire(ctx, now, &hires[i])
	}
}

func (s *Sweeper) sweepInterview(ctx context.Context, now time.Time, iv *hiring.Interview) {
	startAt, err := iv.StartsAt(s.loc)
	if err != nil {
		s.log.Warn("reminder sweep: malformed interview slot", "interviewId", iv.ID, "err", err)
		return
	}
	for _, lead := range s.leads {
		bucket, due := Due(now, startAt, lead, iv.RemindersSent)
		if !due {
			continue
		}
		won, err := s.store.MarkInterviewReminder(ctx, iv.ID, bucket)
		if err != nil {
			s.log.Warn("reminder sweep: mark interview failed", "interviewId", iv.ID, "err", err)
			continue
		}
		if !won {
			continue
		}
		s.emit(ctx, hiring.Event{
			Type:          hiring.EventReminderInterview,
			ApplicationID: iv.ApplicationID,
			InterviewID:   iv.ID,
			JobID:         iv.JobID,
			CompanyID:     iv.CompanyID,
			SeekerID:      iv.SeekerID,
			Payload:       map[string]string{"bucket": bucket, "startsAt": startAt.Format(time.RFC3339)},
			At:            now,
		})
	}
}

func (s *Sweeper) sweepHire(ctx context.Context, now time.Time, app *hiring.JobApplication) {
	if app.StartAt == nil {
		return
	}
	for _, lead := range s.leads {
		bucket, due := Due(now, *app.StartAt, lead, app.RemindersSent)
		if !due {
			continue
		}
		won, err := s.store.MarkHireReminder(ctx, app.ID, bucket)
		if err != nil {
			s.log.Warn("reminder sweep: mark hire failed", "applicationId", app.ID, "err", err)
			continue
		}
		if !won {
			continue
		}
		s.emit(ctx, hiring.Event{
			Type:          hiring.EventReminderHireStart,
			ApplicationID: app.ID,
			JobID:         app.JobID,
			CompanyID:     app.CompanyID,
			SeekerID:      app.SeekerID,
			Payload:       map[string]string{"bucket": bucket, "startsAt": app.StartAt.Format(time.RFC3339)},
			At:            now,
		})
	}
}

func (s *Sweeper) emit(ctx context.Context, ev hiring.Event) {
	if err := s.notifier.Emit(ctx, ev); err != nil {
		s.log.Warn("reminder emit failed", "type", ev.Type, "applicationId", ev.ApplicationID, "err", err)
	}
}

func (s *Sweeper) maxLead() time.Duration {
	max := time.Duration(0)
	for _, l := range s.leads {
		if l > max {
			max = l
		}
	}
	return max
}
