package reminder

import (
	"context"
	"time"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
)

// NewStore adapts the two hiring storage ports into the sweep's view.
func NewStore(apps hiring.ApplicationStore, interviews hiring.InterviewStore) Store {
	return portStore{apps: apps, interviews: interviews}
}

type portStore struct {
	apps       hiring.ApplicationStore
	interviews hiring.InterviewStore
}

func (s portStore) UpcomingBooked(ctx context.Context, from, to time.Time) ([]hiring.Interview, error) {
	return s.interviews.UpcomingBooked(ctx, from, to)
}

func (s portStore) MarkInterviewReminder(ctx context.Context, id, bucket string) (bool, error) {
	return s.interviews.MarkReminderSent(ctx, id, bucket)
}

func (s portStore) UpcomingHires(ctx context.Context, from, to time.Time) ([]hiring.JobApplication, error) {
	return s.apps.UpcomingHires(ctx, from, to)
}

func (s portStore) MarkHireReminder(ctx context.Context, id, bucket string) (bool, error) {
	return s.apps.MarkReminderSent(ctx, id, bucket)
}
