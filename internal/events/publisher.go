// Package events delivers engine notification events. The redis publisher
// pushes each event onto the pub/sub channel named after its type, where the
// notification service picks it up; delivery beyond that point is the
// notification service's concern.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
)

// RedisPublisher implements hiring.Notifier over redis pub/sub.
type RedisPublisher struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewRedisPublisher returns a publisher on the given client.
func NewRedisPublisher(rdb *redis.Client, log *slog.Logger) *RedisPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &RedisPublisher{rdb: rdb, log: log}
}

// Emit publishes the event on the channel named after its type.
func (p *RedisPublisher) Emit(ctx context.Context, ev hiring.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Type, err)
	}
	if err := p.rdb.Publish(ctx, ev.Type, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	p.log.Debug("event published", "type", ev.Type, "applicationId", ev.ApplicationID)
	return nil
}

// LogNotifier just logs events. It stands in for the redis publisher during
// development.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier returns a logging notifier.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

// Emit logs the event and always succeeds.
func (n *LogNotifier) Emit(_ context.Context, ev hiring.Event) error {
	n.log.Info("event", "type", ev.Type,
		"applicationId", ev.ApplicationID, "interviewId", ev.InterviewID)
	return nil
}
