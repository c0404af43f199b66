package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLease is a short-lived mutual-exclusion lease on a redis key,
// acquired with SET NX. The TTL bounds the hold so a crashed holder cannot
// block the key forever.
type RedisLease struct {
	rdb *redis.Client
}

// NewRedisLease returns a lease manager on the given client.
func NewRedisLease(rdb *redis.Client) *RedisLease {
	return &RedisLease{rdb: rdb}
}

// Acquire takes the lease if the key is free. Returns false when another
// holder has it.
func (l *RedisLease) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lease acquire %q: %w", key, err)
	}
	return ok, nil
}

// Release frees the lease early.
func (l *RedisLease) Release(ctx context.Context, key string) error {
	if err := l.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("lease release %q: %w", key, err)
	}
	return nil
}
