// Package lockout counts failed sign-in attempts per username so repeated
// guessing locks the account for a window.
package lockout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "auth:lockout:"

// recordFailureScript increments the counter and starts the window on the
// first failure only, so later failures do not extend it.
var recordFailureScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// Store tracks failures per username.
type Store interface {
	// Failures returns the failures recorded in the current window.
	Failures(ctx context.Context, username string) (int, error)
	// RecordFailure increments the counter and returns the new value. The
	// window starts with the first failure.
	RecordFailure(ctx context.Context, username string) (int, error)
	// Reset clears the counter after a successful sign-in.
	Reset(ctx context.Context, username string) error
}

// RedisStore keeps counters in Redis with a TTL equal to the window.
type RedisStore struct {
	client *redis.Client
	window time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, window time.Duration) *RedisStore {
	return &RedisStore{client: client, window: window}
}

func key(username string) string { return keyPrefix + username }

func (s *RedisStore) Failures(ctx context.Context, username string) (int, error) {
	raw, err := s.client.Get(ctx, key(username)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read lockout counter: %w", err)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse lockout counter: %w", err)
	}
	return n, nil
}

func (s *RedisStore) RecordFailure(ctx context.Context, username string) (int, error) {
	n, err := recordFailureScript.Run(ctx, s.client, []string{key(username)}, s.window.Milliseconds()).Int()
	if err != nil {
		return 0, fmt.Errorf("record lockout failure: %w", err)
	}
	return n, nil
}

func (s *RedisStore) Reset(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, key(username)).Err(); err != nil {
		return fmt.Errorf("reset lockout counter: %w", err)
	}
	return nil
}

// NoopStore never locks anyone out. Used when Redis is not configured.
type NoopStore struct{}

func (NoopStore) Failures(context.Context, string) (int, error)      { return 0, nil }
func (NoopStore) RecordFailure(context.Context, string) (int, error) { return 0, nil }
func (NoopStore) Reset(context.Context, string) error                { return nil }

// NewRedisClient parses url and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = NoopStore{}
)
