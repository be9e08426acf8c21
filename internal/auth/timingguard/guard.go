// Package timingguard normalizes the observable latency of authentication
// operations. Every guarded call takes at least MinResponseTime plus a random
// jitter, on success and on failure alike.
package timingguard

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	DefaultMinResponseTime = 200 * time.Millisecond
	DefaultMaxJitter       = 50 * time.Millisecond
)

// Config controls the latency floor of a Guard.
type Config struct {
	MinResponseTime time.Duration
	MaxJitter       time.Duration
}

// Guard pads operations up to a randomized minimum duration.
type Guard struct {
	minResponseTime time.Duration
	maxJitter       time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)

	mu  sync.Mutex
	rng *rand.Rand
}

// Option customizes a Guard.
type Option func(*Guard)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithRand overrides the jitter source.
func WithRand(r *rand.Rand) Option {
	return func(g *Guard) { g.rng = r }
}

// WithSleep overrides how the guard waits.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(g *Guard) { g.sleep = sleep }
}

// New creates a Guard. Negative durations are treated as zero.
func New(cfg Config, opts ...Option) *Guard {
	g := &Guard{
		minResponseTime: max(cfg.MinResponseTime, 0),
		maxJitter:       max(cfg.MaxJitter, 0),
		now:             time.Now,
		sleep:           sleepContext,
		rng:             rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Default returns a Guard with a 200ms floor and 50ms of jitter.
func Default() *Guard {
	return New(Config{MinResponseTime: DefaultMinResponseTime, MaxJitter: DefaultMaxJitter})
}

// CalculateDelay returns how long to wait so that the time since start
// reaches the floor plus a freshly sampled jitter. Never negative.
func (g *Guard) CalculateDelay(start time.Time) time.Duration {
	elapsed := g.now().Sub(start)
	target := g.minResponseTime + g.jitter()
	if elapsed >= target {
		return 0
	}
	return target - elapsed
}

func (g *Guard) jitter() time.Duration {
	if g.maxJitter == 0 {
		return 0
	}
	g.mu.Lock()
	f := g.rng.Float64()
	g.mu.Unlock()
	return time.Duration(f * float64(g.maxJitter))
}

// Run executes op to completion, waits out the remaining delay and returns
// op's result and error unchanged. Cancelling ctx shortens the wait only.
func Run[T any](ctx context.Context, g *Guard, op func(ctx context.Context) (T, error)) (T, error) {
	start := g.now()
	result, err := op(ctx)
	if delay := g.CalculateDelay(start); delay > 0 {
		g.sleep(ctx, delay)
	}
	return result, err
}

// Wrap returns op with normalized latency.
func Wrap[T any](g *Guard, op func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		return Run(ctx, g, op)
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
