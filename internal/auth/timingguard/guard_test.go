package timingguard

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func newTestGuard(clock *fakeClock) *Guard {
	return New(
		Config{MinResponseTime: DefaultMinResponseTime, MaxJitter: DefaultMaxJitter},
		WithClock(clock.Now),
		WithSleep(clock.Sleep),
		WithRand(rand.New(rand.NewPCG(42, 1024))),
	)
}

func TestCalculateDelayReachesFloor(t *testing.T) {
	for _, elapsed := range []time.Duration{time.Millisecond, 100 * time.Millisecond, 199 * time.Millisecond} {
		clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		g := newTestGuard(clock)
		start := clock.now
		clock.now = clock.now.Add(elapsed)

		delay := g.CalculateDelay(start)
		total := elapsed + delay
		if total < DefaultMinResponseTime || total > DefaultMinResponseTime+DefaultMaxJitter {
			t.Fatalf("elapsed %v: total %v outside [%v, %v]", elapsed, total, DefaultMinResponseTime, DefaultMinResponseTime+DefaultMaxJitter)
		}
	}
}

func TestCalculateDelaySlowOperation(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := newTestGuard(clock)
	start := clock.now
	clock.now = clock.now.Add(300 * time.Millisecond)

	for i := 0; i < 20; i++ {
		if delay := g.CalculateDelay(start); delay != 0 {
			t.Fatalf("expected zero delay, got %v", delay)
		}
	}
}

func TestRunPassesResultThrough(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := newTestGuard(clock)
	start := clock.now

	got, err := Run(context.Background(), g, func(context.Context) (string, error) {
		clock.now = clock.now.Add(time.Millisecond)
		return "token", nil
	})
	if err != nil || got != "token" {
		t.Fatalf("expected token, got %q %v", got, err)
	}
	if len(clock.slept) != 1 {
		t.Fatalf("expected one sleep, got %d", len(clock.slept))
	}
	if clock.now.Sub(start) < DefaultMinResponseTime {
		t.Fatalf("expected at least %v, got %v", DefaultMinResponseTime, clock.now.Sub(start))
	}
}

func TestRunPassesErrorThroughUnchanged(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := newTestGuard(clock)
	sentinel := errors.New("invalid credentials")

	_, err := Run(context.Background(), g, func(context.Context) (int, error) {
		return 0, sentinel
	})
	if err != sentinel {
		t.Fatalf("expected original error, got %v", err)
	}
	if len(clock.slept) != 1 {
		t.Fatal("expected the failure path to be delayed as well")
	}
}

func TestRunSkipsSleepForSlowOperation(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := newTestGuard(clock)

	wrapped := Wrap(g, func(context.Context) (bool, error) {
		clock.now = clock.now.Add(time.Second)
		return true, nil
	})
	if ok, err := wrapped(context.Background()); !ok || err != nil {
		t.Fatalf("unexpected outcome %v %v", ok, err)
	}
	if len(clock.slept) != 0 {
		t.Fatalf("expected no sleep, got %v", clock.slept)
	}
}

func TestSleepContextStopsOnCancel(t *testing.T) {
	g := New(Config{MinResponseTime: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		_, err := Run(ctx, g, func(context.Context) (struct{}, error) {
			return struct{}{}, errors.New("denied")
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil || err.Error() != "denied" {
			t.Fatalf("expected original error after cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled context did not end the wait")
	}
}

func TestNegativeConfigIsClamped(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := New(Config{MinResponseTime: -time.Second, MaxJitter: -time.Second}, WithClock(clock.Now))
	if delay := g.CalculateDelay(clock.now); delay != 0 {
		t.Fatalf("expected zero delay, got %v", delay)
	}
}

func TestJitterIsResampledPerCall(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := newTestGuard(clock)
	replay := newTestGuard(&fakeClock{now: clock.now})

	seen := make(map[time.Duration]bool)
	for i := 0; i < 20; i++ {
		delay := g.CalculateDelay(clock.now)
		if delay < DefaultMinResponseTime || delay > DefaultMinResponseTime+DefaultMaxJitter {
			t.Fatalf("delay %v outside [%v, %v]", delay, DefaultMinResponseTime, DefaultMinResponseTime+DefaultMaxJitter)
		}
		if again := replay.CalculateDelay(clock.now); again != delay {
			t.Fatalf("same seed produced %v and %v", delay, again)
		}
		seen[delay] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected jitter to vary between calls")
	}
}

func TestDefaultGuardsDrawIndependentJitter(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixed }
	cfg := Config{MinResponseTime: DefaultMinResponseTime, MaxJitter: time.Second}
	a, b := New(cfg, WithClock(now)), New(cfg, WithClock(now))
	start := fixed
	for i := 0; i < 20; i++ {
		if a.CalculateDelay(start) != b.CalculateDelay(start) {
			return
		}
	}
	t.Fatal("expected independently seeded guards to diverge")
}
