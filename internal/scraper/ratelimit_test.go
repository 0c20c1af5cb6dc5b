package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the limiter deterministically: sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) install(l *RateLimiter) {
	l.now = func() time.Time { return c.now }
	l.sleep = func(_ context.Context, d time.Duration) error {
		c.sleeps = append(c.sleeps, d)
		c.now = c.now.Add(d)
		return nil
	}
}

func TestRateLimiterMinSpacing(t *testing.T) {
	limiter := NewRateLimiter()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	clock.install(limiter)

	require.NoError(t, limiter.Wait(context.Background()))
	require.NoError(t, limiter.Wait(context.Background()))

	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, time.Second, clock.sleeps[0])
}

func TestRateLimiterWindowFull(t *testing.T) {
	limiter := NewRateLimiter()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	clock.install(limiter)

	start := clock.now
	for i := 0; i < 60; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	// 59 spacing sleeps so far; the window now holds 60 timestamps spanning
	// 59 seconds.
	require.Len(t, clock.sleeps, 59)

	require.NoError(t, limiter.Wait(context.Background()))

	// The 61st request is delayed until the oldest timestamp exits the
	// window, not merely by the minimum spacing.
	oldestExit := start.Add(defaultWindow)
	assert.False(t, clock.now.Before(oldestExit))
	assert.True(t, clock.now.Sub(oldestExit) <= time.Second,
		"61st admission should land just after the window frees a slot, got %v late", clock.now.Sub(oldestExit))
}

func TestRateLimiterContextCancelled(t *testing.T) {
	limiter := NewRateLimiter()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	clock.install(limiter)
	limiter.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	require.NoError(t, limiter.Wait(context.Background()))
	err := limiter.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiterPrunesExpired(t *testing.T) {
	limiter := NewRateLimiter()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	clock.install(limiter)

	require.NoError(t, limiter.Wait(context.Background()))
	clock.now = clock.now.Add(2 * defaultWindow)

	require.NoError(t, limiter.Wait(context.Background()))
	// Long idle gap: no sleeps beyond the first admission's bookkeeping.
	assert.Empty(t, clock.sleeps)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.timestamps, 1)
}
