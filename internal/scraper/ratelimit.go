package scraper

import (
	"context"
	"sync"
	"time"
)

const (
	defaultWindowLimit = 60
	defaultWindow      = 60 * time.Second
	defaultMinSpacing  = time.Second

	// slack added when waiting for the oldest timestamp to leave the window,
	// so a wake-up lands strictly outside it.
	windowSlack = 100 * time.Millisecond
)

// RateLimiter admits requests under a sliding-window budget plus a minimum
// inter-request spacing. One instance must be shared by every run in the
// process so the global request rate stays bounded.
type RateLimiter struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	minSpacing  time.Duration
	timestamps  []time.Time
	lastRequest time.Time

	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
	onWait func()
}

// OnWait registers a callback invoked whenever a request is delayed. Set it
// before the limiter is shared across goroutines.
func (l *RateLimiter) OnWait(fn func()) {
	l.onWait = fn
}

// NewRateLimiter builds a limiter with the reference policy of 60 requests
// per 60 seconds and 1 second between consecutive requests.
func NewRateLimiter() *RateLimiter {
	return newRateLimiter(defaultWindowLimit, defaultWindow, defaultMinSpacing)
}

func newRateLimiter(limit int, window, minSpacing time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:      limit,
		window:     window,
		minSpacing: minSpacing,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// Wait blocks until a request may be issued, then records it. The admission
// check loops after every sleep: another caller may have claimed the freed
// slot while this one was suspended.
func (l *RateLimiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)

		if len(l.timestamps) >= l.limit {
			wait := l.timestamps[0].Add(l.window).Sub(now) + windowSlack
			l.mu.Unlock()
			l.notifyWait()
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		if !l.lastRequest.IsZero() {
			if elapsed := now.Sub(l.lastRequest); elapsed < l.minSpacing {
				wait := l.minSpacing - elapsed
				l.mu.Unlock()
				l.notifyWait()
				if err := l.sleep(ctx, wait); err != nil {
					return err
				}
				continue
			}
		}

		l.timestamps = append(l.timestamps, now)
		l.lastRequest = now
		l.mu.Unlock()
		return nil
	}
}

func (l *RateLimiter) notifyWait() {
	if l.onWait != nil {
		l.onWait()
	}
}

// prune drops timestamps that have exited the window. Callers hold the lock.
func (l *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	idx := 0
	for idx < len(l.timestamps) && !l.timestamps[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[idx:]...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
