// Package ratelimit provides the shared admission gate in front of the
// external keyword metrics provider. One Governor instance is constructed at
// startup and passed to everything that issues provider calls; every outbound
// request must acquire a slot first.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Governor admits at most ceiling requests in any trailing window. Waiters
// are served in arrival order: a turnstile mutex is held for the whole wait,
// so later arrivals queue behind earlier ones instead of racing for the
// freed slot.
type Governor struct {
	ceiling int
	window  time.Duration
	now     func() time.Time

	turnstile sync.Mutex // serializes waiters, FIFO under mutex starvation mode

	mu         sync.Mutex // guards admissions
	admissions []time.Time
}

// New constructs a Governor. A non-positive ceiling or window is a
// configuration error.
func New(ceiling int, window time.Duration) (*Governor, error) {
	if ceiling <= 0 {
		return nil, fmt.Errorf("ratelimit: ceiling must be positive, got %d", ceiling)
	}
	if window <= 0 {
		return nil, fmt.Errorf("ratelimit: window must be positive, got %v", window)
	}
	return &Governor{
		ceiling: ceiling,
		window:  window,
		now:     time.Now,
	}, nil
}

// Acquire blocks until an admission slot is available, records the admission
// and returns. It never fails on contention; the only error path is the
// caller cancelling ctx while waiting. Slots already consumed are not
// refunded on cancellation.
func (g *Governor) Acquire(ctx context.Context) error {
	g.turnstile.Lock()
	defer g.turnstile.Unlock()

	for {
		wait, ok := g.tryAdmit()
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// tryAdmit prunes expired admissions and either records a new one (returning
// ok) or returns how long until the oldest admission exits the window.
func (g *Governor) tryAdmit() (time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.pruneLocked(now)

	if len(g.admissions) < g.ceiling {
		g.admissions = append(g.admissions, now)
		return 0, true
	}

	wait := g.admissions[0].Add(g.window).Sub(now)
	if wait <= 0 {
		// Clock moved between prune and here; retry immediately.
		wait = time.Millisecond
	}
	return wait, false
}

// CurrentRate returns the number of admissions in the current trailing
// window. Side-effect free apart from pruning expired timestamps.
func (g *Governor) CurrentRate() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked(g.now())
	return len(g.admissions)
}

// AvailableCapacity returns ceiling minus the current rate, clamped to >= 0.
func (g *Governor) AvailableCapacity() int {
	if free := g.ceiling - g.CurrentRate(); free > 0 {
		return free
	}
	return 0
}

// Ceiling returns the configured admission ceiling.
func (g *Governor) Ceiling() int { return g.ceiling }

// Window returns the configured trailing window duration.
func (g *Governor) Window() time.Duration { return g.window }

// pruneLocked drops admissions older than the trailing window. Callers must
// hold mu.
func (g *Governor) pruneLocked(now time.Time) {
	cutoff := now.Add(-g.window)
	i := 0
	for i < len(g.admissions) && !g.admissions[i].After(cutoff) {
		i++
	}
	if i > 0 {
		g.admissions = append(g.admissions[:0], g.admissions[i:]...)
	}
}
