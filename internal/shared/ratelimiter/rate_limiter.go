// Package ratelimiter caps how often an outbound API is called.
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiterInterface limits the frequency of operations such as API calls.
type RateLimiterInterface interface {
	WaitIfNeeded(ctx context.Context) error
}

// RateLimiter allows at most limit calls per fixed interval window.
// It is safe for concurrent use.
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // calls allowed per window
	interval  time.Duration // window length
	count     int
	lastReset time.Time
	now       func() time.Time
}

// NewRateLimiter creates a RateLimiter. A non-positive limit disables limiting.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// WaitIfNeeded blocks until the caller may proceed or ctx is done.
func (rl *RateLimiter) WaitIfNeeded(ctx context.Context) error {
	if rl.limit <= 0 {
		return nil
	}

	for {
		wait := rl.reserve()
		if wait <= 0 {
			return nil
		}

		slog.Warn("rate limit reached, waiting", "limit", rl.limit, "wait", wait)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve takes a slot in the current window, or returns how long until the window resets.
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	if rl.count < rl.limit {
		rl.count++
		return 0
	}
	return rl.interval - now.Sub(rl.lastReset)
}
