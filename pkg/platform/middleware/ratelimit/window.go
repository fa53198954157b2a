// Package ratelimit throttles expensive routes per caller with an in-memory
// sliding window. Limits are per process.
package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of one admission check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Window admits at most limit requests per key in any trailing window.
type Window struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string][]time.Time
	now     func() time.Time
}

func NewWindow(limit int, window time.Duration) *Window {
	return &Window{
		limit:   limit,
		window:  window,
		buckets: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records a request for key if it fits in the window.
func (w *Window) Allow(key string) Result {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	stamps := prune(w.buckets[key], now.Add(-w.window))

	if len(stamps) >= w.limit {
		w.buckets[key] = stamps
		resetAt := stamps[0].Add(w.window)
		return Result{
			Limit:      w.limit,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}
	}

	stamps = append(stamps, now)
	w.buckets[key] = stamps
	return Result{
		Allowed:   true,
		Limit:     w.limit,
		Remaining: w.limit - len(stamps),
		ResetAt:   stamps[0].Add(w.window),
	}
}

// Sweep drops keys with no requests inside the window.
func (w *Window) Sweep() {
	w.mu.Lock()
	defer w.mu.Unlock()
	cutoff := w.now().Add(-w.window)
	for key, stamps := range w.buckets {
		if stamps = prune(stamps, cutoff); len(stamps) == 0 {
			delete(w.buckets, key)
		} else {
			w.buckets[key] = stamps
		}
	}
}

// prune removes timestamps at or before cutoff. Stamps are kept in order.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	return stamps[i:]
}
