package utils

import (
	"context"
	"sync"
	"time"
)

// Throttle bounds the number of in-flight calls to an external service and
// spaces call starts at least rateLimitMs apart.
type Throttle struct {
	rateLimitMs int
	semaphore   chan struct{}
	mu          sync.Mutex
	lastRequest time.Time
}

// NewThrottle creates a Throttle with the given concurrency and rate limit.
// maxInFlight below 1 is treated as 1.
func NewThrottle(maxInFlight, rateLimitMs int) *Throttle {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Throttle{
		rateLimitMs: rateLimitMs,
		semaphore:   make(chan struct{}, maxInFlight),
	}
}

// Do runs fn once a slot is free and the rate limit allows it.
// It returns ctx.Err() without running fn if ctx ends while waiting.
func (t *Throttle) Do(ctx context.Context, fn func() error) error {
	select {
	case t.semaphore <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-t.semaphore }()

	if err := t.enforceRateLimit(ctx); err != nil {
		return err
	}
	return fn()
}

func (t *Throttle) enforceRateLimit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	minInterval := time.Duration(t.rateLimitMs) * time.Millisecond
	if wait := minInterval - time.Since(t.lastRequest); wait > 0 && !t.lastRequest.IsZero() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	t.lastRequest = time.Now()
	return nil
}
