// Package retry implements the caller-side retry/backoff policy the
// core deliberately keeps out of capability services (spec.md §4.2,
// §4.6: "the orchestrator never retries automatically; it exposes
// enough context for the caller to decide").
package retry

import (
	"context"
	"time"
)

// Policy is a bounded exponential backoff.
type Policy struct {
	MaxAttempts int
	Initial     time.Duration
	Max         time.Duration
	Factor      float64
}

// Default is a conservative policy suitable for provider API calls.
var Default = Policy{MaxAttempts: 5, Initial: 200 * time.Millisecond, Max: 5 * time.Second, Factor: 2}

// Do calls fn until it succeeds, shouldRetry(err) returns false, ctx is
// canceled, or MaxAttempts is exhausted.
func (p Policy) Do(ctx context.Context, shouldRetry func(error) bool, fn func() error) error {
	delay := p.Initial
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !shouldRetry(err) {
			return err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * p.Factor)
		if delay > p.Max {
			delay = p.Max
		}
	}
	return err
}

// Poll calls check on an interval until it returns true, an error, or
// ctx/timeout expires. Used for provider status transitions that are
// asynchronous on the backend (e.g. pause/resume convergence, spec.md
// §4.4.8).
func Poll(ctx context.Context, interval, timeout time.Duration, check func(context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if time.Now().After(deadline) {
			return context.DeadlineExceeded
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
