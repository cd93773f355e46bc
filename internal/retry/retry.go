// Package retry provides the single bounded-backoff policy shared by every
// external call site, instead of each component duplicating its own loop.
package retry

import (
	"context"
	"time"
)

// Policy describes a bounded retry schedule. Attempt N sleeps Backoff[N-1]
// before re-running; attempts beyond the schedule clamp to the last entry.
type Policy struct {
	MaxAttempts int
	Backoff     []time.Duration
}

// Do runs op up to MaxAttempts times. A failed attempt is retried only when
// retryable reports the error as transient; definitive errors are returned
// immediately. The sleep between attempts respects ctx cancellation.
func (p Policy) Do(ctx context.Context, retryable func(error) bool, op func() error) error {
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 && len(p.Backoff) > 0 {
			idx := attempt - 1
			if idx >= len(p.Backoff) {
				idx = len(p.Backoff) - 1
			}
			timer := time.NewTimer(p.Backoff[idx])
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err = op(); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
	}
	return err
}
