package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket bounding calls to the item-management platform.
// The platform applies its own rate limits upstream; throttling locally keeps
// batch sweeps from tripping them. Burst is set equal to the rate so no
// "saved up" burst above the per-second maximum is allowed.
type Limiter struct {
	l *rate.Limiter
}

// New creates a Limiter granting ratePerSec tokens per second.
func New(ratePerSec int) *Limiter {
	return &Limiter{l: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)}
}

// Wait blocks until a token is granted. Called immediately before every
// upstream platform call. Returns a non-nil error only if ctx is cancelled
// while waiting.
func (lm *Limiter) Wait(ctx context.Context) error {
	return lm.l.Wait(ctx)
}
