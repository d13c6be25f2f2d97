// Package ratelimit provides a token-bucket limiter for outbound requests.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces outbound requests with a token bucket. Bulk catalog scans
// issue many paged requests in a tight loop; the limiter keeps the server
// from hammering the upstream host.
type Limiter struct {
	l *rate.Limiter
}

// New creates a limiter allowing rps requests per second with the given burst.
func New(rps float64, burst int) *Limiter {
	return &Limiter{l: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until a request is allowed or the context is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.l.Wait(ctx)
}

// Allow reports whether a request may proceed right now, without blocking.
func (l *Limiter) Allow() bool {
	return l.l.Allow()
}
