// Package ratelimit throttles outgoing requests per remote source.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a named token bucket shared by every request to one source.
type Limiter struct {
	limiter *rate.Limiter
	source  string
}

// New creates a limiter allowing requestsPerSecond with the given burst.
// A burst below one is raised to one.
func New(source string, requestsPerSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		source:  source,
	}
}

// Unlimited creates a limiter that never blocks.
func Unlimited(source string) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Inf, 1),
		source:  source,
	}
}

// Wait blocks until a request to the source may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.source, err)
	}
	if waited := time.Since(start); waited > 100*time.Millisecond {
		slog.Debug("Request throttled", "source", l.source, "waited", waited)
	}
	return nil
}

// Source returns the source this limiter guards.
func (l *Limiter) Source() string {
	return l.source
}
