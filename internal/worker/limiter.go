package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter bounds the request rate toward the reasoning provider. It is shared
// by every stage that calls out (detection, explanation, rewrite) and is safe
// for concurrent use. A zero requests-per-second limiter is a no-op, which
// keeps local providers like Ollama unconstrained by default.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter. requestsPerSecond <= 0 disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return &Limiter{}
	}
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a request may proceed or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed without waiting.
func (l *Limiter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}
