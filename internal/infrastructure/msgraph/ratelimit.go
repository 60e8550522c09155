package msgraph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultBackoff = 60 * time.Second

// RateLimiter throttles outbound Graph requests with a process-wide token
// bucket. Retry-After backoff from a 429 applies only to the user that
// received it.
type RateLimiter struct {
	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt map[string]time.Time
	now     func() time.Time
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	if burst <= 0 {
		burst = 15
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		retryAt: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Wait blocks until the token bucket admits a request for userID. A user
// still inside a Retry-After window fails immediately with ErrRateLimited.
func (r *RateLimiter) Wait(ctx context.Context, userID string) error {
	if remaining := r.backoffFor(userID); remaining > 0 {
		return fmt.Errorf("%w: retry in %s", ErrRateLimited, remaining.Round(time.Second))
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimitError starts a backoff window for userID.
func (r *RateLimiter) RecordRateLimitError(userID string, retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt[userID] = r.now().Add(retryAfter)
}

func (r *RateLimiter) backoffFor(userID string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	retryAt, ok := r.retryAt[userID]
	if !ok {
		return 0
	}
	remaining := retryAt.Sub(r.now())
	if remaining <= 0 {
		delete(r.retryAt, userID)
		return 0
	}
	return remaining
}
