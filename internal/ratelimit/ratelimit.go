package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles calls per key (a page id, or 0 for calls not tied to a page).
type Limiter interface {
	Wait(ctx context.Context, key int64) error
}

// InMemoryLimiter is an implementation of Limiter stored in memory
type InMemoryLimiter struct {
	keys map[int64]*rate.Limiter
	mu   sync.Mutex
	r    rate.Limit // Rate of adding tokens
	b    int        // Bucket size
}

// NewPerSecond builds a limiter from a fractional per-second rate. A
// non-positive rate disables limiting.
func NewPerSecond(perSecond float64, burst int) *InMemoryLimiter {
	r := rate.Limit(perSecond)
	if perSecond <= 0 {
		r = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &InMemoryLimiter{
		keys: make(map[int64]*rate.Limiter),
		r:    r,
		b:    burst,
	}
}

var _ Limiter = (*InMemoryLimiter)(nil)

func (l *InMemoryLimiter) limiter(key int64) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.keys[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.keys[key] = limiter
	}
	return limiter
}

// Wait blocks until a call for key may proceed or ctx is done
func (l *InMemoryLimiter) Wait(ctx context.Context, key int64) error {
	return l.limiter(key).Wait(ctx)
}
