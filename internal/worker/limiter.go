package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-role rate limiting for model calls. A runaway
// fallback ladder must not be able to hammer the backend: every Junior,
// Senior, and fallback call waits for clearance first.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a rate limiter shared by all roles.
func NewLimiter(callsPerSecond float64, burst int) *Limiter {
	if callsPerSecond <= 0 {
		callsPerSecond = 2
	}
	if burst <= 0 {
		burst = 4
	}
	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(callsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until a call for the given role is allowed or ctx ends.
func (l *Limiter) Wait(ctx context.Context, role string) error {
	return l.getLimiter(role).Wait(ctx)
}

// Allow checks clearance without waiting.
func (l *Limiter) Allow(role string) bool {
	return l.getLimiter(role).Allow()
}

// SetRoleRate overrides the rate for one role.
func (l *Limiter) SetRoleRate(role string, callsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if burst <= 0 {
		burst = l.defaultBurst
	}
	l.limiters[role] = rate.NewLimiter(rate.Limit(callsPerSecond), burst)
}

func (l *Limiter) getLimiter(role string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[role]
	l.mu.RUnlock()
	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, exists := l.limiters[role]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[role] = limiter
	return limiter
}
