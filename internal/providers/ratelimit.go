package providers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter paces API calls with a token bucket and an optional fixed gap
// between consecutive calls.
type RateLimiter struct {
	limiter     *rate.Limiter
	minInterval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewRateLimiter creates a new rate limiter. A zero RequestsPerMinute disables the
// token bucket.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	r := &RateLimiter{minInterval: config.MinInterval}

	if config.RequestsPerMinute > 0 {
		burst := config.BurstSize
		if burst <= 0 {
			burst = config.RequestsPerMinute
		}
		r.limiter = rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), burst)
	}

	return r
}

// Wait blocks until a call is allowed or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.minInterval > 0 && !r.last.IsZero() {
		if delay := time.Until(r.last.Add(r.minInterval)); delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	r.last = time.Now()
	return nil
}

// TryAcquire attempts to take a slot without blocking.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.minInterval > 0 && !r.last.IsZero() && time.Since(r.last) < r.minInterval {
		return false
	}
	if r.limiter != nil && !r.limiter.Allow() {
		return false
	}

	r.last = time.Now()
	return true
}

// Available returns the number of calls the token bucket would allow right now.
// It returns -1 when no bucket is configured.
func (r *RateLimiter) Available() float64 {
	if r.limiter == nil {
		return -1
	}
	return r.limiter.Tokens()
}

// RateLimiterManager manages rate limiters for multiple providers.
type RateLimiterManager struct {
	mu       sync.RWMutex
	limiters map[string]*RateLimiter
}

// NewRateLimiterManager creates a new rate limiter manager.
func NewRateLimiterManager() *RateLimiterManager {
	return &RateLimiterManager{
		limiters: make(map[string]*RateLimiter),
	}
}

// GetOrCreate returns the rate limiter for a key, creating it if needed.
func (m *RateLimiterManager) GetOrCreate(key string, config RateLimitConfig) *RateLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limiter, exists := m.limiters[key]; exists {
		return limiter
	}

	limiter := NewRateLimiter(config)
	m.limiters[key] = limiter
	return limiter
}

// Get returns the rate limiter for a key if it exists.
func (m *RateLimiterManager) Get(key string) (*RateLimiter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limiter, exists := m.limiters[key]
	return limiter, exists
}
