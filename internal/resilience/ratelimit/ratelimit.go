// Package ratelimit provides per-provider token bucket throttling for
// outbound requests. It prevents ingestion fan-out from overwhelming any
// single provider regardless of how many sources point at it.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Registry holds one token bucket per provider key, created lazily on
// first use. Bucket capacity equals the provider's configured
// requests-per-minute and refills continuously at capacity/60 tokens per
// second. All token accounting is serialized inside rate.Limiter; the
// registry only guards its own map.
type Registry struct {
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	defaultRPM float64
	overrides  map[string]float64
}

// DefaultRequestsPerMinute is used for providers without an explicit limit.
const DefaultRequestsPerMinute = 60

// NewRegistry creates a limiter registry. defaultRPM applies to providers
// absent from overrides; non-positive values fall back to
// DefaultRequestsPerMinute.
func NewRegistry(defaultRPM float64, overrides map[string]float64) *Registry {
	if defaultRPM <= 0 {
		defaultRPM = DefaultRequestsPerMinute
	}
	return &Registry{
		limiters:   make(map[string]*rate.Limiter),
		defaultRPM: defaultRPM,
		overrides:  overrides,
	}
}

// Acquire blocks until a token is available for the provider or the
// context is done. It never rejects for rate reasons; the only error it
// returns is the context's.
func (r *Registry) Acquire(ctx context.Context, provider string) error {
	return r.limiter(provider).Wait(ctx)
}

// limiter returns the provider's token bucket, creating it on first use.
func (r *Registry) limiter(provider string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[provider]
	if !ok {
		rpm := r.defaultRPM
		if override, exists := r.overrides[provider]; exists && override > 0 {
			rpm = override
		}
		burst := int(rpm)
		if burst < 1 {
			burst = 1
		}
		l = rate.NewLimiter(rate.Limit(rpm/60.0), burst)
		r.limiters[provider] = l
	}
	return l
}

// Len returns the number of limiters currently tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
