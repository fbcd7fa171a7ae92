package circuitbreaker

import (
	"sync"
	"time"
)

// Registry holds one circuit breaker per provider key, created lazily on
// first use. It replaces package-level breaker maps so that state can be
// injected and isolated per test or per process component.
type Registry struct {
	mu               sync.Mutex
	breakers         map[string]*CircuitBreaker
	failureThreshold uint32
	resetTimeout     time.Duration
}

// NewRegistry creates a registry whose breakers share the given threshold
// and reset timeout. Zero values fall back to the defaults.
func NewRegistry(failureThreshold uint32, resetTimeout time.Duration) *Registry {
	if failureThreshold == 0 {
		failureThreshold = DefaultConfig("").FailureThreshold
	}
	if resetTimeout <= 0 {
		resetTimeout = DefaultConfig("").ResetTimeout
	}
	return &Registry{
		breakers:         make(map[string]*CircuitBreaker),
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
	}
}

// Get returns the circuit breaker for the given provider, creating it on
// first use. Breakers live for the registry's lifetime.
func (r *Registry) Get(provider string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.breakers[provider]
	if !ok {
		cb = New(Config{
			Name:             provider,
			FailureThreshold: r.failureThreshold,
			ResetTimeout:     r.resetTimeout,
		})
		r.breakers[provider] = cb
	}
	return cb
}

// Len returns the number of breakers currently tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.breakers)
}
