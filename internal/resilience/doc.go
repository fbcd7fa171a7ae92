// Package resilience provides reliability and fault tolerance patterns for the
// ingestion pipeline. It includes circuit breakers, retry logic with exponential
// backoff, and per-provider rate limiting so that one misbehaving upstream
// cannot take the whole harvest down.
//
// The package supports:
//   - Circuit breakers for external providers (feeds, APIs, scraped sites)
//   - Retry logic with exponential backoff and jitter
//   - Token-bucket rate limiting keyed by provider
//
// Usage Example:
//
//	breakers := circuitbreaker.NewRegistry(5, 60*time.Second)
//	result, err := breakers.Get("newsapi").Execute(func() (interface{}, error) {
//	    return callProvider()
//	})
//
//	err := retry.Do(ctx, retry.DefaultConfig(), "newsapi", func() error {
//	    return performFetch()
//	})
package resilience
