// Package retry provides retry logic with exponential backoff and jitter.
// It helps handle transient failures gracefully by automatically retrying failed operations.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"
)

// Config holds the configuration for retry logic.
type Config struct {
	// MaxAttempts is the maximum number of attempts, including the first
	MaxAttempts int

	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries
	MaxDelay time.Duration

	// Multiplier is the multiplier for exponential backoff
	Multiplier float64

	// IsPermanent overrides the default permanent-error classifier.
	// A permanent error aborts retrying immediately. Nil uses IsPermanent.
	IsPermanent func(error) bool
}

// DefaultConfig returns a default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// FeedFetchConfig returns configuration optimized for RSS/Atom feed fetching.
// Aggressive retry for transient network issues.
func FeedFetchConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// APIFetchConfig returns configuration optimized for JSON API calls.
// Moderate retry to respect provider quotas.
func APIFetchConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
}

// WebScraperConfig returns configuration optimized for web scraping.
// Moderate retry for network issues and transient site failures.
func WebScraperConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
}

// Do executes the given function with retry logic and exponential backoff.
// Permanent errors abort immediately; transient errors are retried up to
// MaxAttempts with jittered backoff. The label identifies the operation in
// log records. Returns nil on success or the last error on failure.
func Do(ctx context.Context, cfg Config, label string, fn func() error) error {
	isPermanent := cfg.IsPermanent
	if isPermanent == nil {
		isPermanent = IsPermanent
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()

		if lastErr == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry",
					slog.String("operation", label),
					slog.Int("attempt", attempt))
			}
			return nil
		}

		// Stop only when the caller's own context is done. An attempt
		// that ran out its per-request deadline is a transient failure
		// like any other timeout and goes back around.
		if ctx.Err() != nil {
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}

		if isPermanent(lastErr) {
			slog.Warn("permanent error, aborting",
				slog.String("operation", label),
				slog.Int("attempt", attempt),
				slog.Any("error", lastErr))
			return lastErr
		}

		// Don't wait after last attempt
		if attempt == cfg.MaxAttempts {
			break
		}

		sleep := addJitter(delay)
		if ra := RetryAfter(lastErr); ra > sleep {
			sleep = ra
		}

		slog.Warn("operation failed, retrying",
			slog.String("operation", label),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("delay", sleep),
			slog.Any("error", lastErr))

		// Wait with context cancellation support
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}

		// Exponential backoff, capped at MaxDelay
		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	slog.Warn("retry attempts exhausted",
		slog.String("operation", label),
		slog.Int("attempts", cfg.MaxAttempts),
		slog.Any("error", lastErr))

	return fmt.Errorf("max retry attempts (%d) exceeded for %s: %w", cfg.MaxAttempts, label, lastErr)
}

// IsPermanent determines if an error cannot be fixed by retrying.
// Authentication failures, not-found, and bad-request-class responses are
// permanent; timeouts, 5xx, and 429 responses are transient.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}

	var permErr *PermanentError
	if errors.As(err, &permErr) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		// 408 Request Timeout and 429 Too Many Requests are transient
		if httpErr.StatusCode == http.StatusRequestTimeout ||
			httpErr.StatusCode == http.StatusTooManyRequests {
			return false
		}
		// Remaining 4xx client errors cannot succeed on retry
		if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
			return true
		}
	}

	return false
}

// RetryAfter extracts a provider-suggested retry delay from an error,
// or zero when the error carries none.
func RetryAfter(err error) time.Duration {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.RetryAfter
	}
	return 0
}

// HTTPError represents an HTTP error with status code.
// RetryAfter carries the server's suggested wait for 429 responses, if any.
type HTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// PermanentError marks an error as not worth retrying regardless of its type.
type PermanentError struct {
	Err error
}

// Permanent wraps an error so the retrier aborts immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Error implements the error interface.
func (e *PermanentError) Error() string {
	return "permanent: " + e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *PermanentError) Unwrap() error {
	return e.Err
}

// addJitter spreads a delay across ±25% of its value to prevent
// synchronized retry storms against a recovering provider.
func addJitter(duration time.Duration) time.Duration {
	// #nosec G404 -- Using math/rand is acceptable for jitter calculation.
	// Cryptographic randomness is not required for retry backoff jitter.
	return time.Duration(float64(duration) * (0.75 + rand.Float64()*0.5))
}
