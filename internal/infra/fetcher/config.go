package fetcher

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

// DefaultUserAgent identifies outbound requests from this service.
const DefaultUserAgent = "ContentHarvesterBot/1.0"

// ClientConfig holds the settings for an outbound HTTP client.
//
// Security settings:
//   - DenyPrivateIPs: prevents SSRF by blocking private IP targets
//   - MaxBodySize: prevents memory exhaustion from oversized responses
//   - MaxRedirects: prevents redirect loops; each hop is re-validated
//   - Timeout: prevents resource starvation from slow servers
type ClientConfig struct {
	// Timeout is the maximum duration for a single HTTP request.
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes, enforced
	// while reading, not from the Content-Length header.
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects to follow.
	MaxRedirects int

	// DenyPrivateIPs blocks URLs resolving to private, loopback, or
	// link-local addresses. Should always be true in production.
	DenyPrivateIPs bool

	// UserAgent overrides the default User-Agent header when non-empty.
	UserAgent string
}

// DefaultClientConfig returns production defaults for outbound requests.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:        15 * time.Second,
		MaxBodySize:    10 * 1024 * 1024, // 10MB
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// APIClientConfig returns settings for JSON API requests.
func APIClientConfig() ClientConfig {
	cfg := DefaultClientConfig()
	cfg.Timeout = 10 * time.Second
	return cfg
}

// FeedClientConfig returns settings for feed fetches.
func FeedClientConfig() ClientConfig {
	cfg := DefaultClientConfig()
	cfg.Timeout = 15 * time.Second
	return cfg
}

// ScrapeClientConfig returns settings for page scraping, which tolerates
// slower origins than API or feed endpoints.
func ScrapeClientConfig() ClientConfig {
	cfg := DefaultClientConfig()
	cfg.Timeout = 30 * time.Second
	return cfg
}

// Validate checks that the configuration values are safe to use.
func (c ClientConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxBodySize < 1024 || c.MaxBodySize > 100*1024*1024 {
		return fmt.Errorf("max body size must be between 1KB and 100MB, got %d", c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}

// ResolvedUserAgent returns the configured or default User-Agent value.
func (c ClientConfig) ResolvedUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

// NewHTTPClient builds an HTTP client from the configuration. Every
// redirect target is re-validated so a safe initial URL cannot bounce the
// request into a private network.
func NewHTTPClient(cfg ClientConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := ValidateURL(req.URL.String(), cfg.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
}
