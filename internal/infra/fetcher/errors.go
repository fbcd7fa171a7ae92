// Package fetcher provides the shared HTTP plumbing for provider fetches:
// a hardened client factory, outbound URL validation, and readability-based
// content extraction.
package fetcher

import "errors"

// Sentinel errors for fetch plumbing.
var (
	// ErrInvalidURL indicates the URL failed validation before any request was made.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrPrivateIP indicates the URL resolves to a private or loopback address.
	ErrPrivateIP = errors.New("URL resolves to private IP")

	// ErrTimeout indicates the request exceeded its configured timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured limit.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the configured size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrExtractFailed indicates readability could not find article content.
	ErrExtractFailed = errors.New("content extraction failed")
)
