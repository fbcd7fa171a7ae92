// Package provider implements the per-source-type fetch collaborators:
// feed parsing via gofeed, JSON API normalization, and HTML scraping via
// goquery. Providers perform raw I/O and error classification only; rate
// limiting, circuit breaking, and retries are composed around them by the
// ingestion orchestrator.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"content-harvester/internal/domain/entity"
	"content-harvester/internal/infra/fetcher"
	"content-harvester/internal/resilience/retry"
)

// Fetcher fetches source materials for a descriptor. Implementations must
// be safe for concurrent use and must return classified errors:
// retry.HTTPError for HTTP failures, retry.Permanent for errors that no
// retry can fix.
type Fetcher interface {
	Fetch(ctx context.Context, desc entity.SourceDescriptor, channelID string) ([]entity.SourceMaterial, error)
}

// Fetchers maps source types to their fetch collaborator.
type Fetchers map[entity.SourceType]Fetcher

// For returns the fetcher for a source type.
func (f Fetchers) For(sourceType entity.SourceType) (Fetcher, error) {
	fetcherImpl, ok := f[sourceType]
	if !ok {
		return nil, retry.Permanent(fmt.Errorf("no fetcher registered for source type %q", sourceType))
	}
	return fetcherImpl, nil
}

// NewDefaultFetchers builds the standard fetcher set with per-type client
// configurations. denyPrivateIPs should be true outside tests.
func NewDefaultFetchers(denyPrivateIPs bool) Fetchers {
	apiCfg := fetcher.APIClientConfig()
	feedCfg := fetcher.FeedClientConfig()
	scrapeCfg := fetcher.ScrapeClientConfig()
	apiCfg.DenyPrivateIPs = denyPrivateIPs
	feedCfg.DenyPrivateIPs = denyPrivateIPs
	scrapeCfg.DenyPrivateIPs = denyPrivateIPs

	return Fetchers{
		entity.SourceTypeAPI:    NewAPIFetcher(apiCfg),
		entity.SourceTypeFeed:   NewFeedFetcher(feedCfg),
		entity.SourceTypeScrape: NewScrapeFetcher(scrapeCfg, fetcher.NewExtractor(scrapeCfg)),
	}
}

// httpGet performs a GET and returns the body, classifying non-2xx
// responses into retry.HTTPError. A 429 response carries the server's
// Retry-After hint when present.
func httpGet(ctx context.Context, client *http.Client, url string, cfg fetcher.ClientConfig) ([]byte, error) {
	if err := fetcher.ValidateURL(url, cfg.DenyPrivateIPs); err != nil {
		return nil, retry.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", cfg.ResolvedUserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			httpErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return nil, httpErr
	}

	limited := io.LimitReader(resp.Body, cfg.MaxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > cfg.MaxBodySize {
		return nil, retry.Permanent(fmt.Errorf("%w: response exceeds %d bytes", fetcher.ErrBodyTooLarge, cfg.MaxBodySize))
	}

	return body, nil
}

// parseRetryAfter parses a Retry-After header value, either delay-seconds
// or an HTTP date. Returns zero for absent or malformed values.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
