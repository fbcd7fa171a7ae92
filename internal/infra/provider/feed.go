package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"content-harvester/internal/domain/entity"
	"content-harvester/internal/infra/fetcher"
	"content-harvester/internal/resilience/retry"
)

// FeedFetcher fetches and parses RSS/Atom feeds using the gofeed library.
type FeedFetcher struct {
	config fetcher.ClientConfig
}

// NewFeedFetcher creates a FeedFetcher with the given client configuration.
func NewFeedFetcher(cfg fetcher.ClientConfig) *FeedFetcher {
	return &FeedFetcher{config: cfg}
}

// Fetch retrieves and parses the feed at the descriptor's endpoint.
// Each feed entry becomes one SourceMaterial.
func (f *FeedFetcher) Fetch(ctx context.Context, desc entity.SourceDescriptor, channelID string) ([]entity.SourceMaterial, error) {
	if err := fetcher.ValidateURL(desc.Endpoint, f.config.DenyPrivateIPs); err != nil {
		return nil, retry.Permanent(err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	fp := gofeed.NewParser()
	fp.UserAgent = f.config.ResolvedUserAgent()
	fp.Client = fetcher.NewHTTPClient(f.config)

	feed, err := fp.ParseURLWithContext(desc.Endpoint, reqCtx)
	if err != nil {
		return nil, classifyFeedError(err)
	}

	now := time.Now()
	materials := make([]entity.SourceMaterial, 0, len(feed.Items))
	for _, it := range feed.Items {
		pubAt := now
		if it.PublishedParsed != nil {
			pubAt = *it.PublishedParsed
		}

		// Prefer full content, fall back to the item description
		content := it.Content
		if content == "" {
			content = it.Description
		}

		metadata := map[string]string{
			"feed_title": feed.Title,
		}
		if it.GUID != "" {
			metadata["item_guid"] = it.GUID
		}

		materials = append(materials, entity.SourceMaterial{
			ID:          entity.NewMaterialID(),
			SourceType:  entity.SourceTypeFeed,
			Provider:    desc.Provider,
			Title:       it.Title,
			Content:     content,
			URL:         it.Link,
			PublishedAt: pubAt,
			Metadata:    metadata,
			FetchedAt:   now,
		})
	}

	return materials, nil
}

// classifyFeedError maps gofeed failures onto the retry error taxonomy so
// the retrier can distinguish permanent from transient feed errors.
func classifyFeedError(err error) error {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return &retry.HTTPError{StatusCode: httpErr.StatusCode, Message: httpErr.Status}
	}
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		// Not a feed at all; retrying cannot help
		return retry.Permanent(err)
	}
	return fmt.Errorf("fetch feed: %w", err)
}
