package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"content-harvester/internal/domain/entity"
	"content-harvester/internal/infra/fetcher"
	"content-harvester/internal/resilience/retry"
)

// itemArrayKeys are the response envelope fields searched for the item
// list, in priority order. Providers differ; this covers the common shapes.
var itemArrayKeys = []string{"items", "articles", "results", "data", "entries"}

// Per-item field fallbacks for normalization.
var (
	titleKeys     = []string{"title", "name", "headline"}
	contentKeys   = []string{"content", "description", "summary", "text", "body"}
	urlKeys       = []string{"url", "link", "href"}
	publishedKeys = []string{"published_at", "publishedAt", "pubDate", "date", "created_at"}
)

// APIFetcher fetches a JSON API endpoint and normalizes its response into
// source materials. It handles the two common response shapes: a top-level
// array of items, or an object wrapping such an array.
type APIFetcher struct {
	client *http.Client
	config fetcher.ClientConfig
}

// NewAPIFetcher creates an APIFetcher with the given client configuration.
func NewAPIFetcher(cfg fetcher.ClientConfig) *APIFetcher {
	return &APIFetcher{
		client: fetcher.NewHTTPClient(cfg),
		config: cfg,
	}
}

// Fetch performs a GET against the descriptor's endpoint with its query
// parameters and normalizes the JSON response.
func (f *APIFetcher) Fetch(ctx context.Context, desc entity.SourceDescriptor, channelID string) ([]entity.SourceMaterial, error) {
	endpoint, err := buildURL(desc.Endpoint, desc.Params)
	if err != nil {
		return nil, retry.Permanent(err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	body, err := httpGet(reqCtx, f.client, endpoint, f.config)
	if err != nil {
		return nil, err
	}

	items, err := extractItems(body)
	if err != nil {
		return nil, retry.Permanent(err)
	}

	now := time.Now()
	materials := make([]entity.SourceMaterial, 0, len(items))
	for _, item := range items {
		content := firstString(item, contentKeys)
		title := firstString(item, titleKeys)
		if content == "" && title == "" {
			continue
		}

		materials = append(materials, entity.SourceMaterial{
			ID:          entity.NewMaterialID(),
			SourceType:  entity.SourceTypeAPI,
			Provider:    desc.Provider,
			Title:       title,
			Content:     content,
			URL:         firstString(item, urlKeys),
			PublishedAt: firstTime(item, publishedKeys, now),
			Metadata:    map[string]string{"endpoint": desc.Endpoint},
			FetchedAt:   now,
		})
	}

	return materials, nil
}

// buildURL merges the descriptor's params into the endpoint's query string.
func buildURL(endpoint string, params map[string]string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// extractItems locates the item list inside a JSON response body.
func extractItems(body []byte) ([]map[string]any, error) {
	// Top-level array
	var direct []map[string]any
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct, nil
	}

	// Object envelope wrapping an array
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("response is neither a JSON array nor object: %w", err)
	}
	for _, key := range itemArrayKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var items []map[string]any
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
	}

	return nil, fmt.Errorf("no item array found in response (tried %v)", itemArrayKeys)
}

// firstString returns the first non-empty string value among keys.
func firstString(item map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := item[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstTime parses the first recognizable timestamp among keys, falling
// back to the given default.
func firstTime(item map[string]any, keys []string, fallback time.Time) time.Time {
	for _, k := range keys {
		s, ok := item[k].(string)
		if !ok || s == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, time.RFC1123, time.RFC1123Z, "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return fallback
}
