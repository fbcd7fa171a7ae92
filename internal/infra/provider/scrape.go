package provider

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"content-harvester/internal/domain/entity"
	"content-harvester/internal/infra/fetcher"
	"content-harvester/internal/resilience/retry"
)

// minSelectorContentLength is the threshold below which selector-extracted
// text is considered thin and readability extraction is attempted instead.
const minSelectorContentLength = 80

// ScrapeFetcher extracts content from an HTML page using the descriptor's
// CSS selector, falling back to readability extraction when the selector
// yields thin content.
type ScrapeFetcher struct {
	client    *http.Client
	extractor *fetcher.Extractor
	config    fetcher.ClientConfig
}

// NewScrapeFetcher creates a ScrapeFetcher. The extractor may be nil, in
// which case no readability fallback is attempted.
func NewScrapeFetcher(cfg fetcher.ClientConfig, extractor *fetcher.Extractor) *ScrapeFetcher {
	return &ScrapeFetcher{
		client:    fetcher.NewHTTPClient(cfg),
		extractor: extractor,
		config:    cfg,
	}
}

// Fetch downloads the page at the descriptor's endpoint and extracts text
// matching its selector. The page yields a single material; a selector
// that matches nothing produces an empty result, not an error.
func (f *ScrapeFetcher) Fetch(ctx context.Context, desc entity.SourceDescriptor, channelID string) ([]entity.SourceMaterial, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	body, err := httpGet(reqCtx, f.client, desc.Endpoint, f.config)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(err)
	}

	content := extractSelection(doc, desc.Selector)

	if len(content) < minSelectorContentLength && f.extractor != nil {
		extracted, exErr := f.extractor.ExtractContent(ctx, desc.Endpoint)
		if exErr != nil {
			slog.Debug("readability fallback failed, keeping selector content",
				slog.String("url", desc.Endpoint),
				slog.String("error", exErr.Error()))
		} else if len(extracted) > len(content) {
			content = extracted
		}
	}

	if content == "" {
		return nil, nil
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	now := time.Now()

	return []entity.SourceMaterial{{
		ID:          entity.NewMaterialID(),
		SourceType:  entity.SourceTypeScrape,
		Provider:    desc.Provider,
		Title:       title,
		Content:     content,
		URL:         desc.Endpoint,
		PublishedAt: now,
		Metadata: map[string]string{
			"selector": desc.Selector,
		},
		FetchedAt: now,
	}}, nil
}

// extractSelection joins the text of all nodes matching the selector,
// normalizing whitespace per node.
func extractSelection(doc *goquery.Document, selector string) string {
	var parts []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}
