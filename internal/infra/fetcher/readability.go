package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-shiori/go-readability"
)

// Extractor fetches a page and extracts clean article text using the
// Mozilla Readability algorithm. The scrape provider uses it when a CSS
// selector yields thin content. Safe for concurrent use.
type Extractor struct {
	client *http.Client
	config ClientConfig
}

// NewExtractor creates an Extractor with the given client configuration.
func NewExtractor(cfg ClientConfig) *Extractor {
	return &Extractor{
		client: NewHTTPClient(cfg),
		config: cfg,
	}
}

// ExtractContent fetches the URL and returns extracted article text.
// The URL is validated for SSRF, the body is size-limited, and a page
// without recognizable article content returns ErrExtractFailed.
func (e *Extractor) ExtractContent(ctx context.Context, urlStr string) (string, error) {
	if err := ValidateURL(urlStr, e.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", e.config.ResolvedUserAgent())

	resp, err := e.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: request exceeded %v", ErrTimeout, e.config.Timeout)
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	limited := io.LimitReader(resp.Body, e.config.MaxBodySize+1)
	htmlBytes, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if int64(len(htmlBytes)) > e.config.MaxBodySize {
		return "", fmt.Errorf("%w: response exceeds %d bytes", ErrBodyTooLarge, e.config.MaxBodySize)
	}

	// Redirects may have moved the final URL
	pageURL, _ := url.Parse(urlStr)
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}

	if article.TextContent == "" {
		if article.Content == "" {
			return "", fmt.Errorf("%w: no readable content found", ErrExtractFailed)
		}
		slog.Debug("using raw article content, text extraction empty",
			slog.String("url", urlStr))
		return article.Content, nil
	}

	return article.TextContent, nil
}
