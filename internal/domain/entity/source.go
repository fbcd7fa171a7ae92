// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as SourceDescriptor and SourceMaterial,
// along with their validation rules and domain-specific errors.
package entity

import (
	"fmt"
	"sort"
	"strings"
)

// SourceType identifies the kind of external provider a descriptor points at.
type SourceType string

// Supported source types.
const (
	SourceTypeAPI    SourceType = "api"
	SourceTypeFeed   SourceType = "feed"
	SourceTypeScrape SourceType = "scrape"
)

// Valid reports whether the source type is one of the supported variants.
func (t SourceType) Valid() bool {
	switch t {
	case SourceTypeAPI, SourceTypeFeed, SourceTypeScrape:
		return true
	}
	return false
}

// SourceDescriptor describes a single external source to ingest from.
// It is a tagged variant: the Type field selects which of the remaining
// fields are meaningful. Descriptors are constructed by the caller and
// never mutated afterwards.
//
// Field usage by type:
//   - api: Provider, Endpoint, Params (query parameters)
//   - feed: Provider, Endpoint (feed URL)
//   - scrape: Provider, Endpoint (page URL), Selector (CSS selector)
type SourceDescriptor struct {
	Type     SourceType        `json:"type" yaml:"type"`
	Provider string            `json:"provider" yaml:"provider"`
	Endpoint string            `json:"endpoint" yaml:"endpoint"`
	Params   map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Selector string            `json:"selector,omitempty" yaml:"selector,omitempty"`
}

// Validate checks that the descriptor is well-formed for its type.
func (d SourceDescriptor) Validate() error {
	if !d.Type.Valid() {
		return fmt.Errorf("%w: invalid source type %q (must be api, feed, or scrape)", ErrInvalidDescriptor, d.Type)
	}
	if d.Provider == "" {
		return fmt.Errorf("%w: provider is required", ErrInvalidDescriptor)
	}
	if err := ValidateURL(d.Endpoint); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if d.Type == SourceTypeScrape && d.Selector == "" {
		return fmt.Errorf("%w: selector is required for scrape sources", ErrInvalidDescriptor)
	}
	return nil
}

// CacheIdentifier builds a stable identifier from the descriptor fields
// that determine what a fetch would return. Two descriptors with the same
// identifier are interchangeable for caching purposes.
func (d SourceDescriptor) CacheIdentifier() string {
	switch d.Type {
	case SourceTypeAPI:
		// Params are sorted so map iteration order cannot change the key.
		keys := make([]string, 0, len(d.Params))
		for k := range d.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteString(d.Provider)
		b.WriteString("|")
		b.WriteString(d.Endpoint)
		for _, k := range keys {
			b.WriteString("|")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(d.Params[k])
		}
		return b.String()
	case SourceTypeScrape:
		return d.Endpoint + "|" + d.Selector
	default:
		return d.Endpoint
	}
}
