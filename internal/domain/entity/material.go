package entity

import (
	"time"

	"github.com/google/uuid"
)

// SourceMaterial is the normalized unit of ingested content, produced by
// provider fetchers and owned by the ingestion orchestrator afterwards.
// Materials are never mutated after creation.
type SourceMaterial struct {
	ID          string            `json:"id"`
	SourceType  SourceType        `json:"source_type"`
	Provider    string            `json:"provider"`
	Title       string            `json:"title,omitempty"`
	Content     string            `json:"content"`
	URL         string            `json:"url,omitempty"`
	PublishedAt time.Time         `json:"published_at,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	FetchedAt   time.Time         `json:"fetched_at"`
}

// NewMaterialID returns a fresh unique identifier for a SourceMaterial.
func NewMaterialID() string {
	return uuid.NewString()
}
