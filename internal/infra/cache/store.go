// Package cache provides the TTL key-value storage layer used for response
// caching and content deduplication. The backend is deliberately a narrow
// boundary: any Redis-compatible store could sit behind it, and the bundled
// implementations are an embedded bbolt store and an in-memory store.
//
// Callers above this package treat every backend error as "operation had
// no effect". The cache must never become a reliability dependency of the
// ingestion path.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Store is the TTL-capable key-value backend boundary.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// SetWithTTL stores value under key, expiring after ttl.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases backend resources.
	Close() error
}

// hashKey returns a fixed-length hex digest of s for use in cache and
// dedup keys, keeping keys bounded regardless of identifier length.
func hashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
