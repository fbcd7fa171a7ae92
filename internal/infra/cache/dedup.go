package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultDedupWindow is how long identical content is suppressed from
// re-delivery to the same channel.
const DefaultDedupWindow = 48 * time.Hour

// DedupIndex records which content a channel has already received, so the
// orchestrator does not re-emit identical items inside the dedup window.
//
// Same fail-open contract as ResponseCache: a backend error on Seen reads
// as "not seen" (over-delivery beats losing content) and Mark failures are
// swallowed.
type DedupIndex struct {
	store     Store
	namespace string
	window    time.Duration
}

// NewDedupIndex creates a dedup index over the given store. A non-positive
// window falls back to DefaultDedupWindow.
func NewDedupIndex(store Store, namespace string, window time.Duration) *DedupIndex {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &DedupIndex{store: store, namespace: namespace, window: window}
}

// Key builds the storage key for a channel and content.
// Layout: {namespace}:dedup:{channel}:{sha256(content)}.
func (d *DedupIndex) Key(channelID, content string) string {
	return fmt.Sprintf("%s:dedup:%s:%s", d.namespace, channelID, hashKey(content))
}

// Seen reports whether the channel already received this content inside
// the dedup window. Backend errors read as false.
func (d *DedupIndex) Seen(ctx context.Context, channelID, content string) bool {
	found, err := d.store.Exists(ctx, d.Key(channelID, content))
	if err != nil {
		slog.Warn("dedup check failed, treating as new",
			slog.String("channel", channelID),
			slog.Any("error", err))
		return false
	}
	return found
}

// Mark records the content as delivered to the channel. Failures are
// logged and swallowed.
func (d *DedupIndex) Mark(ctx context.Context, channelID, content string) {
	key := d.Key(channelID, content)
	if err := d.store.SetWithTTL(ctx, key, []byte{1}, d.window); err != nil {
		slog.Warn("dedup mark failed, ignoring",
			slog.String("channel", channelID),
			slog.Any("error", err))
	}
}

// Window returns the configured dedup window.
func (d *DedupIndex) Window() time.Duration {
	return d.window
}
