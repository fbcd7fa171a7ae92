package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedupIndex_MarkThenSeen(t *testing.T) {
	d := NewDedupIndex(NewMemoryStore(), "harvester", time.Hour)
	ctx := context.Background()

	content := "Go 1.26 released with faster GC"

	assert.False(t, d.Seen(ctx, "ch1", content))
	d.Mark(ctx, "ch1", content)
	assert.True(t, d.Seen(ctx, "ch1", content))
}

func TestDedupIndex_ChannelScoped(t *testing.T) {
	d := NewDedupIndex(NewMemoryStore(), "harvester", time.Hour)
	ctx := context.Background()

	content := "shared content"
	d.Mark(ctx, "ch1", content)

	assert.True(t, d.Seen(ctx, "ch1", content))
	assert.False(t, d.Seen(ctx, "ch2", content), "dedup window is per channel")
}

func TestDedupIndex_WindowExpiry(t *testing.T) {
	store := NewMemoryStore()
	d := NewDedupIndex(store, "harvester", time.Hour)
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	d.Mark(ctx, "ch1", "content")
	assert.True(t, d.Seen(ctx, "ch1", "content"))

	store.SetClock(func() time.Time { return now.Add(2 * time.Hour) })
	assert.False(t, d.Seen(ctx, "ch1", "content"), "entries expire after the window")
}

func TestDedupIndex_FailOpen(t *testing.T) {
	d := NewDedupIndex(failingStore{}, "harvester", time.Hour)
	ctx := context.Background()

	// Backend errors read as "not seen" and Mark stays silent.
	assert.False(t, d.Seen(ctx, "ch1", "content"))
	assert.NotPanics(t, func() { d.Mark(ctx, "ch1", "content") })
}

func TestDedupIndex_Defaults(t *testing.T) {
	d := NewDedupIndex(NewMemoryStore(), "harvester", 0)
	assert.Equal(t, DefaultDedupWindow, d.Window())
}

func TestDedupIndex_KeyLayout(t *testing.T) {
	d := NewDedupIndex(NewMemoryStore(), "harvester", time.Hour)

	key := d.Key("ch1", "some content")
	assert.True(t, strings.HasPrefix(key, "harvester:dedup:ch1:"))
	assert.NotContains(t, key, "some content")
}
