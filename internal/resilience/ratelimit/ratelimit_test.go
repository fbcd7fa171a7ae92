package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAcquire_WithinBurst(t *testing.T) {
	r := NewRegistry(60, nil) // 60 rpm, burst 60

	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := r.Acquire(context.Background(), "provider-a"); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("acquires within burst should not block, took %v", elapsed)
	}
}

func TestAcquire_BlocksWhenExhausted(t *testing.T) {
	r := NewRegistry(6, nil) // burst 6, refill 0.1 tokens/s

	for i := 0; i < 6; i++ {
		if err := r.Acquire(context.Background(), "provider-a"); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}

	// Bucket is empty; the next acquire must wait for refill, so a short
	// deadline should expire first.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Acquire(ctx, "provider-a")
	if err == nil {
		t.Fatal("expected context deadline error, got nil")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestAcquire_ProviderIsolation(t *testing.T) {
	r := NewRegistry(6, nil)

	for i := 0; i < 6; i++ {
		if err := r.Acquire(context.Background(), "busy"); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}

	// Exhausting "busy" must not affect "idle".
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := r.Acquire(ctx, "idle"); err != nil {
		t.Errorf("expected idle provider unaffected, got %v", err)
	}
}

func TestAcquire_PerProviderOverride(t *testing.T) {
	r := NewRegistry(6, map[string]float64{"fast": 6000})

	// The override grants a much larger burst; 100 acquires should pass
	// immediately where the default would block after 6.
	for i := 0; i < 100; i++ {
		if err := r.Acquire(context.Background(), "fast"); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
}

func TestAcquire_ConcurrentBounded(t *testing.T) {
	r := NewRegistry(12, nil) // burst 12

	var granted atomic.Int64
	var wg sync.WaitGroup
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Acquire(ctx, "provider-a"); err == nil {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	// Within 200ms at 0.2 tokens/s refill, no more than the burst can be
	// granted (plus one for rounding slack).
	if g := granted.Load(); g > 13 {
		t.Errorf("granted %d acquires, want at most burst capacity", g)
	}
}

func TestRegistry_Len(t *testing.T) {
	r := NewRegistry(60, nil)
	_ = r.Acquire(context.Background(), "a")
	_ = r.Acquire(context.Background(), "b")
	_ = r.Acquire(context.Background(), "a")

	if r.Len() != 2 {
		t.Errorf("expected 2 limiters, got %d", r.Len())
	}
}
