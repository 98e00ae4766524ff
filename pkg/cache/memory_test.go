package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := NewMemoryStore(10, time.Hour)
	ctx := context.Background()

	value := []byte("hello")
	if err := store.Set(ctx, "k", value, time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[0] = 'j'

	data, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Expected hit, got ok=%v err=%v", ok, err)
	}
	if string(data) != "hello" {
		t.Errorf("Expected stored copy to be unaffected, got %q", data)
	}
}

func TestMemoryStore_Miss(t *testing.T) {
	store := NewMemoryStore(10, time.Hour)

	_, ok, err := store.Get(context.Background(), "nothing")
	if err != nil || ok {
		t.Errorf("Expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryStore_PerEntryTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(10, time.Hour, WithClock(clock))
	ctx := context.Background()

	if err := store.Set(ctx, "short", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(59 * time.Second)
	if _, ok, _ := store.Get(ctx, "short"); !ok {
		t.Fatal("Expected entry to live until its TTL")
	}

	clock.Advance(time.Second)
	if _, ok, _ := store.Get(ctx, "short"); ok {
		t.Error("Expected entry to expire at its TTL")
	}
	if store.Len() != 0 {
		t.Errorf("Expected expired entry to be dropped, got %d entries", store.Len())
	}
}

func TestMemoryStore_NoTTLIgnoresClock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(10, time.Hour, WithClock(clock))
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	clock.Advance(30 * 24 * time.Hour)

	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Error("Expected an entry without its own TTL to stay until the store TTL")
	}
}

func TestMemoryStore_Eviction(t *testing.T) {
	store := NewMemoryStore(2, time.Hour)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if store.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", store.Len())
	}
	if _, ok, _ := store.Get(ctx, "a"); ok {
		t.Error("Expected oldest entry to be evicted")
	}
}

func TestMemoryStore_DeletePattern(t *testing.T) {
	store := NewMemoryStore(10, time.Hour)
	ctx := context.Background()

	for _, k := range []string{"a-books-all", "b-books-all", "other"} {
		if err := store.Set(ctx, k, []byte("x"), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := store.DeletePattern(ctx, "*-books-all"); err != nil {
		t.Fatalf("DeletePattern failed: %v", err)
	}

	if store.Len() != 1 {
		t.Errorf("Expected 1 entry left, got %d", store.Len())
	}
	if _, ok, _ := store.Get(ctx, "other"); !ok {
		t.Error("Expected unrelated key to survive")
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := NewMemoryStore(10, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := store.Get(ctx, "k"); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if err := store.Set(ctx, "k", nil, 0); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestMemoryStore_Close(t *testing.T) {
	store := NewMemoryStore(10, time.Hour)
	_ = store.Set(context.Background(), "k", []byte("v"), 0)

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if store.Len() != 0 {
		t.Error("Expected store to be empty after Close")
	}
}
