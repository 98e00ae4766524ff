package cache

import (
	"context"
	"fmt"
	"path"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"
)

// DefaultMemorySize bounds the in-process store when no size is configured
const DefaultMemorySize = 1024

// MemoryStore is an in-process Store built on an expirable LRU. The LRU has
// a single TTL for all entries, so the ttl passed to Set can only shorten
// an entry's life, never extend it past the store TTL. Per-entry expiry
// follows the store's clock; the LRU's own TTL always uses wall time.
type MemoryStore struct {
	cache *lru.LRU[string, memoryEntry]
	clock clockwork.Clock
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source used for per-entry expiry
func WithClock(clock clockwork.Clock) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates a store holding up to size entries for at most ttl
func NewMemoryStore(size int, ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	if size <= 0 {
		size = DefaultMemorySize
	}
	s := &MemoryStore{
		cache: lru.NewLRU[string, memoryEntry](size, nil, ttl),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	entry, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !s.clock.Now().Before(entry.expiresAt) {
		s.cache.Remove(key)
		return nil, false, nil
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, true, nil
}

// Set stores a copy of value under key
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expiresAt = s.clock.Now().Add(ttl)
	}
	s.cache.Add(key, entry)
	return nil
}

// DeletePattern removes keys matching pattern (path.Match syntax)
func (s *MemoryStore) DeletePattern(ctx context.Context, pattern string) error {
	if pattern == "" {
		return ErrInvalidKey
	}
	for _, key := range s.cache.Keys() {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if matched {
			s.cache.Remove(key)
		}
	}
	return nil
}

// Len returns the number of cached entries
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

// Close empties the store
func (s *MemoryStore) Close() error {
	s.cache.Purge()
	return nil
}
