package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidKey is returned for an empty key or pattern
var ErrInvalidKey = errors.New("cache key cannot be empty")

// Store is a byte-oriented key/value cache with per-entry expiry.
// A miss is reported as (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePattern removes every key matching a glob-style pattern
	DeletePattern(ctx context.Context, pattern string) error
	Close() error
}
