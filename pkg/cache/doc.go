// Package cache provides the key/value stores behind Readify's read-through
// caches.
//
// # Backends
//
//   - RedisStore: shared across replicas, keys expire through Redis TTLs and
//     pattern deletes use SCAN + DEL
//   - MemoryStore: single-process expirable LRU used when no Redis URL is
//     configured
//
// Both satisfy Store:
//
//	var store cache.Store = cache.NewMemoryStore(1024, 24*time.Hour)
//	if cfg.Cache.RedisURL != "" {
//		store, err = cache.NewRedisStore(ctx, cache.RedisConfig{URL: cfg.Cache.RedisURL})
//	}
//
// MemoryStore takes WithClock so per-entry expiry can be driven by a fake
// clock in tests.
//
// Values are opaque bytes; callers own the encoding.
package cache
