package books

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/readify/readify/pkg/apperrors"
	"github.com/readify/readify/pkg/cache"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultCacheTTL is how long a cached catalog listing lives
	DefaultCacheTTL = 24 * time.Hour

	cacheName       = "books_all"
	allBooksPattern = "*-books-all"
)

// MsgNoBooksFound is returned when the catalog is empty
const MsgNoBooksFound = "No books found!"

// Cache is the read-through cache for the full catalog listing. Entries are
// keyed per caller and only expire by TTL; concurrent misses for the same
// key may both load and both write.
type Cache struct {
	store    cache.Store
	repo     Repository
	ttl      time.Duration
	recorder CacheRecorder
	log      *logrus.Logger
}

// NewCache creates a catalog cache over store. A nil recorder disables metrics.
func NewCache(store cache.Store, repo Repository, ttl time.Duration, recorder CacheRecorder, log *logrus.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logrus.New()
	}
	return &Cache{
		store:    store,
		repo:     repo,
		ttl:      ttl,
		recorder: recorder,
		log:      log,
	}
}

// CacheKey returns the listing key for a caller
func CacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s-books-all", userID)
}

// GetAllBooksForCaller returns the catalog, served from the caller's cache
// entry when present and loaded from the repository otherwise
func (c *Cache) GetAllBooksForCaller(ctx context.Context, callerID uuid.UUID) ([]Book, error) {
	if callerID == uuid.Nil {
		return nil, apperrors.Unauthenticated("No login or authentication was made.")
	}

	key := CacheKey(callerID)
	logger := c.log.WithField("key", key)

	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.FromStore(ctxErr)
		}
		logger.WithError(err).Warn("book cache read failed, loading from store")
	}
	if ok {
		var cached []Book
		if err := json.Unmarshal(data, &cached); err == nil {
			c.recordHit()
			return cached, nil
		}
		logger.Warn("discarding undecodable book cache entry")
	}
	c.recordMiss()

	list, err := c.repo.GetAll(ctx)
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	if len(list) == 0 {
		return nil, apperrors.NotFound(MsgNoBooksFound)
	}

	encoded, err := json.Marshal(list)
	if err != nil {
		logger.WithError(err).Error("failed to encode book list")
		return list, nil
	}
	if err := c.store.Set(ctx, key, encoded, c.ttl); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.FromStore(ctxErr)
		}
		logger.WithError(err).Warn("book cache write failed")
	}

	return list, nil
}

// InvalidateAll drops every caller's listing
func (c *Cache) InvalidateAll(ctx context.Context) error {
	if err := c.store.DeletePattern(ctx, allBooksPattern); err != nil {
		return fmt.Errorf("failed to invalidate book listings: %w", err)
	}
	return nil
}

func (c *Cache) recordHit() {
	if c.recorder != nil {
		c.recorder.RecordCacheHit(cacheName)
	}
}

func (c *Cache) recordMiss() {
	if c.recorder != nil {
		c.recorder.RecordCacheMiss(cacheName)
	}
}
