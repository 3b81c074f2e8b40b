package moderation

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/subculture-collective/adserve/internal/apperr"
	redispkg "github.com/subculture-collective/adserve/pkg/redis"
)

const (
	wordListCacheKey = "obscene_words:list"
	wordListCacheTTL = 5 * time.Minute
)

// wordStore is the minimal ModerationStore dependency WordCache needs.
type wordStore interface {
	ListWords(ctx context.Context) ([]string, error)
}

// WordCache is the read-through cache over the obscene-word list described
// in spec §4.9: a cache miss loads from the store and populates the cache;
// admin mutations (AddWords/RemoveWords) invalidate it so the next read
// refreshes. Grounded on internal/cache.ActiveCache's same
// Redis-JSON-plus-explicit-invalidation shape, applied here to a single
// small list rather than a per-key projection.
type WordCache struct {
	redis *redispkg.Client
	store wordStore
}

// NewWordCache wires a WordCache to the shared Redis client and the
// backing ModerationStore.
func NewWordCache(redis *redispkg.Client, store wordStore) *WordCache {
	return &WordCache{redis: redis, store: store}
}

// List returns the obscene-word list, serving from cache on a hit and
// populating the cache on a miss.
func (w *WordCache) List(ctx context.Context) ([]string, error) {
	var words []string
	err := w.redis.GetJSON(ctx, wordListCacheKey, &words)
	if err == nil {
		return words, nil
	}
	if !errors.Is(err, goredis.Nil) {
		// Cache unavailable: fall through to the store rather than fail the
		// moderation check outright (spec §7: cache failures are retry-safe,
		// not fatal to the read path they support).
		return w.store.ListWords(ctx)
	}

	loaded, err := w.store.ListWords(ctx)
	if err != nil {
		return nil, err
	}
	if err := w.redis.SetJSON(ctx, wordListCacheKey, loaded, wordListCacheTTL); err != nil {
		return nil, apperr.Wrap(apperr.CodeCacheUnavailable, "populating obscene word cache", err)
	}
	return loaded, nil
}

// Invalidate evicts the cached list so the next List call reloads from the
// store, called after AddWords/RemoveWords (spec §4.9).
func (w *WordCache) Invalidate(ctx context.Context) error {
	if err := w.redis.Delete(ctx, wordListCacheKey); err != nil {
		return apperr.Wrap(apperr.CodeCacheUnavailable, "invalidating obscene word cache", err)
	}
	return nil
}
