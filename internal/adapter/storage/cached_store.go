package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// CachedStore puts a read-through cache in front of FindItems. Every other
// read, and everything inside ReadSnapshot, goes straight to the wrapped store,
// so aggregations never see cached data. Cache failures are logged and the
// request falls through to the store.
//
// Listings may be up to ttl old. Anything that writes items must flush the
// catalog:items:* keys (RedisAdapter.InvalidateCatalog) after committing.
type CachedStore struct {
	port.EntityStore
	cache  port.CatalogCache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedStore(store port.EntityStore, cache port.CatalogCache, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{EntityStore: store, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedStore) FindItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	key := itemsCacheKey(filter)

	items, ok, err := c.cache.GetItems(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("catalog cache read failed, continuing with store", slog.String("key", key), slog.Any("error", err))
	case ok:
		return items, nil
	}

	items, err = c.EntityStore.FindItems(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetItems(ctx, key, items, c.ttl); err != nil {
		c.logger.Warn("catalog cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return items, nil
}

// itemsCacheKey is canonical: filters that select and sort the same way map
// to the same key.
func itemsCacheKey(f domain.ItemFilter) string {
	f = f.WithDefaults()

	parts := []string{
		"cat=" + f.Category,
		"creator=" + f.CreatorID,
		"min=" + boundKey(f.MinPrice),
		"max=" + boundKey(f.MaxPrice),
		"color=" + f.Color,
		"size=" + f.Size,
		fmt.Sprintf("sort=%s:%s", f.SortBy, f.SortOrder),
	}
	return strings.Join(parts, "|")
}

func boundKey(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
