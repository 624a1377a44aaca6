package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	catalogKeyPrefix = "catalog:items:"
	scanBatchSize    = 100
)

// RedisAdapter is the catalog cache backend. Listings are stored as JSON under
// catalogKeyPrefix + key.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetItems(ctx context.Context, key string) ([]domain.Item, bool, error) {
	data, err := r.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, fmt.Errorf("decode cached listing: %w", err)
	}
	return items, true, nil
}

func (r *RedisAdapter) SetItems(ctx context.Context, key string, items []domain.Item, ttl time.Duration) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	return r.client.Set(ctx, catalogKeyPrefix+key, data, ttl).Err()
}

// InvalidateCatalog drops every cached listing and returns how many keys were
// removed. The server calls it on startup.
func (r *RedisAdapter) InvalidateCatalog(ctx context.Context) (int, error) {
	removed := 0
	iter := r.client.Scan(ctx, 0, catalogKeyPrefix+"*", scanBatchSize).Iterator()

	batch := make([]string, 0, scanBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.client.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	if err := flush(); err != nil {
		return removed, err
	}
	return removed, nil
}
