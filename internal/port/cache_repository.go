package port

import (
	"context"
	"time"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CatalogCache interface {
	// GetItems returns a cached listing, ok is false on a miss
	GetItems(ctx context.Context, key string) (items []domain.Item, ok bool, err error)

	// SetItems stores a listing under key for ttl
	SetItems(ctx context.Context, key string, items []domain.Item, ttl time.Duration) error
}
