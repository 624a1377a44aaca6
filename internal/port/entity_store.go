package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

// EntityReader is the read side of the storefront's entity store. Lookups of a
// single entity return domain.ErrNotFound when it does not exist; driver and
// connectivity failures are wrapped with domain.ErrStoreUnavailable.
type EntityReader interface {
	// FindItems returns every item matching the filter, sorted by its sort settings
	FindItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)

	FindItemByID(ctx context.Context, id string) (*domain.Item, error)

	// FindItemImages returns the gallery of an item ordered by position
	FindItemImages(ctx context.Context, itemID string) ([]domain.ItemImage, error)

	FindReviewsByItemID(ctx context.Context, itemID string) ([]domain.Review, error)

	// FindOrderItemsByItemIDs returns all order lines for the given items, any order status
	FindOrderItemsByItemIDs(ctx context.Context, itemIDs []string) ([]domain.OrderItem, error)

	// FindOrders returns the orders inside scope
	FindOrders(ctx context.Context, scope domain.OrderScope) ([]domain.Order, error)

	FindCreatorByID(ctx context.Context, id string) (*domain.Creator, error)
}

type EntityStore interface {
	EntityReader

	// ReadSnapshot runs fn against a read-only, consistent view of the store
	ReadSnapshot(ctx context.Context, fn func(r EntityReader) error) error
}
