package storage

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// MemoryStore keeps every entity in process memory. It backs dev mode, the
// stress tool and tests. Listings with equal sort keys keep insertion order.
type MemoryStore struct {
	mu sync.RWMutex
	memoryView
}

type memoryView struct {
	creators map[string]domain.Creator
	items    []domain.Item
	images   []domain.ItemImage
	reviews  []domain.Review
	orders   []domain.Order
	lines    []domain.OrderItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{memoryView: memoryView{creators: make(map[string]domain.Creator)}}
}

// AddCreator stores c, assigning an id when it has none, and returns it.
func (s *MemoryStore) AddCreator(c domain.Creator) domain.Creator {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.creators[c.ID] = c
	return c
}

func (s *MemoryStore) AddItem(it domain.Item) domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	it.Colors = slices.Clone(it.Colors)
	s.items = append(s.items, it)
	return it
}

func (s *MemoryStore) AddItemImage(img domain.ItemImage) domain.ItemImage {
	s.mu.Lock()
	defer s.mu.Unlock()

	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	s.images = append(s.images, img)
	return img
}

func (s *MemoryStore) AddReview(r domain.Review) domain.Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.reviews = append(s.reviews, r)
	return r
}

// AddOrder stores an order with its lines in one step, so readers never see
// an order without its lines.
func (s *MemoryStore) AddOrder(o domain.Order, lines ...domain.OrderItem) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	s.orders = append(s.orders, o)
	for _, l := range lines {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		l.OrderID = o.ID
		s.lines = append(s.lines, l)
	}
	return o
}

// DeleteItem removes an item but leaves its order lines in place, the way a
// store without cascading deletes would.
func (s *MemoryStore) DeleteItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.items, func(it domain.Item) bool { return it.ID == id })
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

func (s *MemoryStore) ReadSnapshot(ctx context.Context, fn func(r port.EntityReader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.memoryView)
}

func (s *MemoryStore) FindItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memoryView.FindItems(ctx, filter)
}

func (s *MemoryStore) FindItemByID(ctx context.Context, id string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memoryView.FindItemByID(ctx, id)
}

func (s *MemoryStore) FindItemImages(ctx context.Context, itemID string) ([]domain.ItemImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memoryView.FindItemImages(ctx, itemID)
}

func (s *MemoryStore) FindReviewsByItemID(ctx context.Context, itemID string) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memoryView.FindReviewsByItemID(ctx, itemID)
}

func (s *MemoryStore) FindOrderItemsByItemIDs(ctx context.Context, itemIDs []string) ([]domain.OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memoryView.FindOrderItemsByItemIDs(ctx, itemIDs)
}

func (s *MemoryStore) FindOrders(ctx context.Context, scope domain.OrderScope) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memoryView.FindOrders(ctx, scope)
}

func (s *MemoryStore) FindCreatorByID(ctx context.Context, id string) (*domain.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memoryView.FindCreatorByID(ctx, id)
}

// memoryView methods assume the caller holds the store's read lock.

func (v *memoryView) FindItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("find items", err)
	}
	filter = filter.WithDefaults()
	if _, ok := sortColumns[filter.SortBy]; !ok {
		return nil, &domain.FilterError{Field: "sortBy", Reason: "unknown sort field"}
	}

	items := []domain.Item{}
	for _, it := range v.items {
		if filter.Matches(it) {
			it.Colors = slices.Clone(it.Colors)
			items = append(items, it)
		}
	}
	slices.SortStableFunc(items, filter.Compare)
	return items, nil
}

func (v *memoryView) FindItemByID(ctx context.Context, id string) (*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("find item", err)
	}
	for _, it := range v.items {
		if it.ID == id {
			it.Colors = slices.Clone(it.Colors)
			return &it, nil
		}
	}
	return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
}

func (v *memoryView) FindItemImages(ctx context.Context, itemID string) ([]domain.ItemImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("find item images", err)
	}
	images := []domain.ItemImage{}
	for _, img := range v.images {
		if img.ItemID == itemID {
			images = append(images, img)
		}
	}
	slices.SortStableFunc(images, func(a, b domain.ItemImage) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return images, nil
}

func (v *memoryView) FindReviewsByItemID(ctx context.Context, itemID string) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("find reviews", err)
	}
	var reviews []domain.Review
	for _, r := range v.reviews {
		if r.ItemID == itemID {
			reviews = append(reviews, r)
		}
	}
	return reviews, nil
}

func (v *memoryView) FindOrderItemsByItemIDs(ctx context.Context, itemIDs []string) ([]domain.OrderItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("find order items", err)
	}
	wanted := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}

	lines := []domain.OrderItem{}
	for _, l := range v.lines {
		if _, ok := wanted[l.ItemID]; ok {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

func (v *memoryView) FindOrders(ctx context.Context, scope domain.OrderScope) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("find orders", err)
	}

	var creatorOrders map[string]struct{}
	if scope.CreatorID != "" {
		owned := make(map[string]struct{})
		for _, it := range v.items {
			if it.CreatorID == scope.CreatorID {
				owned[it.ID] = struct{}{}
			}
		}
		creatorOrders = make(map[string]struct{})
		for _, l := range v.lines {
			if _, ok := owned[l.ItemID]; ok {
				creatorOrders[l.OrderID] = struct{}{}
			}
		}
	}

	orders := []domain.Order{}
	for _, o := range v.orders {
		if !scope.Matches(o) {
			continue
		}
		if creatorOrders != nil {
			if _, ok := creatorOrders[o.ID]; !ok {
				continue
			}
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (v *memoryView) FindCreatorByID(ctx context.Context, id string) (*domain.Creator, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("find creator", err)
	}
	c, ok := v.creators[id]
	if !ok {
		return nil, fmt.Errorf("creator %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}
