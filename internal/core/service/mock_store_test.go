package service

import (
	"context"
	"slices"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// Mock EntityStore
type mockStore struct {
	mu        sync.Mutex
	creators  map[string]domain.Creator
	items     []domain.Item
	images    []domain.ItemImage
	reviews   []domain.Review
	orders    []domain.Order
	lines     []domain.OrderItem
	err       error
	snapshots int

	lastFilter domain.ItemFilter
}

func newMockStore() *mockStore {
	return &mockStore{creators: make(map[string]domain.Creator)}
}

func (m *mockStore) FindItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	m.mu.Lock()
	m.lastFilter = filter
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Item
	for _, it := range m.items {
		if filter.Matches(it) {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, filter.Compare)
	return out, nil
}

func (m *mockStore) FindItemByID(ctx context.Context, id string) (*domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, it := range m.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) FindItemImages(ctx context.Context, itemID string) ([]domain.ItemImage, error) {
	var out []domain.ItemImage
	for _, img := range m.images {
		if img.ItemID == itemID {
			out = append(out, img)
		}
	}
	return out, m.err
}

func (m *mockStore) FindReviewsByItemID(ctx context.Context, itemID string) ([]domain.Review, error) {
	var out []domain.Review
	for _, r := range m.reviews {
		if r.ItemID == itemID {
			out = append(out, r)
		}
	}
	return out, m.err
}

func (m *mockStore) FindOrderItemsByItemIDs(ctx context.Context, itemIDs []string) ([]domain.OrderItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.OrderItem
	for _, l := range m.lines {
		if slices.Contains(itemIDs, l.ItemID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockStore) FindOrders(ctx context.Context, scope domain.OrderScope) ([]domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Order
	for _, o := range m.orders {
		if scope.Matches(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockStore) FindCreatorByID(ctx context.Context, id string) (*domain.Creator, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.creators[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockStore) ReadSnapshot(ctx context.Context, fn func(r port.EntityReader) error) error {
	m.mu.Lock()
	m.snapshots++
	m.mu.Unlock()
	return fn(m)
}
