package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
)

func seedSalesMemoryStore() *storage.MemoryStore {
	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	s := storage.NewMemoryStore()
	s.AddCreator(domain.Creator{ID: "C", UserID: "u-c", Name: "Clay & Co"})
	s.AddItem(domain.Item{ID: "I1", CreatorID: "C", Name: "Cup", Price: price("10.00"), CreatedAt: base})
	s.AddItem(domain.Item{ID: "I2", CreatorID: "C", Name: "Plate", Price: price("25.00"), CreatedAt: base})
	s.AddOrder(domain.Order{ID: "O1", UserID: "b1", TotalPrice: price("45.00"), Status: domain.OrderStatusPaid, CreatedAt: base},
		domain.OrderItem{ID: "L1", ItemID: "I1", Quantity: 2, PriceAtPurchase: price("10.00")},
		domain.OrderItem{ID: "L2", ItemID: "I2", Quantity: 1, PriceAtPurchase: price("25.00")},
	)
	return s
}

func TestCreatorSalesSummary_CancelledOrdersCount(t *testing.T) {
	store := seedSalesMemoryStore()
	store.AddOrder(domain.Order{ID: "O2", UserID: "b2", TotalPrice: price("30.00"), Status: domain.OrderStatusCancelled, CreatedAt: time.Now()},
		domain.OrderItem{ID: "L3", ItemID: "I1", Quantity: 3, PriceAtPurchase: price("10.00")},
	)
	svc := NewSalesService(store, nil)

	summary, err := svc.CreatorSalesSummary(context.Background(), "C")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalOrders)
	assert.Equal(t, 6, summary.TotalItemsSold)
	assert.True(t, summary.TotalRevenue.Equal(price("75.00")), "got %s", summary.TotalRevenue)

	stats, err := svc.OrderStatistics(context.Background(), domain.OrderScope{Status: string(domain.OrderStatusCancelled)})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalOrders)
}

// Lines of a deleted item can no longer be tied to a creator: they drop out
// of the summary and are not reported as gaps.
func TestCreatorSalesSummary_DeletedItemLinesAreNotAttributed(t *testing.T) {
	store := seedSalesMemoryStore()
	require.True(t, store.DeleteItem("I2"))

	var logs bytes.Buffer
	svc := NewSalesService(store, slog.New(slog.NewTextHandler(&logs, nil)))

	summary, err := svc.CreatorSalesSummary(context.Background(), "C")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalOrders)
	assert.Equal(t, 2, summary.TotalItemsSold)
	assert.True(t, summary.TotalRevenue.Equal(price("20.00")), "got %s", summary.TotalRevenue)
	require.Len(t, summary.ItemsSoldByProduct, 1)
	assert.Equal(t, "I1", summary.ItemsSoldByProduct[0].ItemID)
	assert.Empty(t, summary.Gaps)
	assert.Empty(t, logs.String())

	// the order keeps its registered total
	stats, err := svc.OrderStatistics(context.Background(), domain.OrderScope{})
	require.NoError(t, err)
	assert.True(t, stats.TotalRevenue.Equal(price("45.00")))
}

func TestCreatorSalesSummary_FilterErrorIsNotUnavailable(t *testing.T) {
	store := salesFixture()
	store.err = &domain.FilterError{Field: "sortBy", Reason: "unknown sort field"}
	svc := NewSalesService(store, nil)

	_, err := svc.CreatorSalesSummary(context.Background(), "C")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)

	var fe *domain.FilterError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "sortBy", fe.Field)
}
