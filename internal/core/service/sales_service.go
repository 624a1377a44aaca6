package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type SalesService struct {
	store  port.EntityStore
	logger *slog.Logger
}

func NewSalesService(store port.EntityStore, logger *slog.Logger) *SalesService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SalesService{store: store, logger: logger}
}

// CreatorSalesSummary recomputes a creator's sales from order lines and their
// price snapshots. Lines of every order status are counted.
//
// Lines are found through the creator's current items. Lines of an item that
// has since been deleted cannot be attributed to any creator and are not part
// of the summary; Gaps only lists lines the store returns for items that do
// not resolve.
func (s *SalesService) CreatorSalesSummary(ctx context.Context, creatorID string) (domain.CreatorSalesSummary, error) {
	var summary domain.CreatorSalesSummary

	err := s.store.ReadSnapshot(ctx, func(r port.EntityReader) error {
		creator, err := r.FindCreatorByID(ctx, creatorID)
		if err != nil {
			return fmt.Errorf("find creator %s: %w", creatorID, err)
		}

		items, err := r.FindItems(ctx, domain.ItemFilter{CreatorID: creatorID}.WithDefaults())
		if err != nil {
			return fmt.Errorf("find items of creator %s: %w", creatorID, err)
		}

		var lines []domain.OrderItem
		if len(items) > 0 {
			ids := make([]string, 0, len(items))
			for _, it := range items {
				ids = append(ids, it.ID)
			}
			lines, err = r.FindOrderItemsByItemIDs(ctx, ids)
			if err != nil {
				return fmt.Errorf("find order lines of creator %s: %w", creatorID, err)
			}
		}

		summary = s.aggregateLines(creator, items, lines)
		return nil
	})
	if err != nil {
		return domain.CreatorSalesSummary{}, storeError("creator sales summary", err)
	}

	return summary, nil
}

func (s *SalesService) aggregateLines(creator *domain.Creator, items []domain.Item, lines []domain.OrderItem) domain.CreatorSalesSummary {
	summary := domain.CreatorSalesSummary{
		CreatorID:          creator.ID,
		CreatorName:        creator.Name,
		TotalRevenue:       decimal.Zero,
		ItemsSoldByProduct: []domain.ProductSales{},
	}

	names := make(map[string]string, len(items))
	for _, it := range items {
		names[it.ID] = it.Name
	}

	byItem := make(map[string]*domain.ProductSales)
	orders := make(map[string]struct{})

	for _, line := range lines {
		name, ok := names[line.ItemID]
		if !ok {
			gap := domain.DataIntegrityGap{OrderItemID: line.ID, OrderID: line.OrderID, ItemID: line.ItemID}
			s.logger.Warn("skipping order line with unknown item",
				slog.String("creator_id", creator.ID),
				slog.String("order_item_id", line.ID),
				slog.String("order_id", line.OrderID),
				slog.String("item_id", line.ItemID))
			summary.Gaps = append(summary.Gaps, gap)
			continue
		}

		revenue := line.LineTotal()

		acc, ok := byItem[line.ItemID]
		if !ok {
			acc = &domain.ProductSales{ItemID: line.ItemID, ItemName: name, Revenue: decimal.Zero}
			byItem[line.ItemID] = acc
		}
		acc.Quantity += line.Quantity
		acc.Revenue = acc.Revenue.Add(revenue)

		summary.TotalItemsSold += line.Quantity
		summary.TotalRevenue = summary.TotalRevenue.Add(revenue)
		orders[line.OrderID] = struct{}{}
	}

	summary.TotalOrders = len(orders)

	for _, acc := range byItem {
		summary.ItemsSoldByProduct = append(summary.ItemsSoldByProduct, *acc)
	}
	slices.SortFunc(summary.ItemsSoldByProduct, func(a, b domain.ProductSales) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	})

	return summary
}

// OrderStatistics summarises the orders in scope from their registered
// totals. AverageOrderValue is 0 when the scope holds no orders.
func (s *SalesService) OrderStatistics(ctx context.Context, scope domain.OrderScope) (domain.OrderStatistics, error) {
	var orders []domain.Order

	err := s.store.ReadSnapshot(ctx, func(r port.EntityReader) error {
		if scope.CreatorID != "" {
			if _, err := r.FindCreatorByID(ctx, scope.CreatorID); err != nil {
				return fmt.Errorf("find creator %s: %w", scope.CreatorID, err)
			}
		}

		var err error
		orders, err = r.FindOrders(ctx, scope)
		if err != nil {
			return fmt.Errorf("find orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.OrderStatistics{}, storeError("order statistics", err)
	}

	return summarizeOrders(orders), nil
}

func summarizeOrders(orders []domain.Order) domain.OrderStatistics {
	stats := domain.OrderStatistics{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		OrdersByStatus:    make(map[string]int),
	}

	for _, o := range orders {
		stats.TotalOrders++
		stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalPrice)
		stats.OrdersByStatus[string(o.Status)]++
	}

	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue.DivRound(decimal.NewFromInt(int64(stats.TotalOrders)), 2)
	}
	return stats
}
