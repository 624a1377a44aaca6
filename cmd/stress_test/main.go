package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const (
	creatorCount     = 8
	itemsPerCreator  = 12
	seedOrders       = 500
	readerCount      = 32
	readsPerReader   = 200
	writerCount      = 4
	ordersPerWriter  = 100
	maxLinesPerOrder = 4
)

func main() {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	creatorIDs, items := seedCatalog(store)
	for i := 0; i < seedOrders; i++ {
		placeRandomOrder(store, items)
	}
	log.Printf("seeded %d creators, %d items, %d orders", len(creatorIDs), len(items), seedOrders)

	sales := service.NewSalesService(store, nil)

	var reads, inconsistent, failed atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	// Writers keep placing orders while readers aggregate
	for w := 0; w < writerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < ordersPerWriter; i++ {
				placeRandomOrder(store, items)
			}
		}()
	}

	for r := 0; r < readerCount; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < readsPerReader; i++ {
				creatorID := creatorIDs[(reader+i)%len(creatorIDs)]
				summary, err := sales.CreatorSalesSummary(ctx, creatorID)
				if err != nil {
					failed.Add(1)
					continue
				}
				reads.Add(1)
				if !selfConsistent(summary) {
					inconsistent.Add(1)
				}
			}
		}(r)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Once writes stop, per-creator revenue must add up to the whole ledger
	lineTotal, err := ledgerTotal(ctx, store, items)
	if err != nil {
		log.Fatalf("failed to read ledger: %v", err)
	}
	creatorTotal := decimal.Zero
	for _, id := range creatorIDs {
		summary, err := sales.CreatorSalesSummary(ctx, id)
		if err != nil {
			log.Fatalf("failed to summarise creator %s: %v", id, err)
		}
		creatorTotal = creatorTotal.Add(summary.TotalRevenue)
	}

	stats, err := sales.OrderStatistics(ctx, domain.OrderScope{})
	if err != nil {
		log.Fatalf("failed to compute order statistics: %v", err)
	}
	expectedOrders := seedOrders + writerCount*ordersPerWriter

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Readers:          %d x %d\n", readerCount, readsPerReader)
	fmt.Printf("Writers:          %d x %d\n", writerCount, ordersPerWriter)
	fmt.Printf("Summaries:        %d\n", reads.Load())
	fmt.Printf("Failed:           %d\n", failed.Load())
	fmt.Printf("Inconsistent:     %d\n", inconsistent.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if failed.Load() == 0 && inconsistent.Load() == 0 {
		fmt.Println("PASS: every summary was internally consistent")
	} else {
		fmt.Printf("FAIL: %d failed, %d inconsistent summaries\n", failed.Load(), inconsistent.Load())
	}

	if creatorTotal.Equal(lineTotal) {
		fmt.Printf("PASS: creator revenue adds up to %s\n", lineTotal.StringFixed(2))
	} else {
		fmt.Printf("FAIL: creators sum to %s, ledger holds %s\n", creatorTotal.StringFixed(2), lineTotal.StringFixed(2))
	}

	if stats.TotalOrders == expectedOrders && stats.TotalRevenue.Equal(lineTotal) {
		fmt.Printf("PASS: %d orders, revenue %s\n", stats.TotalOrders, stats.TotalRevenue.StringFixed(2))
	} else {
		fmt.Printf("FAIL: expected %d orders totalling %s, got %d totalling %s\n",
			expectedOrders, lineTotal.StringFixed(2), stats.TotalOrders, stats.TotalRevenue.StringFixed(2))
	}
}

func seedCatalog(store *storage.MemoryStore) ([]string, []domain.Item) {
	categories := []string{"ceramics", "textiles", "jewelry", "prints"}
	colors := []string{"red", "blue", "green", "ochre"}
	now := time.Now().UTC()

	var creatorIDs []string
	var items []domain.Item
	for c := 0; c < creatorCount; c++ {
		creator := store.AddCreator(domain.Creator{
			ID:     uuid.NewString(),
			UserID: uuid.NewString(),
			Name:   fmt.Sprintf("Maker %d", c+1),
		})
		creatorIDs = append(creatorIDs, creator.ID)

		for i := 0; i < itemsPerCreator; i++ {
			items = append(items, store.AddItem(domain.Item{
				CreatorID: creator.ID,
				Name:      fmt.Sprintf("Piece %d-%d", c+1, i+1),
				Category:  categories[i%len(categories)],
				Price:     decimal.New(int64(rand.Intn(9900)+100), -2),
				Colors:    []string{colors[rand.Intn(len(colors))]},
				CreatedAt: now.Add(-time.Duration(i) * time.Hour),
			}))
		}
	}
	return creatorIDs, items
}

// placeRandomOrder writes an order whose total equals the sum of its lines,
// at prices that drift from the current listing price.
func placeRandomOrder(store *storage.MemoryStore, items []domain.Item) {
	n := rand.Intn(maxLinesPerOrder) + 1
	lines := make([]domain.OrderItem, 0, n)
	total := decimal.Zero
	for i := 0; i < n; i++ {
		it := items[rand.Intn(len(items))]
		qty := rand.Intn(3) + 1
		price := it.Price.Add(decimal.New(int64(rand.Intn(200)-100), -2)).Abs()
		line := domain.OrderItem{ItemID: it.ID, Quantity: qty, PriceAtPurchase: price}
		lines = append(lines, line)
		total = total.Add(line.LineTotal())
	}

	statuses := []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusPaid, domain.OrderStatusShipped}
	store.AddOrder(domain.Order{
		ID:         uuid.NewString(),
		UserID:     uuid.NewString(),
		TotalPrice: total,
		Status:     statuses[rand.Intn(len(statuses))],
		CreatedAt:  time.Now().UTC(),
	}, lines...)
}

func selfConsistent(s domain.CreatorSalesSummary) bool {
	revenue := decimal.Zero
	qty := 0
	for _, p := range s.ItemsSoldByProduct {
		revenue = revenue.Add(p.Revenue)
		qty += p.Quantity
	}
	return revenue.Equal(s.TotalRevenue) && qty == s.TotalItemsSold
}

func ledgerTotal(ctx context.Context, store *storage.MemoryStore, items []domain.Item) (decimal.Decimal, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	lines, err := store.FindOrderItemsByItemIDs(ctx, ids)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total, nil
}
