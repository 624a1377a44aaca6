package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS creators (
		id VARCHAR(64) PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		bio TEXT NULL,
		location VARCHAR(255) NULL,
		avatar_url TEXT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id VARCHAR(64) PRIMARY KEY,
		creator_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		category VARCHAR(100) NULL,
		price DECIMAL(12,2) NOT NULL,
		width_cm DOUBLE NULL,
		height_cm DOUBLE NULL,
		size VARCHAR(50) NULL,
		colors JSON NULL,
		main_image TEXT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_items_creator (creator_id)
	)`,
	`CREATE TABLE IF NOT EXISTS item_images (
		id VARCHAR(64) PRIMARY KEY,
		item_id VARCHAR(64) NOT NULL,
		url TEXT NOT NULL,
		position INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id VARCHAR(64) PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		item_id VARCHAR(64) NOT NULL,
		rating INT NOT NULL,
		comment TEXT NULL,
		created_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id VARCHAR(64) PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		total_price DECIMAL(12,2) NOT NULL,
		status VARCHAR(32) NOT NULL,
		created_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id VARCHAR(64) PRIMARY KEY,
		order_id VARCHAR(64) NOT NULL,
		item_id VARCHAR(64) NOT NULL,
		quantity INT NOT NULL,
		price_at_purchase DECIMAL(12,2) NOT NULL,
		INDEX idx_order_items_item (item_id)
	)`,
}

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/storefront?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	for _, stmt := range mysqlSchema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("schema setup failed: %v", err)
		}
	}

	return db
}

// seedMySQL inserts a small catalog under the "mt-" id prefix and registers
// cleanup of every row it wrote.
func seedMySQL(t *testing.T, db *sql.DB) {
	ctx := context.Background()
	cleanupMySQL(ctx, db)
	t.Cleanup(func() { cleanupMySQL(context.Background(), db) })

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO creators (id, user_id, name) VALUES (?, ?, ?)`, []any{"mt-c1", "mt-u1", "Kiln Works"}},
		{`INSERT INTO creators (id, user_id, name, bio) VALUES (?, ?, ?, ?)`, []any{"mt-c2", "mt-u2", "Loom Lane", "weaving"}},
		{`INSERT INTO items (id, creator_id, name, category, price, colors, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"mt-i1", "mt-c1", "Teapot", "mt-ceramics", "5.00", `["white"]`, base}},
		{`INSERT INTO items (id, creator_id, name, category, price, width_cm, colors, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{"mt-i2", "mt-c1", "Cup", "mt-ceramics", "20.00", 8.5, `["red","red"]`, base.Add(time.Hour)}},
		{`INSERT INTO items (id, creator_id, name, category, price, colors, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"mt-i3", "mt-c1", "Jug", "mt-ceramics", "35.00", `["red"]`, base.Add(2 * time.Hour)}},
		{`INSERT INTO orders (id, user_id, total_price, status, created_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{"mt-o1", "mt-buyer", "45.00", "paid", base}},
		{`INSERT INTO orders (id, user_id, total_price, status, created_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{"mt-o2", "mt-buyer", "12.00", "shipped", base.Add(time.Hour)}},
		{`INSERT INTO order_items (id, order_id, item_id, quantity, price_at_purchase) VALUES (?, ?, ?, ?, ?)`,
			[]any{"mt-l1", "mt-o1", "mt-i1", 1, "5.00"}},
		{`INSERT INTO order_items (id, order_id, item_id, quantity, price_at_purchase) VALUES (?, ?, ?, ?, ?)`,
			[]any{"mt-l2", "mt-o1", "mt-i2", 2, "20.00"}},
		{`INSERT INTO order_items (id, order_id, item_id, quantity, price_at_purchase) VALUES (?, ?, ?, ?, ?)`,
			[]any{"mt-l3", "mt-o2", "mt-i2", 1, "12.00"}},
		{`INSERT INTO item_images (id, item_id, url, position) VALUES (?, ?, ?, ?)`,
			[]any{"mt-img1", "mt-i2", "https://cdn.example/cup.jpg", 0}},
		{`INSERT INTO reviews (id, user_id, item_id, rating, created_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{"mt-r1", "mt-buyer", "mt-i2", 5, base}},
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s.query, s.args...); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func cleanupMySQL(ctx context.Context, db *sql.DB) {
	for _, table := range []string{"order_items", "orders", "reviews", "item_images", "items", "creators"} {
		db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id LIKE 'mt-%'`)
	}
}

func TestMySQL_FindItemsFilteredAndSorted(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()
	seedMySQL(t, db)

	adapter := NewMySQLAdapter(db)
	items, err := adapter.FindItems(context.Background(), domain.ItemFilter{
		Category:  "mt-ceramics",
		MinPrice:  decPtr("20"),
		SortBy:    domain.SortByPrice,
		SortOrder: domain.SortAsc,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mt-i2", "mt-i3"}, itemIDs(items))

	assert.True(t, items[0].Price.Equal(dec("20")))
	require.NotNil(t, items[0].WidthCm)
	assert.Equal(t, 8.5, *items[0].WidthCm)
	assert.Nil(t, items[0].HeightCm)
	assert.Equal(t, []string{"red", "red"}, items[0].Colors)
}

func TestMySQL_FindItemsColor(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()
	seedMySQL(t, db)

	adapter := NewMySQLAdapter(db)
	items, err := adapter.FindItems(context.Background(), domain.ItemFilter{Category: "mt-ceramics", Color: "red"})
	require.NoError(t, err)
	assert.Equal(t, []string{"mt-i3", "mt-i2"}, itemIDs(items))
}

func TestMySQL_FindCreatorByID(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()
	seedMySQL(t, db)

	adapter := NewMySQLAdapter(db)
	c, err := adapter.FindCreatorByID(context.Background(), "mt-c2")
	require.NoError(t, err)
	assert.Equal(t, "Loom Lane", c.Name)
	assert.Equal(t, "weaving", c.Bio)

	_, err = adapter.FindCreatorByID(context.Background(), "mt-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMySQL_ReadSnapshot(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()
	seedMySQL(t, db)

	adapter := NewMySQLAdapter(db)
	ctx := context.Background()

	var lines []domain.OrderItem
	var orders []domain.Order
	err := adapter.ReadSnapshot(ctx, func(r port.EntityReader) error {
		var err error
		lines, err = r.FindOrderItemsByItemIDs(ctx, []string{"mt-i1", "mt-i2"})
		if err != nil {
			return err
		}
		orders, err = r.FindOrders(ctx, domain.OrderScope{CreatorID: "mt-c1"})
		return err
	})
	require.NoError(t, err)

	require.Len(t, lines, 3)
	assert.True(t, lines[2].PriceAtPurchase.Equal(dec("12")))
	require.Len(t, orders, 2)
	assert.True(t, orders[0].TotalPrice.Equal(dec("45")))
}

func TestMySQL_ImagesAndReviews(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()
	seedMySQL(t, db)

	adapter := NewMySQLAdapter(db)
	images, err := adapter.FindItemImages(context.Background(), "mt-i2")
	require.NoError(t, err)
	require.Len(t, images, 1)

	reviews, err := adapter.FindReviewsByItemID(context.Background(), "mt-i2")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.Empty(t, reviews[0].Comment)
}

func TestMySQL_Unreachable(t *testing.T) {
	db, err := sql.Open("mysql", "root:root@tcp(127.0.0.1:1)/storefront?parseTime=true&timeout=200ms")
	require.NoError(t, err)
	defer db.Close()

	_, err = NewMySQLAdapter(db).FindItems(context.Background(), domain.ItemFilter{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
