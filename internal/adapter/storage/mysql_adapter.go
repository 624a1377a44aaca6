package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MySQLAdapter reads the storefront schema from MySQL. The DSN must set
// parseTime=true. Listings with equal sort keys are ordered by ascending id.
type MySQLAdapter struct {
	mysqlReader
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{mysqlReader: mysqlReader{q: db}, db: db}
}

// ReadSnapshot runs fn inside a read-only REPEATABLE READ transaction so every
// query in fn sees the same committed state.
func (m *MySQLAdapter) ReadSnapshot(ctx context.Context, fn func(r port.EntityReader) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return unavailable("begin tx", err)
	}
	defer tx.Rollback()

	if err := fn(mysqlReader{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit tx", err)
	}
	return nil
}

type mysqlReader struct {
	q queryer
}

func (m mysqlReader) FindItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	query, args, err := buildItemQuery(mysqlDialect, filter)
	if err != nil {
		return nil, err
	}

	rows, err := m.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("query items", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		it, err := scanMySQLItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate items", err)
	}

	return items, nil
}

func (m mysqlReader) FindItemByID(ctx context.Context, id string) (*domain.Item, error) {
	row := m.q.QueryRowContext(ctx, "SELECT "+mysqlDialect.itemColumns+" FROM items WHERE id = ?", id)

	it, err := scanMySQLItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (m mysqlReader) FindItemImages(ctx context.Context, itemID string) ([]domain.ItemImage, error) {
	rows, err := m.q.QueryContext(ctx, `
		SELECT id, item_id, url, position
		FROM item_images WHERE item_id = ?
		ORDER BY position, id`, itemID)
	if err != nil {
		return nil, unavailable("query item images", err)
	}
	defer rows.Close()

	images := []domain.ItemImage{}
	for rows.Next() {
		var img domain.ItemImage
		if err := rows.Scan(&img.ID, &img.ItemID, &img.URL, &img.Position); err != nil {
			return nil, unavailable("scan item image", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate item images", err)
	}

	return images, nil
}

func (m mysqlReader) FindReviewsByItemID(ctx context.Context, itemID string) ([]domain.Review, error) {
	rows, err := m.q.QueryContext(ctx, `
		SELECT id, user_id, item_id, rating, comment, created_at
		FROM reviews WHERE item_id = ?
		ORDER BY created_at, id`, itemID)
	if err != nil {
		return nil, unavailable("query reviews", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var r domain.Review
		var comment sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.ItemID, &r.Rating, &comment, &r.CreatedAt); err != nil {
			return nil, unavailable("scan review", err)
		}
		r.Comment = comment.String
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate reviews", err)
	}

	return reviews, nil
}

func (m mysqlReader) FindOrderItemsByItemIDs(ctx context.Context, itemIDs []string) ([]domain.OrderItem, error) {
	if len(itemIDs) == 0 {
		return []domain.OrderItem{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
	args := make([]any, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}

	rows, err := m.q.QueryContext(ctx, `
		SELECT id, order_id, item_id, quantity, price_at_purchase
		FROM order_items WHERE item_id IN (`+placeholders+`)
		ORDER BY order_id, id`, args...)
	if err != nil {
		return nil, unavailable("query order items", err)
	}
	defer rows.Close()

	lines := []domain.OrderItem{}
	for rows.Next() {
		var l domain.OrderItem
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Quantity, &l.PriceAtPurchase); err != nil {
			return nil, unavailable("scan order item", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate order items", err)
	}

	return lines, nil
}

func (m mysqlReader) FindOrders(ctx context.Context, scope domain.OrderScope) ([]domain.Order, error) {
	query, args := buildOrderQuery(mysqlDialect, scope, "o.total_price")

	rows, err := m.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("query orders", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt); err != nil {
			return nil, unavailable("scan order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate orders", err)
	}

	return orders, nil
}

func (m mysqlReader) FindCreatorByID(ctx context.Context, id string) (*domain.Creator, error) {
	var c domain.Creator
	var bio, location, avatar sql.NullString

	err := m.q.QueryRowContext(ctx, `
		SELECT id, user_id, name, bio, location, avatar_url
		FROM creators WHERE id = ?`, id,
	).Scan(&c.ID, &c.UserID, &c.Name, &bio, &location, &avatar)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("creator %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("query creator", err)
	}

	c.Bio, c.Location, c.AvatarURL = bio.String, location.String, avatar.String
	return &c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLItem(row rowScanner) (domain.Item, error) {
	var (
		it                        domain.Item
		category, size, mainImage sql.NullString
		width, height             sql.NullFloat64
		colors                    []byte
	)

	err := row.Scan(&it.ID, &it.CreatorID, &it.Name, &category, &it.Price,
		&width, &height, &size, &colors, &mainImage, &it.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, err
	}
	if err != nil {
		return domain.Item{}, unavailable("scan item", err)
	}

	it.Category, it.Size, it.MainImage = category.String, size.String, mainImage.String
	if width.Valid {
		it.WidthCm = &width.Float64
	}
	if height.Valid {
		it.HeightCm = &height.Float64
	}

	it.Colors = []string{}
	if len(colors) > 0 {
		if err := json.Unmarshal(colors, &it.Colors); err != nil {
			return domain.Item{}, fmt.Errorf("decode colors of item %s: %w", it.ID, err)
		}
	}

	return it, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
