package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// pgQueryer is satisfied by *pgxpool.Pool and pgx.Tx.
type pgQueryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresAdapter reads the same schema as MySQLAdapter from PostgreSQL, with
// colors stored as TEXT[]. Numeric columns are read as text so no precision is
// lost on the way into decimal.Decimal. Equal sort keys are ordered by id.
type PostgresAdapter struct {
	postgresReader
	pool *pgxpool.Pool
}

func NewPostgresAdapter(pool *pgxpool.Pool) *PostgresAdapter {
	return &PostgresAdapter{postgresReader: postgresReader{q: pool}, pool: pool}
}

func (p *PostgresAdapter) ReadSnapshot(ctx context.Context, fn func(r port.EntityReader) error) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return unavailable("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(postgresReader{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return unavailable("commit tx", err)
	}
	return nil
}

type postgresReader struct {
	q pgQueryer
}

func (p postgresReader) FindItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	query, args, err := buildItemQuery(postgresDialect, filter)
	if err != nil {
		return nil, err
	}

	rows, err := p.q.Query(ctx, query, args...)
	if err != nil {
		return nil, unavailable("query items", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		it, err := scanPostgresItem(rows)
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

func (p postgresReader) FindItemByID(ctx context.Context, id string) (*domain.Item, error) {
	row := p.q.QueryRow(ctx, "SELECT "+postgresDialect.itemColumns+" FROM items WHERE id = $1", id)

	it, err := scanPostgresItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (p postgresReader) FindItemImages(ctx context.Context, itemID string) ([]domain.ItemImage, error) {
	rows, err := p.q.Query(ctx, `
		SELECT id, item_id, url, position
		FROM item_images WHERE item_id = $1
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

func (p postgresReader) FindReviewsByItemID(ctx context.Context, itemID string) ([]domain.Review, error) {
	rows, err := p.q.Query(ctx, `
		SELECT id, user_id, item_id, rating, COALESCE(comment, ''), created_at
		FROM reviews WHERE item_id = $1
		ORDER BY created_at, id`, itemID)
	if err != nil {
		return nil, unavailable("query reviews", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.ItemID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, unavailable("scan review", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate reviews", err)
	}

	return reviews, nil
}

func (p postgresReader) FindOrderItemsByItemIDs(ctx context.Context, itemIDs []string) ([]domain.OrderItem, error) {
	if len(itemIDs) == 0 {
		return []domain.OrderItem{}, nil
	}

	rows, err := p.q.Query(ctx, `
		SELECT id, order_id, item_id, quantity, price_at_purchase::text
		FROM order_items WHERE item_id = ANY($1)
		ORDER BY order_id, id`, itemIDs)
	if err != nil {
		return nil, unavailable("query order items", err)
	}
	defer rows.Close()

	lines := []domain.OrderItem{}
	for rows.Next() {
		var l domain.OrderItem
		var priceText string
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Quantity, &priceText); err != nil {
			return nil, unavailable("scan order item", err)
		}
		if l.PriceAtPurchase, err = decimal.NewFromString(priceText); err != nil {
			return nil, fmt.Errorf("decode price of order item %s: %w", l.ID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate order items", err)
	}

	return lines, nil
}

func (p postgresReader) FindOrders(ctx context.Context, scope domain.OrderScope) ([]domain.Order, error) {
	query, args := buildOrderQuery(postgresDialect, scope, "o.total_price::text")

	rows, err := p.q.Query(ctx, query, args...)
	if err != nil {
		return nil, unavailable("query orders", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		var totalText string
		if err := rows.Scan(&o.ID, &o.UserID, &totalText, &o.Status, &o.CreatedAt); err != nil {
			return nil, unavailable("scan order", err)
		}
		if o.TotalPrice, err = decimal.NewFromString(totalText); err != nil {
			return nil, fmt.Errorf("decode total of order %s: %w", o.ID, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate orders", err)
	}

	return orders, nil
}

func (p postgresReader) FindCreatorByID(ctx context.Context, id string) (*domain.Creator, error) {
	var c domain.Creator

	err := p.q.QueryRow(ctx, `
		SELECT id, user_id, name, COALESCE(bio, ''), COALESCE(location, ''), COALESCE(avatar_url, '')
		FROM creators WHERE id = $1`, id,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Bio, &c.Location, &c.AvatarURL)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("creator %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("query creator", err)
	}

	return &c, nil
}

func scanPostgresItem(row pgx.Row) (domain.Item, error) {
	var (
		it                        domain.Item
		priceText                 string
		category, size, mainImage *string
		colors                    []string
	)

	err := row.Scan(&it.ID, &it.CreatorID, &it.Name, &category, &priceText,
		&it.WidthCm, &it.HeightCm, &size, &colors, &mainImage, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Item{}, err
	}
	if err != nil {
		return domain.Item{}, unavailable("scan item", err)
	}

	if it.Price, err = decimal.NewFromString(priceText); err != nil {
		return domain.Item{}, fmt.Errorf("decode price of item %s: %w", it.ID, err)
	}
	it.Category, it.Size, it.MainImage = deref(category), deref(size), deref(mainImage)
	it.Colors = colors
	if it.Colors == nil {
		it.Colors = []string{}
	}

	return it, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
