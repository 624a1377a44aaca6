package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rl1809/storefront/internal/core/domain"
)

var sortColumns = map[domain.SortField]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByPrice:     "price",
	domain.SortByName:      "name",
}

// dialect holds what differs between the MySQL and PostgreSQL queries.
type dialect struct {
	placeholder func(n int) string
	// colorMatch renders "item has this colour" for a bound placeholder
	colorMatch  func(ph string) string
	decimal     func(ph string) string
	itemColumns string
}

var mysqlDialect = dialect{
	placeholder: func(int) string { return "?" },
	colorMatch: func(ph string) string {
		return "JSON_CONTAINS(colors, JSON_QUOTE(" + ph + "))"
	},
	decimal: func(ph string) string {
		return "CAST(" + ph + " AS DECIMAL(12,2))"
	},
	itemColumns: "id, creator_id, name, category, price, width_cm, height_cm, size, colors, main_image, created_at",
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	colorMatch: func(ph string) string {
		return ph + " = ANY(colors)"
	},
	decimal: func(ph string) string {
		return ph + "::numeric"
	},
	itemColumns: "id, creator_id, name, category, price::text, width_cm, height_cm, size, colors, main_image, created_at",
}

type whereBuilder struct {
	d       dialect
	clauses []string
	args    []any
}

func (w *whereBuilder) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(format, w.d.placeholder(len(w.args))))
}

func (w *whereBuilder) addFunc(render func(ph string) string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, render(w.d.placeholder(len(w.args))))
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// buildItemQuery renders the filter as one SELECT. Rows with equal sort keys
// come back in ascending id order.
func buildItemQuery(d dialect, f domain.ItemFilter) (string, []any, error) {
	f = f.WithDefaults()

	col, ok := sortColumns[f.SortBy]
	if !ok {
		return "", nil, &domain.FilterError{Field: "sortBy", Reason: "unknown sort field " + strconv.Quote(string(f.SortBy))}
	}
	var dir string
	switch f.SortOrder {
	case domain.SortAsc:
		dir = "ASC"
	case domain.SortDesc:
		dir = "DESC"
	default:
		return "", nil, &domain.FilterError{Field: "sortOrder", Reason: "unknown sort order " + strconv.Quote(string(f.SortOrder))}
	}

	w := &whereBuilder{d: d}
	if f.Category != "" {
		w.add("category = %s", f.Category)
	}
	if f.CreatorID != "" {
		w.add("creator_id = %s", f.CreatorID)
	}
	if f.MinPrice != nil {
		w.addFunc(func(ph string) string { return "price >= " + d.decimal(ph) }, f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		w.addFunc(func(ph string) string { return "price <= " + d.decimal(ph) }, f.MaxPrice.String())
	}
	if f.Color != "" {
		w.addFunc(d.colorMatch, f.Color)
	}
	if f.Size != "" {
		w.add("size = %s", f.Size)
	}

	query := "SELECT " + d.itemColumns + " FROM items" + w.String() +
		" ORDER BY " + col + " " + dir + ", id ASC"
	return query, w.args, nil
}

// buildOrderQuery renders an order scope. Creator scope keeps orders with at
// least one line for one of the creator's items.
func buildOrderQuery(d dialect, scope domain.OrderScope, totalColumn string) (string, []any) {
	w := &whereBuilder{d: d}
	if scope.From != nil {
		w.add("o.created_at >= %s", *scope.From)
	}
	if scope.To != nil {
		w.add("o.created_at < %s", *scope.To)
	}
	if scope.Status != "" {
		w.add("o.status = %s", scope.Status)
	}
	if scope.CreatorID != "" {
		w.add(`o.id IN (
			SELECT oi.order_id FROM order_items oi
			JOIN items i ON i.id = oi.item_id
			WHERE i.creator_id = %s)`, scope.CreatorID)
	}

	query := "SELECT o.id, o.user_id, " + totalColumn + ", o.status, o.created_at FROM orders o" +
		w.String() + " ORDER BY o.created_at, o.id"
	return query, w.args
}
