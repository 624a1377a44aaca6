package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByPrice     SortField = "price"
	SortByName      SortField = "name"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ItemFilter is the browse-view query. Every predicate is optional and the
// supplied ones are ANDed. Price bounds are inclusive and independent; an
// inverted pair is not an error, it just matches nothing.
type ItemFilter struct {
	Category  string           `validate:"omitempty,max=100"`
	CreatorID string           `validate:"omitempty,max=64"`
	MinPrice  *decimal.Decimal `validate:"-"`
	MaxPrice  *decimal.Decimal `validate:"-"`
	Color     string           `validate:"omitempty,max=50"`
	Size      string           `validate:"omitempty,max=50"`
	SortBy    SortField        `validate:"omitempty,oneof=createdAt price name"`
	SortOrder SortOrder        `validate:"omitempty,oneof=asc desc"`
}

// WithDefaults fills the sort settings: createdAt, descending.
func (f ItemFilter) WithDefaults() ItemFilter {
	if f.SortBy == "" {
		f.SortBy = SortByCreatedAt
	}
	if f.SortOrder == "" {
		f.SortOrder = SortDesc
	}
	return f
}

// Matches evaluates the predicate part of the filter against one item.
func (f ItemFilter) Matches(it Item) bool {
	if f.Category != "" && it.Category != f.Category {
		return false
	}
	if f.CreatorID != "" && it.CreatorID != f.CreatorID {
		return false
	}
	if f.MinPrice != nil && it.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && it.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Color != "" && !it.HasColor(f.Color) {
		return false
	}
	if f.Size != "" && it.Size != f.Size {
		return false
	}
	return true
}

// Compare orders a and b by the filter's sort settings. It returns 0 on equal
// keys so callers using a stable sort keep their own tie-break.
func (f ItemFilter) Compare(a, b Item) int {
	var c int
	switch f.SortBy {
	case SortByPrice:
		c = a.Price.Cmp(b.Price)
	case SortByName:
		c = strings.Compare(a.Name, b.Name)
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if f.SortOrder == SortDesc {
		return -c
	}
	return c
}

// ParseItemFilter reads the browse query string: category, creatorId,
// minPrice, maxPrice, color, size, sortBy, sortOrder. Only number syntax is
// checked here; sort values are validated by the catalog service.
func ParseItemFilter(values url.Values) (ItemFilter, error) {
	f := ItemFilter{
		Category:  values.Get("category"),
		CreatorID: values.Get("creatorId"),
		Color:     values.Get("color"),
		Size:      values.Get("size"),
		SortBy:    SortField(values.Get("sortBy")),
		SortOrder: SortOrder(strings.ToLower(values.Get("sortOrder"))),
	}

	var err error
	if f.MinPrice, err = parseBound(values, "minPrice"); err != nil {
		return ItemFilter{}, err
	}
	if f.MaxPrice, err = parseBound(values, "maxPrice"); err != nil {
		return ItemFilter{}, err
	}
	return f, nil
}

func parseBound(values url.Values, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, &FilterError{Field: key, Reason: "must be a decimal number"}
	}
	return &d, nil
}

// ParseOrderScope reads from, to, creatorId and status. Dates are RFC 3339
// or YYYY-MM-DD.
func ParseOrderScope(values url.Values) (OrderScope, error) {
	scope := OrderScope{
		CreatorID: values.Get("creatorId"),
		Status:    values.Get("status"),
	}

	var err error
	if scope.From, err = parseTime(values, "from"); err != nil {
		return OrderScope{}, err
	}
	if scope.To, err = parseTime(values, "to"); err != nil {
		return OrderScope{}, err
	}
	return scope, nil
}

func parseTime(values url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, &FilterError{Field: key, Reason: "must be RFC 3339 or YYYY-MM-DD"}
}
