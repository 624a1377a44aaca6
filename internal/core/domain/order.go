package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is an open set: the constants below are the values the storefront
// writes today, but any label read from the store is carried through unchanged.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     OrderStatus     `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OrderItem is one purchase line. PriceAtPurchase is the unit price captured
// when the order was placed and never follows later Item.Price edits.
type OrderItem struct {
	ID              string          `json:"id"`
	OrderID         string          `json:"order_id"`
	ItemID          string          `json:"item_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// LineTotal is quantity × snapshot price.
func (l OrderItem) LineTotal() decimal.Decimal {
	return l.PriceAtPurchase.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderScope narrows OrderStatistics. The zero value means all orders.
type OrderScope struct {
	From      *time.Time // inclusive
	To        *time.Time // exclusive
	CreatorID string
	Status    string
}

// Matches reports whether o falls inside the time and status bounds of the
// scope. Creator scoping needs order lines and is left to the store.
func (s OrderScope) Matches(o Order) bool {
	if s.From != nil && o.CreatedAt.Before(*s.From) {
		return false
	}
	if s.To != nil && !o.CreatedAt.Before(*s.To) {
		return false
	}
	if s.Status != "" && string(o.Status) != s.Status {
		return false
	}
	return true
}
