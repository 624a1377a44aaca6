package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// FilterError names the offending field so the caller can show a field-level
// message. It matches ErrInvalidFilter under errors.Is.
type FilterError struct {
	Field  string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid filter: %s %s", e.Field, e.Reason)
}

func (e *FilterError) Unwrap() error {
	return ErrInvalidFilter
}

// DataIntegrityGap records an order line whose item could not be resolved.
// It is advisory: the line is skipped and aggregation carries on.
type DataIntegrityGap struct {
	OrderItemID string `json:"order_item_id"`
	OrderID     string `json:"order_id"`
	ItemID      string `json:"item_id"`
}

func (g DataIntegrityGap) Error() string {
	return fmt.Sprintf("order item %s (order %s) references unknown item %s", g.OrderItemID, g.OrderID, g.ItemID)
}
