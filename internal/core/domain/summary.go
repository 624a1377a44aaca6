package domain

import "github.com/shopspring/decimal"

type ProductSales struct {
	ItemID   string          `json:"item_id"`
	ItemName string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// CreatorSalesSummary is computed from order lines and snapshot prices.
// ItemsSoldByProduct is ordered by revenue desc, quantity desc, item id asc.
type CreatorSalesSummary struct {
	CreatorID          string             `json:"creator_id"`
	CreatorName        string             `json:"creator_name"`
	TotalOrders        int                `json:"total_orders"`
	TotalItemsSold     int                `json:"total_items_sold"`
	TotalRevenue       decimal.Decimal    `json:"total_revenue"`
	ItemsSoldByProduct []ProductSales     `json:"items_sold_by_product"`
	Gaps               []DataIntegrityGap `json:"gaps,omitempty"`
}

// OrderStatistics is computed from Order.TotalPrice, not from lines.
// AverageOrderValue is zero when there are no orders.
type OrderStatistics struct {
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	OrdersByStatus    map[string]int  `json:"orders_by_status"`
}
