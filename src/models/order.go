package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a point-of-sale checkout. Totals are computed server-side from the
// line items; client-supplied totals are only cross-checked, never trusted.
type Order struct {
	ID            int64           `json:"id"`
	OrderNumber   string          `json:"order_number"`
	UserID        int64           `json:"user_id"`
	Status        string          `json:"status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Shipping      decimal.Decimal `json:"shipping"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []OrderItem     `json:"items,omitempty"`
}

// OrderItem is one inventory line of an order.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	InventoryID int64           `json:"inventory_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SalesReport is the aggregate admin view over completed orders.
type SalesReport struct {
	TotalOrders  int64           `json:"total_orders"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	AverageOrder decimal.Decimal `json:"average_order"`
}
