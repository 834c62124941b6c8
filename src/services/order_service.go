// backend/src/services/order_service.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/models"
	"github.com/username/manavault/backend/src/utils"
)

const salesReportCacheKey = "sales_report"

// Statuses an order can be moved to by staff. Completed orders feed the
// sales report.
var validOrderStatuses = map[string]bool{
	"pending":   true,
	"paid":      true,
	"shipped":   true,
	"completed": true,
	"cancelled": true,
}

type orderServiceImpl struct {
	db          *sql.DB
	reportCache *cache.Cache

	vatRate     decimal.Decimal
	shippingFee decimal.Decimal
}

// NewOrderService wires checkout with the configured VAT rate and flat
// shipping fee.
func NewOrderService(db *sql.DB, reportCache *cache.Cache, vatRate, shippingFee decimal.Decimal) OrderService {
	return &orderServiceImpl{db: db, reportCache: reportCache, vatRate: vatRate, shippingFee: shippingFee}
}

// CreateOrder checks out a POS basket: prices come from the inventory rows,
// never from the client, and stock is decremented in the same transaction.
func (s *orderServiceImpl) CreateOrder(userID int64, items []OrderItemInput, paymentMethod string) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting order transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	order := &models.Order{
		OrderNumber:   "ORD-" + strings.ToUpper(uuid.New().String()[:8]),
		UserID:        userID,
		Status:        "pending",
		PaymentMethod: paymentMethod,
		Subtotal:      decimal.Zero,
		CreatedAt:     now,
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: inventory %d has quantity %d", ErrInsufficientStock, item.InventoryID, item.Quantity)
		}

		var available int
		var sellPrice string
		err := tx.QueryRow(`SELECT quantity, sell_price FROM inventory WHERE id = ?`, item.InventoryID).
			Scan(&available, &sellPrice)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: inventory %d", ErrCardNotFound, item.InventoryID)
		}
		if err != nil {
			return nil, fmt.Errorf("reading inventory %d: %w", item.InventoryID, err)
		}
		if available < item.Quantity {
			return nil, fmt.Errorf("%w: inventory %d has %d, requested %d", ErrInsufficientStock, item.InventoryID, available, item.Quantity)
		}

		unitPrice, err := parseStoredAmount(sellPrice)
		if err != nil {
			return nil, fmt.Errorf("inventory %d: %w", item.InventoryID, err)
		}
		lineSubtotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

		order.Items = append(order.Items, models.OrderItem{
			InventoryID: item.InventoryID,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			Subtotal:    lineSubtotal,
		})
		order.Subtotal = order.Subtotal.Add(lineSubtotal)

		if _, err := tx.Exec(`UPDATE inventory SET quantity = quantity - ?, updated_at = ? WHERE id = ?`,
			item.Quantity, now, item.InventoryID); err != nil {
			return nil, fmt.Errorf("decrementing inventory %d: %w", item.InventoryID, err)
		}
	}
	order.Tax = order.Subtotal.Mul(s.vatRate).Round(2)
	order.Shipping = s.shippingFee
	order.Total = order.Subtotal.Add(order.Tax).Add(order.Shipping)

	res, err := tx.Exec(
		`INSERT INTO orders (order_number, user_id, status, subtotal, tax, shipping, total, payment_method, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.OrderNumber, order.UserID, order.Status,
		order.Subtotal.String(), order.Tax.String(), order.Shipping.String(),
		order.Total.String(), order.PaymentMethod, order.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting order: %w", err)
	}
	order.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		item := order.Items[i]
		res, err := tx.Exec(
			`INSERT INTO order_items (order_id, inventory_id, quantity, unit_price, subtotal)
			 VALUES (?, ?, ?, ?, ?)`,
			item.OrderID, item.InventoryID, item.Quantity, item.UnitPrice.String(), item.Subtotal.String(),
		)
		if err != nil {
			return nil, fmt.Errorf("inserting order item: %w", err)
		}
		order.Items[i].ID, _ = res.LastInsertId()
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing order: %w", err)
	}

	s.reportCache.Delete(salesReportCacheKey)
	logger.L.Info("Order created", "orderNumber", order.OrderNumber, "userID", userID, "total", order.Total.String())
	return order, nil
}

func (s *orderServiceImpl) ListOrders(limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, order_number, user_id, status, subtotal, tax, shipping, total, payment_method, created_at
		 FROM orders ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		var subtotal, tax, shipping, total string
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &subtotal, &tax, &shipping, &total, &o.PaymentMethod, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		if o.Subtotal, err = parseStoredAmount(subtotal); err != nil {
			return nil, fmt.Errorf("order %d: %w", o.ID, err)
		}
		if o.Tax, err = parseStoredAmount(tax); err != nil {
			return nil, fmt.Errorf("order %d: %w", o.ID, err)
		}
		if o.Shipping, err = parseStoredAmount(shipping); err != nil {
			return nil, fmt.Errorf("order %d: %w", o.ID, err)
		}
		if o.Total, err = parseStoredAmount(total); err != nil {
			return nil, fmt.Errorf("order %d: %w", o.ID, err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateOrderStatus moves an order through fulfilment. Completed orders enter
// the sales report, so the report cache is invalidated on every change.
func (s *orderServiceImpl) UpdateOrderStatus(orderID int64, status string) error {
	if !validOrderStatuses[status] {
		return fmt.Errorf("%w: %q", ErrInvalidOrderStatus, status)
	}

	res, err := s.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	if err != nil {
		return fmt.Errorf("updating order %d status: %w", orderID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %d", ErrOrderNotFound, orderID)
	}

	s.reportCache.Delete(salesReportCacheKey)
	logger.L.Info("Order status updated", "orderID", orderID, "status", status)
	return nil
}

// GetSalesReport aggregates completed orders. The result is cached; order
// creation invalidates it.
func (s *orderServiceImpl) GetSalesReport() (*models.SalesReport, error) {
	if cached, found := s.reportCache.Get(salesReportCacheKey); found {
		return cached.(*models.SalesReport), nil
	}

	var report models.SalesReport
	var totalSales, averageOrder sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT COUNT(*), SUM(CAST(total AS REAL)), AVG(CAST(total AS REAL))
		 FROM orders WHERE status = 'completed'`,
	).Scan(&report.TotalOrders, &totalSales, &averageOrder)
	if err != nil {
		return nil, fmt.Errorf("building sales report: %w", err)
	}
	// The CAST-to-REAL aggregates pick up float noise; round at the report
	// boundary only.
	report.TotalSales = decimal.NewFromFloat(utils.RoundFloat(totalSales.Float64, 2))
	report.AverageOrder = decimal.NewFromFloat(utils.RoundFloat(averageOrder.Float64, 2))

	s.reportCache.Set(salesReportCacheKey, &report, cache.DefaultExpiration)
	return &report, nil
}
