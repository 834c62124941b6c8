// backend/src/handlers/order_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/manavault/backend/src/logger"
	"github.com/username/manavault/backend/src/services"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

type createOrderRequest struct {
	Items         []services.OrderItemInput `json:"items"`
	PaymentMethod string                    `json:"payment_method"`
}

// HandleCreateOrder runs a point-of-sale checkout. Prices come from the
// inventory rows, never from the client.
func (h *OrderHandler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req createOrderRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.orderService.CreateOrder(userID, req.Items, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyOrder):
			sendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrCardNotFound):
			sendJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrInsufficientStock):
			sendJSONError(w, err.Error(), http.StatusConflict)
		default:
			logger.ErrorFromContext(r.Context(), "CreateOrder failed", "error", err)
			sendJSONError(w, "Order creation failed", http.StatusInternalServerError)
		}
		return
	}

	logger.InfoFromContext(r.Context(), "Order created", "orderID", order.ID, "orderNumber", order.OrderNumber)
	writeJSON(w, order, http.StatusCreated)
}

func (h *OrderHandler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	orders, err := h.orderService.ListOrders(limit)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "ListOrders failed", "error", err)
		sendJSONError(w, "Failed to get orders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"orders": orders, "total": len(orders)}, http.StatusOK)
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateOrderStatus moves an order through fulfilment. Staff only; the
// route is gated by RequireRole upstream.
func (h *OrderHandler) HandleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	var req updateOrderStatusRequest
	if err := decodeJSONBody(r, &req); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.orderService.UpdateOrderStatus(orderID, req.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidOrderStatus):
			sendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrOrderNotFound):
			sendJSONError(w, err.Error(), http.StatusNotFound)
		default:
			logger.ErrorFromContext(r.Context(), "UpdateOrderStatus failed", "error", err)
			sendJSONError(w, "Order status update failed", http.StatusInternalServerError)
		}
		return
	}

	logger.InfoFromContext(r.Context(), "Order status updated", "orderID", orderID, "status", req.Status)
	writeJSON(w, map[string]any{"id": orderID, "status": req.Status}, http.StatusOK)
}

// HandleSalesReport serves the cached revenue aggregates. Admin only; the
// route is gated by RequireRole upstream.
func (h *OrderHandler) HandleSalesReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.orderService.GetSalesReport()
	if err != nil {
		logger.ErrorFromContext(r.Context(), "GetSalesReport failed", "error", err)
		sendJSONError(w, "Failed to build sales report", http.StatusInternalServerError)
		return
	}
	writeJSON(w, report, http.StatusOK)
}
