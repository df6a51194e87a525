package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aura-atelier/storefront/internal/order"
)

type OrdersHandler struct {
	orders  *order.Service
	timeout time.Duration
}

func NewOrdersHandler(orders *order.Service, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	history := h.orders.History()
	if history == nil {
		history = []order.Order{}
	}
	respondJSON(w, http.StatusOK, history)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	found, err := h.orders.Get(orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		log.Printf("failed to get order: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get order")
		return
	}

	respondJSON(w, http.StatusOK, found)
}

// DELETE /api/v1/orders/{order_id}
func (h *OrdersHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "order_id")

	if err := h.orders.Delete(ctx, orderID); err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		log.Printf("failed to delete order: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
