package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aura-atelier/storefront/internal/cart"
	"github.com/aura-atelier/storefront/internal/discount"
	"github.com/aura-atelier/storefront/internal/pricing"
)

type CartHandler struct {
	cart     *cart.Store
	ledger   *discount.Ledger
	resolver pricing.Resolver
	timeout  time.Duration
}

func NewCartHandler(cartStore *cart.Store, ledger *discount.Ledger, resolver pricing.Resolver, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:     cartStore,
		ledger:   ledger,
		resolver: resolver,
		timeout:  timeout,
	}
}

type CartItemRequestDTO struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

type ApplyDiscountRequestDTO struct {
	Code string `json:"code"`
}

// GET /api/v1/cart?shipping=standard
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	quote, err := pricing.BuildQuote(ctx, h.cart.Lines(), h.resolver, h.ledger.Current(), r.URL.Query().Get("shipping"))
	if err != nil {
		log.Printf("failed to price cart: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to price cart")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, ok := decodeItemRequest(w, r)
	if !ok {
		return
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := h.cart.Add(ctx, req.ProductID, req.VariantID, req.Quantity, req.Size); err != nil {
		h.handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.cart.Lines())
}

// PUT /api/v1/cart/items
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, ok := decodeItemRequest(w, r)
	if !ok {
		return
	}

	if err := h.cart.SetQuantity(ctx, req.ProductID, req.VariantID, req.Quantity, req.Size); err != nil {
		h.handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.cart.Lines())
}

// DELETE /api/v1/cart/items?product_id=p1&variant_id=v1&size=7
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	query := r.URL.Query()
	productID := query.Get("product_id")
	variantID := query.Get("variant_id")
	if productID == "" || variantID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id and variant_id are required")
		return
	}

	if err := h.cart.Remove(ctx, productID, variantID, query.Get("size")); err != nil {
		h.handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.cart.Lines())
}

// POST /api/v1/cart/discount
func (h *CartHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ApplyDiscountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	applied, err := h.ledger.Apply(ctx, req.Code)
	if err != nil {
		log.Printf("failed to apply discount: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to apply discount")
		return
	}
	if !applied {
		respondError(w, http.StatusUnprocessableEntity, "invalid_discount_code", "invalid discount code")
		return
	}

	respondJSON(w, http.StatusOK, h.ledger.Current())
}

// DELETE /api/v1/cart/discount
func (h *CartHandler) ResetDiscount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.ledger.Reset(ctx); err != nil {
		log.Printf("failed to reset discount: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to reset discount")
		return
	}

	respondJSON(w, http.StatusOK, h.ledger.Current())
}

func decodeItemRequest(w http.ResponseWriter, r *http.Request) (CartItemRequestDTO, bool) {
	var req CartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return req, false
	}
	if req.ProductID == "" || req.VariantID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id and variant_id are required")
		return req, false
	}
	return req, true
}

func (h *CartHandler) handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be a positive integer")
	default:
		log.Printf("cart operation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "cart operation failed")
	}
}
