package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/aura-atelier/storefront/internal/cart"
	"github.com/aura-atelier/storefront/internal/checkout"
	"github.com/aura-atelier/storefront/internal/discount"
)

type SessionHandler struct {
	cart    *cart.Store
	ledger  *discount.Ledger
	wizard  *checkout.Wizard
	timeout time.Duration
}

func NewSessionHandler(cartStore *cart.Store, ledger *discount.Ledger, wizard *checkout.Wizard, timeout time.Duration) *SessionHandler {
	return &SessionHandler{
		cart:    cartStore,
		ledger:  ledger,
		wizard:  wizard,
		timeout: timeout,
	}
}

// POST /api/v1/session/reset
//
// The logout-equivalent reset: empties the cart, drops the discount and
// abandons any in-progress checkout.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.cart.Clear(ctx); err != nil {
		log.Printf("failed to clear cart on session reset: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "session reset failed")
		return
	}
	if err := h.ledger.Reset(ctx); err != nil {
		log.Printf("failed to reset discount on session reset: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "session reset failed")
		return
	}
	h.wizard.Reset()

	w.WriteHeader(http.StatusNoContent)
}
