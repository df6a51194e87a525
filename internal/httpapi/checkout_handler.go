package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aura-atelier/storefront/internal/cart"
	"github.com/aura-atelier/storefront/internal/checkout"
	"github.com/aura-atelier/storefront/internal/discount"
	"github.com/aura-atelier/storefront/internal/order"
	"github.com/aura-atelier/storefront/internal/payment"
	"github.com/aura-atelier/storefront/internal/pricing"
)

type CheckoutHandler struct {
	wizard   *checkout.Wizard
	cart     *cart.Store
	ledger   *discount.Ledger
	resolver pricing.Resolver
	gateway  *payment.Simulator
	orders   *order.Service
	timeout  time.Duration
}

func NewCheckoutHandler(
	wizard *checkout.Wizard,
	cartStore *cart.Store,
	ledger *discount.Ledger,
	resolver pricing.Resolver,
	gateway *payment.Simulator,
	orders *order.Service,
	timeout time.Duration,
) *CheckoutHandler {
	return &CheckoutHandler{
		wizard:   wizard,
		cart:     cartStore,
		ledger:   ledger,
		resolver: resolver,
		gateway:  gateway,
		orders:   orders,
		timeout:  timeout,
	}
}

type CheckoutStateDTO struct {
	Step  checkout.Step  `json:"step"`
	Draft checkout.Draft `json:"draft"`
}

type ConfirmResponseDTO struct {
	OrderID string  `json:"order_id"`
	Total   float64 `json:"total"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.wizard.Start(); err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			// The storefront redirects to the catalog instead of
			// showing an empty checkout.
			respondError(w, http.StatusConflict, "empty_cart", "cart is empty, nothing to check out")
			return
		}
		log.Printf("failed to start checkout: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to start checkout")
		return
	}

	h.respondState(w)
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	h.respondState(w)
}

// POST /api/v1/checkout/contact
func (h *CheckoutHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var fields checkout.ContactFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.submit(w, func() error { return h.wizard.SubmitContact(fields) })
}

// POST /api/v1/checkout/shipping
func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	var fields checkout.ShippingFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.submit(w, func() error { return h.wizard.SubmitShipping(fields) })
}

// POST /api/v1/checkout/payment
func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var fields checkout.PaymentFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.submit(w, func() error { return h.wizard.SubmitPayment(fields) })
}

// POST /api/v1/checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.submit(w, h.wizard.Back)
}

// POST /api/v1/checkout/confirm
//
// Runs the simulated payment first; the order commit only happens after
// the charge resolved to success, so a declined payment leaves cart and
// discount untouched for a retry.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	draft, err := h.wizard.Confirm()
	if err != nil {
		h.handleWizardError(w, err)
		return
	}

	quote, err := pricing.BuildQuote(ctx, h.cart.Lines(), h.resolver, h.ledger.Current(), draft.Shipping.Method)
	if err != nil {
		log.Printf("failed to price cart for confirmation: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to price cart")
		return
	}

	if err := h.gateway.Charge(ctx); err != nil {
		switch {
		case errors.Is(err, payment.ErrChargeInFlight):
			respondError(w, http.StatusConflict, "payment_in_progress", "a payment is already being processed")
		case errors.Is(err, payment.ErrChargeDeclined):
			respondError(w, http.StatusPaymentRequired, "payment_declined", "payment declined, try again")
		default:
			log.Printf("payment attempt failed: %v", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "payment attempt failed")
		}
		return
	}

	orderID, err := h.orders.Commit(ctx, draft, quote.Total)
	if err != nil {
		log.Printf("order commit failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "order commit failed")
		return
	}

	h.wizard.Reset()
	respondJSON(w, http.StatusCreated, ConfirmResponseDTO{OrderID: orderID, Total: quote.Total})
}

func (h *CheckoutHandler) submit(w http.ResponseWriter, fn func() error) {
	if err := fn(); err != nil {
		h.handleWizardError(w, err)
		return
	}
	h.respondState(w)
}

func (h *CheckoutHandler) respondState(w http.ResponseWriter) {
	step, err := h.wizard.Step()
	if err != nil {
		h.handleWizardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutStateDTO{
		Step:  step,
		Draft: h.wizard.Draft(),
	})
}

func (h *CheckoutHandler) handleWizardError(w http.ResponseWriter, err error) {
	var validationErr *checkout.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondValidationError(w, validationErr.Fields)
	case errors.Is(err, checkout.ErrNotStarted):
		respondError(w, http.StatusConflict, "checkout_not_started", "checkout has not been started")
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, checkout.ErrIncompleteDraft):
		// Contract violation; surfaced loudly, never silently committed.
		log.Printf("checkout contract violation: %v", err)
		respondError(w, http.StatusInternalServerError, "incomplete_draft", "checkout draft is incomplete")
	default:
		log.Printf("checkout operation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "checkout operation failed")
	}
}
