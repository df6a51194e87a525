package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aura-atelier/storefront/internal/cart"
	"github.com/aura-atelier/storefront/internal/catalog"
	"github.com/aura-atelier/storefront/internal/checkout"
	"github.com/aura-atelier/storefront/internal/discount"
	"github.com/aura-atelier/storefront/internal/order"
	"github.com/aura-atelier/storefront/internal/payment"
)

type RouterDeps struct {
	Index          *catalog.Index
	Cart           *cart.Store
	Ledger         *discount.Ledger
	Wizard         *checkout.Wizard
	Gateway        *payment.Simulator
	Orders         *order.Service
	RequestTimeout time.Duration
}

func NewRouter(deps RouterDeps) *chi.Mux {
	catalogHandler := NewCatalogHandler(deps.Index, deps.RequestTimeout)
	cartHandler := NewCartHandler(deps.Cart, deps.Ledger, deps.Index, deps.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(deps.Wizard, deps.Cart, deps.Ledger, deps.Index, deps.Gateway, deps.Orders, deps.RequestTimeout)
	ordersHandler := NewOrdersHandler(deps.Orders, deps.RequestTimeout)
	sessionHandler := NewSessionHandler(deps.Cart, deps.Ledger, deps.Wizard, deps.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/{product_id}", catalogHandler.GetProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items", cartHandler.UpdateQuantity)
			r.Delete("/items", cartHandler.RemoveItem)
			r.Post("/discount", cartHandler.ApplyDiscount)
			r.Delete("/discount", cartHandler.ResetDiscount)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Start)
			r.Get("/", checkoutHandler.GetState)
			r.Post("/contact", checkoutHandler.SubmitContact)
			r.Post("/shipping", checkoutHandler.SubmitShipping)
			r.Post("/payment", checkoutHandler.SubmitPayment)
			r.Post("/back", checkoutHandler.Back)
			r.Post("/confirm", checkoutHandler.Confirm)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
			r.Delete("/{order_id}", ordersHandler.DeleteOrder)
		})

		r.Post("/session/reset", sessionHandler.Reset)
	})

	return r
}
