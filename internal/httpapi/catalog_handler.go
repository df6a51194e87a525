package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aura-atelier/storefront/internal/catalog"
)

type CatalogHandler struct {
	index   *catalog.Index
	timeout time.Duration
}

func NewCatalogHandler(index *catalog.Index, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		index:   index,
		timeout: timeout,
	}
}

// GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.index.Products(ctx)
	if err != nil {
		log.Printf("failed to list products: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load catalog")
		return
	}

	if products == nil {
		products = []*catalog.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/products/{product_id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")

	products, err := h.index.Products(ctx)
	if err != nil {
		log.Printf("failed to load catalog: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load catalog")
		return
	}

	for _, p := range products {
		if p.ID == productID {
			respondJSON(w, http.StatusOK, p)
			return
		}
	}

	respondError(w, http.StatusNotFound, "not_found", "product not found")
}
