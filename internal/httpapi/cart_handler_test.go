package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aura-atelier/storefront/internal/cart"
	"github.com/aura-atelier/storefront/internal/catalog"
	"github.com/aura-atelier/storefront/internal/discount"
	"github.com/aura-atelier/storefront/internal/kv"
	"github.com/aura-atelier/storefront/internal/pricing"
)

// --- test doubles ---

type stubResolver map[string]catalog.Resolved

func (s stubResolver) Resolve(_ context.Context, productID, variantID string) (catalog.Resolved, error) {
	resolved, exists := s[productID+"/"+variantID]
	if !exists {
		return catalog.Resolved{}, catalog.ErrNotInCatalog
	}
	return resolved, nil
}

func testCartHandler(t *testing.T) (*CartHandler, *cart.Store, *discount.Ledger) {
	t.Helper()
	ctx := context.Background()
	mem := kv.NewMemoryStore()

	cartStore, err := cart.NewStore(ctx, mem)
	if err != nil {
		t.Fatalf("failed to create cart store: %v", err)
	}
	ledger, err := discount.NewLedger(ctx, mem)
	if err != nil {
		t.Fatalf("failed to create ledger: %v", err)
	}

	resolver := stubResolver{
		"p1/v1": {ProductName: "Aurora Ring", VariantColor: "gold", UnitPrice: 10.00},
	}
	return NewCartHandler(cartStore, ledger, resolver, 5*time.Second), cartStore, ledger
}

// --- AddItem tests ---

func TestAddItem_Success(t *testing.T) {
	handler, cartStore, _ := testCartHandler(t)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/items",
		strings.NewReader(`{"product_id":"p1","variant_id":"v1","quantity":2,"size":"7"}`))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("expected %d, got %d", http.StatusCreated, recorder.Code)
	}
	lines := cartStore.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", lines[0].Quantity)
	}
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	handler, cartStore, _ := testCartHandler(t)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/items",
		strings.NewReader(`{"product_id":"p1","variant_id":"v1"}`))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("expected %d, got %d", http.StatusCreated, recorder.Code)
	}
	if cartStore.Lines()[0].Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", cartStore.Lines()[0].Quantity)
	}
}

func TestAddItem_NegativeQuantityRejected(t *testing.T) {
	handler, cartStore, _ := testCartHandler(t)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/items",
		strings.NewReader(`{"product_id":"p1","variant_id":"v1","quantity":-1}`))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if len(cartStore.Lines()) != 0 {
		t.Errorf("expected no lines, got %d", len(cartStore.Lines()))
	}
}

func TestAddItem_MissingIDsRejected(t *testing.T) {
	handler, _, _ := testCartHandler(t)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/items",
		strings.NewReader(`{"quantity":1}`))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

// --- GetCart tests ---

func TestGetCart_QuoteWithDiscountAndShipping(t *testing.T) {
	handler, cartStore, ledger := testCartHandler(t)
	ctx := context.Background()

	if err := cartStore.Add(ctx, "p1", "v1", 2, ""); err != nil {
		t.Fatalf("failed to seed cart: %v", err)
	}
	if _, err := ledger.Apply(ctx, "AURA20"); err != nil {
		t.Fatalf("failed to apply discount: %v", err)
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/cart?shipping=standard", nil)

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	var quote pricing.Quote
	if err := json.NewDecoder(recorder.Body).Decode(&quote); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if quote.Subtotal != 20.00 {
		t.Errorf("expected subtotal 20.00, got %f", quote.Subtotal)
	}
	if quote.DiscountAmount != 4.00 {
		t.Errorf("expected discount 4.00, got %f", quote.DiscountAmount)
	}
	if quote.Total != 21.00 {
		t.Errorf("expected total 21.00, got %f", quote.Total)
	}
}

func TestGetCart_OrphanLineExcluded(t *testing.T) {
	handler, cartStore, _ := testCartHandler(t)

	if err := cartStore.Add(context.Background(), "deleted", "v1", 3, ""); err != nil {
		t.Fatalf("failed to seed cart: %v", err)
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/cart", nil)

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	var quote pricing.Quote
	if err := json.NewDecoder(recorder.Body).Decode(&quote); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(quote.Lines) != 0 {
		t.Errorf("expected no priced lines, got %d", len(quote.Lines))
	}
	if quote.Total != 0 {
		t.Errorf("expected total 0, got %f", quote.Total)
	}
}

// --- discount tests ---

func TestApplyDiscount_InvalidCode(t *testing.T) {
	handler, _, ledger := testCartHandler(t)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/discount",
		strings.NewReader(`{"code":"BOGUS"}`))

	handler.ApplyDiscount(recorder, request)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected %d, got %d", http.StatusUnprocessableEntity, recorder.Code)
	}
	if ledger.Current().Active() {
		t.Error("ledger should be unchanged after invalid code")
	}
}

func TestApplyDiscount_Success(t *testing.T) {
	handler, _, ledger := testCartHandler(t)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/discount",
		strings.NewReader(`{"code":"AURA20"}`))

	handler.ApplyDiscount(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected %d, got %d", http.StatusOK, recorder.Code)
	}
	if ledger.Current().Code != "AURA20" {
		t.Errorf("expected AURA20 active, got %q", ledger.Current().Code)
	}
}

// --- RemoveItem tests ---

func TestRemoveItem_Success(t *testing.T) {
	handler, cartStore, _ := testCartHandler(t)
	if err := cartStore.Add(context.Background(), "p1", "v1", 1, "7"); err != nil {
		t.Fatalf("failed to seed cart: %v", err)
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("DELETE", "/api/v1/cart/items?product_id=p1&variant_id=v1&size=7", nil)

	handler.RemoveItem(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected %d, got %d", http.StatusOK, recorder.Code)
	}
	if len(cartStore.Lines()) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(cartStore.Lines()))
	}
}
