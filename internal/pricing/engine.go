package pricing

import (
	"context"
	"errors"
	"strconv"

	"github.com/aura-atelier/storefront/internal/cart"
	"github.com/aura-atelier/storefront/internal/catalog"
	"github.com/aura-atelier/storefront/internal/discount"
)

// Resolver joins a cart reference to priced catalog attributes.
// Consumers define this interface, not the catalog implementation.
type Resolver interface {
	Resolve(ctx context.Context, productID, variantID string) (catalog.Resolved, error)
}

// PricedLine is a cart line joined with catalog data. Derived and
// ephemeral: it is never persisted.
type PricedLine struct {
	Line         cart.Line `json:"line"`
	ProductName  string    `json:"product_name"`
	VariantColor string    `json:"variant_color"`
	ImageURL     string    `json:"image_url"`
	UnitPrice    float64   `json:"unit_price"`
	LineTotal    float64   `json:"line_total"`
}

// Shipping methods and their flat rates.
const (
	ShippingStandard = "standard"
	ShippingExpress  = "express"

	standardRate = 5.00
	expressRate  = 15.00
)

// Price joins each cart line against the catalog. Lines whose product
// or variant no longer resolves are skipped, not errors: the storefront
// keeps working with partial data.
func Price(ctx context.Context, lines []cart.Line, idx Resolver) ([]PricedLine, error) {
	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		resolved, err := idx.Resolve(ctx, line.ProductID, line.VariantID)
		if errors.Is(err, catalog.ErrNotInCatalog) {
			continue
		}
		if err != nil {
			return nil, err
		}

		priced = append(priced, PricedLine{
			Line:         line,
			ProductName:  resolved.ProductName,
			VariantColor: resolved.VariantColor,
			ImageURL:     resolved.ImageURL,
			UnitPrice:    resolved.UnitPrice,
			LineTotal:    resolved.UnitPrice * float64(line.Quantity),
		})
	}

	return priced, nil
}

// Subtotal sums the line totals. No rounding here; rounding is a
// presentation concern (see FormatAmount).
func Subtotal(priced []PricedLine) float64 {
	var sum float64
	for _, line := range priced {
		sum += line.LineTotal
	}
	return sum
}

func DiscountAmount(subtotal float64, d discount.Discount) float64 {
	return subtotal * d.Percentage
}

func Total(subtotal, discountAmount, shippingCost float64) float64 {
	return subtotal - discountAmount + shippingCost
}

// ShippingCost returns the flat rate for a shipping method. An empty
// method means shipping has not been chosen yet and costs nothing;
// unknown methods fall back to standard, matching the storefront
// default.
func ShippingCost(method string) float64 {
	switch method {
	case "":
		return 0
	case ShippingExpress:
		return expressRate
	default:
		return standardRate
	}
}

// Quote is the full pricing breakdown for the current cart.
type Quote struct {
	Lines          []PricedLine `json:"lines"`
	Subtotal       float64      `json:"subtotal"`
	DiscountAmount float64      `json:"discount_amount"`
	ShippingCost   float64      `json:"shipping_cost"`
	Total          float64      `json:"total"`
}

// BuildQuote prices the cart and folds in the active discount and the
// shipping method in one pass. Pure: same inputs, same quote.
func BuildQuote(ctx context.Context, lines []cart.Line, idx Resolver, d discount.Discount, shippingMethod string) (Quote, error) {
	priced, err := Price(ctx, lines, idx)
	if err != nil {
		return Quote{}, err
	}

	subtotal := Subtotal(priced)
	discountAmount := DiscountAmount(subtotal, d)
	shippingCost := ShippingCost(shippingMethod)

	return Quote{
		Lines:          priced,
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		ShippingCost:   shippingCost,
		Total:          Total(subtotal, discountAmount, shippingCost),
	}, nil
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
