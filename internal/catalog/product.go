package catalog

// Variant is one purchasable variation of a product. Sizes may be empty
// for one-size items.
type Variant struct {
	ID              string   `json:"id"`
	Color           string   `json:"color"`
	PriceAdjustment float64  `json:"price_adjustment"`
	ImageURL        string   `json:"image_url"`
	Sizes           []string `json:"size"`
}

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BasePrice float64   `json:"price"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	Rating    float64   `json:"rating"`
	Variants  []Variant `json:"variants"`
}

// Resolved is the priced view of a (product, variant) pair. UnitPrice is
// recomputed on every lookup, never stored.
type Resolved struct {
	ProductName  string
	VariantColor string
	ImageURL     string
	UnitPrice    float64
}
