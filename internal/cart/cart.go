package cart

// Line is a sparse cart entry: references plus a quantity, no pricing
// data. Identity is the (ProductID, VariantID, Size) triple.
type Line struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

func (l Line) matches(productID, variantID, size string) bool {
	return l.ProductID == productID && l.VariantID == variantID && l.Size == size
}
