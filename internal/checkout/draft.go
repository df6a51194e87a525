package checkout

// Payment methods accepted by the payment step.
const (
	MethodCard     = "card"
	MethodTransfer = "transfer"
)

type ContactFields struct {
	Name    string `json:"name" validate:"required"`
	Surname string `json:"surname" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,min=6"`
}

type ShippingFields struct {
	Address     string `json:"address" validate:"required"`
	HouseNumber string `json:"house_number" validate:"required"`
	FlatNumber  string `json:"flat_number,omitempty"`
	PostalCode  string `json:"postal_code" validate:"required"`
	City        string `json:"city" validate:"required"`
	Country     string `json:"country" validate:"required"`
	Method      string `json:"shipping_method" validate:"required,oneof=standard express"`
}

type PaymentFields struct {
	Method     string `json:"payment_method" validate:"required,oneof=card transfer"`
	CardNumber string `json:"card_number,omitempty" validate:"required_if=Method card,omitempty,luhn"`
	ExpiryDate string `json:"expiry_date,omitempty" validate:"required_if=Method card,omitempty,expmmyy"`
	CVV        string `json:"cvv,omitempty" validate:"required_if=Method card,omitempty,numeric,min=3,max=4"`
}

// scrub drops card data when it is not used. Card numbers are never
// stored for transfer payments.
func (f PaymentFields) scrub() PaymentFields {
	if f.Method == MethodTransfer {
		f.CardNumber = ""
		f.ExpiryDate = ""
		f.CVV = ""
	}
	return f
}

// Draft accumulates the checkout form across wizard steps. Discarded
// after a successful order commit.
type Draft struct {
	Contact  ContactFields  `json:"contact"`
	Shipping ShippingFields `json:"shipping"`
	Payment  PaymentFields  `json:"payment"`
}

// Complete reports whether every step has contributed its required
// fields. The wizard never confirms an incomplete draft; order commit
// re-checks this as its precondition.
func (d Draft) Complete() bool {
	if d.Contact.Name == "" || d.Contact.Surname == "" || d.Contact.Email == "" {
		return false
	}
	if d.Shipping.Address == "" || d.Shipping.City == "" || d.Shipping.Country == "" ||
		d.Shipping.PostalCode == "" || d.Shipping.Method == "" {
		return false
	}
	switch d.Payment.Method {
	case MethodCard:
		return d.Payment.CardNumber != "" && d.Payment.ExpiryDate != "" && d.Payment.CVV != ""
	case MethodTransfer:
		return true
	default:
		return false
	}
}
