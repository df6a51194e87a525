package order

import (
	"time"

	"github.com/aura-atelier/storefront/internal/cart"
	"github.com/aura-atelier/storefront/internal/checkout"
)

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
)

// Order is immutable once created. Items and Details are snapshots
// taken at commit time; later cart or profile changes never alter a
// committed order.
type Order struct {
	ID      string         `json:"id"`
	Date    time.Time      `json:"date"`
	Items   []cart.Line    `json:"items"`
	Total   float64        `json:"total"`
	Details checkout.Draft `json:"details"`
	Status  Status         `json:"status"`
}
