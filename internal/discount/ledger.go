package discount

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aura-atelier/storefront/internal/kv"
)

const storageKey = "discount"

// Discount is a promotional code and its effect. The zero value means
// no discount. Percentage is always derived from the known-code table,
// never taken from input.
type Discount struct {
	Code       string  `json:"code"`
	Percentage float64 `json:"percentage"`
}

func (d Discount) Active() bool {
	return d.Percentage > 0
}

// knownCodes maps promotional codes to their percentage. Matching is
// case-sensitive.
var knownCodes = map[string]float64{
	"AURA20": 0.20,
}

// Ledger holds at most one active discount, persisted to the key/value
// store.
type Ledger struct {
	mu  sync.Mutex
	kv  kv.Store
	cur Discount
}

func NewLedger(ctx context.Context, store kv.Store) (*Ledger, error) {
	l := &Ledger{kv: store}

	data, err := store.Get(ctx, storageKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load discount: %w", err)
	}

	if err := json.Unmarshal(data, &l.cur); err != nil {
		return nil, fmt.Errorf("unmarshal discount: %w", err)
	}

	return l, nil
}

// Apply stores the discount for a known code and reports whether it was
// accepted. Unknown codes, and any code while a discount is already
// active, leave the ledger unchanged.
func (l *Ledger) Apply(ctx context.Context, code string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cur.Active() {
		return false, nil
	}

	percentage, known := knownCodes[code]
	if !known {
		return false, nil
	}

	if err := l.persist(ctx, Discount{Code: code, Percentage: percentage}); err != nil {
		return false, err
	}
	return true, nil
}

// Reset restores the no-discount state. Called after a successful order
// commit and on session resets.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.persist(ctx, Discount{})
}

func (l *Ledger) Current() Discount {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.cur
}

func (l *Ledger) persist(ctx context.Context, next Discount) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal discount: %w", err)
	}

	if err := l.kv.Set(ctx, storageKey, data); err != nil {
		return fmt.Errorf("failed to persist discount: %w", err)
	}

	l.cur = next
	return nil
}
