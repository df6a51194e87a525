package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aura-atelier/storefront/internal/cart"
	"github.com/aura-atelier/storefront/internal/checkout"
	"github.com/aura-atelier/storefront/internal/kv"
)

const storageKey = "orders"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyCart     = errors.New("cannot commit an order for an empty cart")

	// ErrIncompleteDraft is a contract violation: the wizard must never
	// hand over an incomplete draft. The commit aborts outright.
	ErrIncompleteDraft = errors.New("refusing to commit order with incomplete draft")
)

// CartSource is the service's view of the cart: snapshot for the order
// record, clear after commit.
type CartSource interface {
	Lines() []cart.Line
	Clear(ctx context.Context) error
}

// DiscountResetter resets the ledger once its discount is consumed.
type DiscountResetter interface {
	Reset(ctx context.Context) error
}

// Service owns the order history and the atomic commit that turns a
// priced cart plus a completed draft into an immutable order.
type Service struct {
	mu     sync.Mutex
	kv     kv.Store
	cart   CartSource
	ledger DiscountResetter
	orders []Order // newest first
}

func NewService(ctx context.Context, store kv.Store, cartSource CartSource, ledger DiscountResetter) (*Service, error) {
	s := &Service{
		kv:     store,
		cart:   cartSource,
		ledger: ledger,
	}

	data, err := store.Get(ctx, storageKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}

	if err := json.Unmarshal(data, &s.orders); err != nil {
		return nil, fmt.Errorf("unmarshal order history: %w", err)
	}

	return s, nil
}

// Commit creates the order record, prepends it to history, then clears
// the cart and resets the discount ledger. Any simulated payment
// failure must be resolved before this is invoked; once called it is
// expected to succeed and nothing is rolled back.
func (s *Service) Commit(ctx context.Context, draft checkout.Draft, total float64) (string, error) {
	if !draft.Complete() {
		return "", ErrIncompleteDraft
	}

	items := s.cart.Lines()
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	// UUIDv7 is time-ordered, so order ids sort by creation time.
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate order id: %w", err)
	}

	newOrder := Order{
		ID:      id.String(),
		Date:    time.Now(),
		Items:   items,
		Total:   total,
		Details: draft,
		Status:  StatusConfirmed,
	}

	s.mu.Lock()
	next := make([]Order, 0, len(s.orders)+1)
	next = append(next, newOrder)
	next = append(next, s.orders...)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.mu.Unlock()

	if err := s.cart.Clear(ctx); err != nil {
		log.Printf("failed to clear cart after commit of order %s: %v", newOrder.ID, err)
	}
	if err := s.ledger.Reset(ctx); err != nil {
		log.Printf("failed to reset discount after commit of order %s: %v", newOrder.ID, err)
	}

	return newOrder.ID, nil
}

// History lists committed orders, most recent first.
func (s *Service) History() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *Service) Get(id string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrOrderNotFound
}

// Delete removes a whole order from history. Orders are deletable but
// never editable.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, o := range s.orders {
		if o.ID == id {
			next := make([]Order, 0, len(s.orders)-1)
			next = append(next, s.orders[:i]...)
			next = append(next, s.orders[i+1:]...)
			return s.persist(ctx, next)
		}
	}

	return ErrOrderNotFound
}

func (s *Service) persist(ctx context.Context, next []Order) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal order history: %w", err)
	}

	if err := s.kv.Set(ctx, storageKey, data); err != nil {
		return fmt.Errorf("failed to persist order history: %w", err)
	}

	s.orders = next
	return nil
}
