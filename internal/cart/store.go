package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aura-atelier/storefront/internal/kv"
)

const storageKey = "cart"

var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// Store holds the ordered cart lines and persists every mutation to the
// key/value store before it returns, so a restart reconstructs identical
// state. It knows nothing about prices.
type Store struct {
	mu    sync.Mutex
	kv    kv.Store
	lines []Line
}

func NewStore(ctx context.Context, store kv.Store) (*Store, error) {
	s := &Store{kv: store}

	data, err := store.Get(ctx, storageKey)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if err := json.Unmarshal(data, &s.lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart lines: %w", err)
	}

	return s, nil
}

// Add merges the quantity into an existing line with the same
// (productID, variantID, size) key, or appends a new line. A
// non-positive quantity is rejected rather than stored.
func (s *Store) Add(ctx context.Context, productID, variantID string, quantity int, size string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLines()
	merged := false
	for i := range next {
		if next[i].matches(productID, variantID, size) {
			next[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		next = append(next, Line{
			ProductID: productID,
			VariantID: variantID,
			Size:      size,
			Quantity:  quantity,
		})
	}

	return s.commit(ctx, next)
}

// Remove deletes the matching line. Removing an absent line is a no-op.
func (s *Store) Remove(ctx context.Context, productID, variantID, size string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(ctx, productID, variantID, size)
}

// SetQuantity overwrites the quantity of the matching line. A quantity
// of zero or less removes the line instead.
func (s *Store) SetQuantity(ctx context.Context, productID, variantID string, quantity int, size string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.removeLocked(ctx, productID, variantID, size)
	}

	next := s.copyLines()
	for i := range next {
		if next[i].matches(productID, variantID, size) {
			next[i].Quantity = quantity
			return s.commit(ctx, next)
		}
	}

	// No matching line; nothing to overwrite.
	return nil
}

// Clear empties the cart. Used by order commit and explicit resets only.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, []Line{})
}

// Lines returns a snapshot copy of the cart lines.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyLines()
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.lines) == 0
}

func (s *Store) removeLocked(ctx context.Context, productID, variantID, size string) error {
	next := s.copyLines()
	for i, line := range next {
		if line.matches(productID, variantID, size) {
			next = append(next[:i], next[i+1:]...)
			return s.commit(ctx, next)
		}
	}

	return nil
}

// commit persists the new line collection first; in-memory state only
// changes once the write succeeded, keeping memory and storage in step.
func (s *Store) commit(ctx context.Context, next []Line) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal cart lines: %w", err)
	}

	if err := s.kv.Set(ctx, storageKey, data); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}

	s.lines = next
	return nil
}

func (s *Store) copyLines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}
