package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var ErrNotInCatalog = errors.New("product or variant not in catalog")

const defaultRefreshTTL = 5 * time.Minute

// Index is the in-memory lookup from (productID, variantID) to priced
// attributes. It is rebuilt from the repository once the TTL elapses;
// singleflight prevents concurrent rebuilds for the same expiry.
type Index struct {
	repo       RepoInterface
	refreshTTL time.Duration
	sfg        singleflight.Group

	mu       sync.RWMutex
	products []*Product
	byID     map[string]*Product
	loadedAt time.Time
}

func NewIndex(repo RepoInterface) *Index {
	return &Index{
		repo:       repo,
		refreshTTL: defaultRefreshTTL,
		byID:       make(map[string]*Product),
	}
}

// Products returns the full catalog, for browsing.
func (i *Index) Products(ctx context.Context) ([]*Product, error) {
	if err := i.ensureFresh(ctx); err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]*Product, len(i.products))
	copy(out, i.products)
	return out, nil
}

// Resolve joins a (productID, variantID) reference to its priced
// attributes. The unit price is computed from base price and adjustment
// on every call so catalog updates take effect immediately after a
// refresh.
func (i *Index) Resolve(ctx context.Context, productID, variantID string) (Resolved, error) {
	if err := i.ensureFresh(ctx); err != nil {
		return Resolved{}, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	product, exists := i.byID[productID]
	if !exists {
		return Resolved{}, ErrNotInCatalog
	}

	for _, variant := range product.Variants {
		if variant.ID == variantID {
			return Resolved{
				ProductName:  product.Name,
				VariantColor: variant.Color,
				ImageURL:     variant.ImageURL,
				UnitPrice:    product.BasePrice + variant.PriceAdjustment,
			}, nil
		}
	}

	return Resolved{}, ErrNotInCatalog
}

func (i *Index) ensureFresh(ctx context.Context) error {
	i.mu.RLock()
	fresh := !i.loadedAt.IsZero() && time.Since(i.loadedAt) < i.refreshTTL
	i.mu.RUnlock()
	if fresh {
		return nil
	}

	// Singleflight collapses concurrent refreshes into one repo query.
	_, err, _ := i.sfg.Do("refresh", func() (interface{}, error) {
		i.mu.RLock()
		fresh := !i.loadedAt.IsZero() && time.Since(i.loadedAt) < i.refreshTTL
		i.mu.RUnlock()
		if fresh {
			return nil, nil
		}

		products, err := i.repo.GetAllProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}

		byID := make(map[string]*Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		i.mu.Lock()
		i.products = products
		i.byID = byID
		i.loadedAt = time.Now()
		i.mu.Unlock()
		return nil, nil
	})

	return err
}
