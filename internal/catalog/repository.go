package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

// RepoInterface is the read-only catalog data source. Consumers define
// this interface, not the sqlite implementation.
type RepoInterface interface {
	GetAllProducts(ctx context.Context) ([]*Product, error)
	RunMigrations(migrationsPath string) error
	Close() error
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) GetAllProducts(ctx context.Context) ([]*Product, error) {
	query := `
		SELECT id, name, base_price, category, tags, rating
		FROM products
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	byID := make(map[string]*Product)
	for rows.Next() {
		p := &Product{}
		var tagsJSON []byte
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.BasePrice,
			&p.Category,
			&tagsJSON,
			&p.Rating,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if err := json.Unmarshal(tagsJSON, &p.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal product tags: %w", err)
		}
		products = append(products, p)
		byID[p.ID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if err := r.loadVariants(ctx, byID); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *Repository) loadVariants(ctx context.Context, byID map[string]*Product) error {
	query := `
		SELECT id, product_id, color, price_adjustment, image_url, sizes
		FROM variants
		ORDER BY product_id, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		var productID string
		var sizesJSON []byte
		err := rows.Scan(
			&v.ID,
			&productID,
			&v.Color,
			&v.PriceAdjustment,
			&v.ImageURL,
			&sizesJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to scan variant: %w", err)
		}
		if err := json.Unmarshal(sizesJSON, &v.Sizes); err != nil {
			return fmt.Errorf("unmarshal variant sizes: %w", err)
		}

		// Variants of deleted products are skipped, not an error.
		if p, exists := byID[productID]; exists {
			p.Variants = append(p.Variants, v)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
