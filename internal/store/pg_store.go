package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	apperrors "github.com/warehall/stockroom/internal/errors"
)

const productColumns = "id, name, brand, price, quantity"

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// FindAll returns products in id order, at most limit rows.
func (p *PgStore) FindAll(ctx context.Context, limit int32) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY id LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	return collectProducts(rows)
}

// FindByName returns all products whose name matches case-insensitively.
func (p *PgStore) FindByName(ctx context.Context, name string) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE LOWER(name) = LOWER($1) ORDER BY id", name)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by name: %w", err)
	}
	return collectProducts(rows)
}

// FindByBrand returns all products whose brand matches case-insensitively.
func (p *PgStore) FindByBrand(ctx context.Context, brand string) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE LOWER(brand) = LOWER($1) ORDER BY id", brand)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by brand: %w", err)
	}
	return collectProducts(rows)
}

// FindByNameAndBrand returns all products whose name and brand both match case-insensitively.
func (p *PgStore) FindByNameAndBrand(ctx context.Context, name, brand string) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE LOWER(name) = LOWER($1) AND LOWER(brand) = LOWER($2) ORDER BY id",
		name, brand)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by name and brand: %w", err)
	}
	return collectProducts(rows)
}

// FindBelowQuantity returns all products with quantity strictly below threshold.
func (p *PgStore) FindBelowQuantity(ctx context.Context, threshold int32) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE quantity < $1 ORDER BY id", threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to find products below quantity: %w", err)
	}
	return collectProducts(rows)
}

// FindByID retrieves a product by its identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	row := p.db.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// Create adds a new product to the system; the database assigns the id.
func (p *PgStore) Create(ctx context.Context, name string, brand *string, price decimal.Decimal, quantity int32) (*Product, error) {
	row := p.db.QueryRow(ctx,
		"INSERT INTO products (name, brand, price, quantity) VALUES ($1, $2, $3, $4) RETURNING "+productColumns,
		name, brand, price, quantity)
	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update overwrites an existing product's fields.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, product Product) (*Product, error) {
	row := p.db.QueryRow(ctx,
		"UPDATE products SET name = $2, brand = $3, price = $4, quantity = $5 WHERE id = $1 RETURNING "+productColumns,
		product.ID, product.Name, product.Brand, product.Price, product.Quantity)
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

// DeleteByID removes a product by its ID inside a single transaction.
// Deleting an id that does not exist is not an error.
func (p *PgStore) DeleteByID(ctx context.Context, id int64) error {
	return p.withTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM products WHERE id = $1", id); err != nil {
			return fmt.Errorf("failed to delete product by ID: %w", err)
		}
		return nil
	})
}

// withTransaction runs fn inside a transaction, committing on success and
// rolling back on error.
func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Price, &p.Quantity); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Price, &p.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}
	return products, nil
}
