// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a row of the products table.
type Product struct {
	ID       int64
	Name     string
	Brand    *string
	Price    decimal.Decimal
	Quantity int32
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations.
type ProductStore interface {
	// FindAll returns products in id order, at most limit rows.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, limit int32) ([]Product, error)

	// FindByName returns all products whose name matches case-insensitively.
	FindByName(ctx context.Context, name string) ([]Product, error)

	// FindByBrand returns all products whose brand matches case-insensitively.
	FindByBrand(ctx context.Context, brand string) ([]Product, error)

	// FindByNameAndBrand returns all products whose name and brand both
	// match case-insensitively.
	FindByNameAndBrand(ctx context.Context, name, brand string) ([]Product, error)

	// FindBelowQuantity returns all products with quantity strictly less
	// than the given threshold.
	FindBelowQuantity(ctx context.Context, threshold int32) ([]Product, error)

	// FindByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// Create adds a new product; the store assigns the id.
	Create(ctx context.Context, name string, brand *string, price decimal.Decimal, quantity int32) (*Product, error)

	// Update overwrites an existing product's fields.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, product Product) (*Product, error)

	// DeleteByID removes a product by its ID. Deleting an id that does not
	// exist is not an error.
	DeleteByID(ctx context.Context, id int64) error
}
