// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	apperrors "github.com/warehall/stockroom/internal/errors"
	"github.com/warehall/stockroom/internal/store"
)

// findAllLimit caps the unfiltered listing.
const findAllLimit = 1000

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Find resolves the optional name/brand filter. Both nil returns all
	// products capped at 1000 rows; a single filter matches that field
	// case-insensitively; both filters must match together.
	Find(ctx context.Context, name, brand *string) ([]ProductDto, error)

	// Create validates the fields and persists a new product; the store
	// assigns the id. Validation checks name, then price, then quantity,
	// and stops at the first violation.
	Create(ctx context.Context, params ProductParams) (*ProductDto, error)

	// Update applies the supplied (non-nil) fields to an existing product,
	// validating each the same way as Create. Fields left nil are unchanged.
	// Returns ErrProductNotFound if no product exists with the given id.
	Update(ctx context.Context, id int64, params ProductParams) (*ProductDto, error)

	// RemoveByID deletes the product with the given id. Removing an id
	// that does not exist is not an error.
	RemoveByID(ctx context.Context, id int64) error

	// Leftovers returns all products with quantity strictly below the
	// configured leftover threshold.
	Leftovers(ctx context.Context) ([]ProductDto, error)
}

// ProductParams carries the optional write fields of a product.
// A nil field means "not supplied".
type ProductParams struct {
	Name     *string
	Brand    *string
	Price    *decimal.Decimal
	Quantity *int32
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Brand    *string `json:"brand"`
	Price    float64 `json:"price"`
	Quantity int32   `json:"quantity"`
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository        store.ProductStore
	leftoverThreshold int32
}

// NewService creates a new instance of ProductService with the provided
// repository and leftover threshold.
func NewService(repo store.ProductStore, leftoverThreshold int32) *Service {
	return &Service{
		repository:        repo,
		leftoverThreshold: leftoverThreshold,
	}
}

// Find resolves the optional name/brand filter to the matching store query.
func (s *Service) Find(ctx context.Context, name, brand *string) ([]ProductDto, error) {
	var products []store.Product
	var err error
	switch {
	case name == nil && brand == nil:
		products, err = s.repository.FindAll(ctx, findAllLimit)
	case name != nil && brand == nil:
		products, err = s.repository.FindByName(ctx, *name)
	case name == nil:
		products, err = s.repository.FindByBrand(ctx, *brand)
	default:
		products, err = s.repository.FindByNameAndBrand(ctx, *name, *brand)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toDtos(products), nil
}

// Create validates the fields and persists a new product.
func (s *Service) Create(ctx context.Context, params ProductParams) (*ProductDto, error) {
	if err := validateName(params.Name); err != nil {
		return nil, err
	}
	if err := validatePrice(params.Price); err != nil {
		return nil, err
	}
	if err := validateQuantity(params.Quantity); err != nil {
		return nil, err
	}

	created, err := s.repository.Create(ctx, *params.Name, params.Brand, *params.Price, *params.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toDto(created), nil
}

// Update looks the product up and overwrites the supplied fields.
func (s *Service) Update(ctx context.Context, id int64, params ProductParams) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if err := validateName(params.Name); err != nil {
			return nil, err
		}
		product.Name = *params.Name
	}
	if params.Brand != nil {
		product.Brand = params.Brand
	}
	if params.Price != nil {
		if err := validatePrice(params.Price); err != nil {
			return nil, err
		}
		product.Price = *params.Price
	}
	if params.Quantity != nil {
		if err := validateQuantity(params.Quantity); err != nil {
			return nil, err
		}
		product.Quantity = *params.Quantity
	}

	updated, err := s.repository.Update(ctx, *product)
	if err != nil {
		return nil, err
	}
	return toDto(updated), nil
}

// RemoveByID deletes the product with the given id via the store.
func (s *Service) RemoveByID(ctx context.Context, id int64) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	return nil
}

// Leftovers returns all products below the configured threshold.
func (s *Service) Leftovers(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindBelowQuantity(ctx, s.leftoverThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leftovers: %w", err)
	}
	return toDtos(products), nil
}

func validateName(name *string) error {
	if name == nil {
		return apperrors.ErrNameMissing
	}
	if *name == "" {
		return apperrors.ErrNameEmpty
	}
	return nil
}

func validatePrice(price *decimal.Decimal) error {
	if price == nil {
		return apperrors.ErrPriceMissing
	}
	if price.IsNegative() {
		return apperrors.ErrPriceNegative
	}
	return nil
}

func validateQuantity(quantity *int32) error {
	if quantity == nil {
		return apperrors.ErrQuantityMissing
	}
	if *quantity < 0 {
		return apperrors.ErrQuantityNegative
	}
	return nil
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:       product.ID,
		Name:     product.Name,
		Brand:    product.Brand,
		Price:    product.Price.InexactFloat64(),
		Quantity: product.Quantity,
	}
}

func toDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i, item := range products {
		dtos[i] = *toDto(&item)
	}
	return dtos
}
