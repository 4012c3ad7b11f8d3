// Package service provides the implementation of product and sale business logic.
package service

import (
	"context"
	"errors"
	"fmt"

	smerrors "github.com/abgdnv/storemanager/internal/errors"
	"github.com/abgdnv/storemanager/internal/store"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindAll returns all products ordered by ascending id.
	// Returns ErrNoProducts if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// Create adds a new product to the system.
	// Returns ErrProductExists if a product with the same name already exists.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update modifies an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, product ProductCreateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error
}

// Products implements ProductService.
type Products struct {
	repository store.ProductStore
}

// NewProducts creates a new instance of ProductService with the provided repository.
func NewProducts(repo store.ProductStore) *Products {
	return &Products{
		repository: repo,
	}
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// ProductCreateDto represents the inbound payload for creating or updating a product.
// Fields are pointers so a missing field can be told apart from a zero value.
type ProductCreateDto struct {
	Name     *string `json:"name"     validate:"required,min=5"`
	Quantity *int64  `json:"quantity" validate:"required,gte=1"`
}

// FindAll retrieves all products and returns them as ProductDtos.
// Returns ErrNoProducts if the store has zero rows.
func (s *Products) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	if len(products) == 0 {
		return nil, smerrors.ErrNoProducts
	}
	productDtos := make([]ProductDto, len(products))
	for i, item := range products {
		productDtos[i] = *toProductDto(&item)
	}
	return productDtos, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Products) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toProductDto(product), nil
}

// Create creates a new product and returns it as a ProductDto.
// The name must be unique; Returns ErrProductExists on a duplicate.
func (s *Products) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	existing, err := s.repository.FindByName(ctx, *product.Name)
	if err != nil && !errors.Is(err, smerrors.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to check product name: %w", err)
	}
	if existing != nil {
		return nil, smerrors.ErrProductExists
	}

	created, err := s.repository.Create(ctx, *product.Name, *product.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toProductDto(created), nil
}

// Update modifies an existing product's details and returns the updated product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Products) Update(ctx context.Context, id int64, product ProductCreateDto) (*ProductDto, error) {
	if _, err := s.repository.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}

	updated, err := s.repository.Update(ctx, id, *product.Name, *product.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}
	return toProductDto(updated), nil
}

// DeleteByID deletes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Products) DeleteByID(ctx context.Context, id int64) error {
	return s.repository.DeleteByID(ctx, id)
}

// toProductDto converts a store.Product to a ProductDto.
func toProductDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:       product.ID,
		Name:     product.Name,
		Quantity: product.Quantity,
	}
}
