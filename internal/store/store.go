// Package store provides interfaces for product and sale storage operations.
package store

import (
	"context"
	"time"
)

// Product is a row of the products table.
type Product struct {
	ID       int64
	Name     string
	Quantity int64
}

// Sale is a row of the sales table.
type Sale struct {
	ID   int64
	Date time.Time
}

// SaleItem is a row of the sales_products table.
type SaleItem struct {
	SaleID    int64
	ProductID int64
	Quantity  int64
}

// SaleItemRow is one line item joined with its parent sale.
type SaleItemRow struct {
	SaleID    int64
	Date      time.Time
	ProductID int64
	Quantity  int64
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindAll returns all products ordered by ascending id.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindByName retrieves a single product by its name.
	// Returns ErrProductNotFound if no product exists with the given name.
	FindByName(ctx context.Context, name string) (*Product, error)

	// Create adds a new product to the system.
	// Returns ErrProductExists if a product with the same name already exists.
	Create(ctx context.Context, name string, quantity int64) (*Product, error)

	// Update modifies an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, name string, quantity int64) (*Product, error)

	// AdjustQuantity applies delta to the product's stock, refusing any change
	// that would drive the stock negative.
	// Returns ErrInsufficientStock when the change is refused and
	// ErrProductNotFound if no product exists with the given ID.
	AdjustQuantity(ctx context.Context, id int64, delta int64) error

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error
}

// SaleStore is an interface for sale storage operations.
type SaleStore interface {
	// FindAll returns one row per line item across all sales, sorted by sale id.
	// Returns an empty slice if no sales exist.
	FindAll(ctx context.Context) ([]SaleItemRow, error)

	// FindByID returns the line items of one sale, sorted by product id.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	FindByID(ctx context.Context, saleID int64) ([]SaleItemRow, error)

	// CreateSale adds a new sale with its line items in a single transaction.
	// The sale date is assigned by the store.
	CreateSale(ctx context.Context, items []SaleItem) (*Sale, []SaleItem, error)

	// UpdateItems rewrites the quantity of each line item, matched by sale id and product id.
	// Returns ErrSaleNotFound if no sale exists with the given ID and
	// ErrSaleItemNotFound if an item does not belong to the sale.
	UpdateItems(ctx context.Context, saleID int64, items []SaleItem) error

	// DeleteByID removes a sale by its ID; its line items are removed with it.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	DeleteByID(ctx context.Context, saleID int64) error
}
