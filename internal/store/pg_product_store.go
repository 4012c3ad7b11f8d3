package store

import (
	"context"
	"errors"
	"fmt"

	smerrors "github.com/abgdnv/storemanager/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// PgProductStore implements ProductStore using PostgreSQL as the data store.
type PgProductStore struct {
	db *pgxpool.Pool
}

// NewPgProductStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgProductStore(dbp *pgxpool.Pool) *PgProductStore {
	return &PgProductStore{db: dbp}
}

// FindAll retrieves all products ordered by ascending id.
func (p *PgProductStore) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx, `SELECT id, name, quantity FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var product Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}
	return products, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgProductStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	var product Product
	err := p.db.QueryRow(ctx, `SELECT id, name, quantity FROM products WHERE id = $1`, id).
		Scan(&product.ID, &product.Name, &product.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, smerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

// FindByName retrieves a product by its name.
// Returns ErrProductNotFound if no product exists with the given name.
func (p *PgProductStore) FindByName(ctx context.Context, name string) (*Product, error) {
	var product Product
	err := p.db.QueryRow(ctx, `SELECT id, name, quantity FROM products WHERE name = $1`, name).
		Scan(&product.ID, &product.Name, &product.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, smerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}
	return &product, nil
}

// Create adds a new product to the system.
// Returns ErrProductExists if a product with the same name already exists.
func (p *PgProductStore) Create(ctx context.Context, name string, quantity int64) (*Product, error) {
	var product Product
	err := p.db.QueryRow(ctx,
		`INSERT INTO products (name, quantity) VALUES ($1, $2) RETURNING id, name, quantity`,
		name, quantity).
		Scan(&product.ID, &product.Name, &product.Quantity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, smerrors.ErrProductExists
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// Update modifies an existing product's details.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgProductStore) Update(ctx context.Context, id int64, name string, quantity int64) (*Product, error) {
	var product Product
	err := p.db.QueryRow(ctx,
		`UPDATE products SET name = $2, quantity = $3 WHERE id = $1 RETURNING id, name, quantity`,
		id, name, quantity).
		Scan(&product.ID, &product.Name, &product.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, smerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

// AdjustQuantity applies delta to the product's stock with a conditional update.
// The WHERE clause refuses any change that would drive the stock negative, so two
// concurrent debits cannot both pass the non-negative check.
func (p *PgProductStore) AdjustQuantity(ctx context.Context, id int64, delta int64) error {
	tag, err := p.db.Exec(ctx,
		`UPDATE products SET quantity = quantity + $2 WHERE id = $1 AND quantity + $2 >= 0`,
		id, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust product quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Zero rows means either a missing product or a refused debit.
		if _, err := p.FindByID(ctx, id); err != nil {
			return err
		}
		return smerrors.ErrInsufficientStock
	}
	return nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgProductStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return smerrors.ErrProductNotFound
	}
	return nil
}
