package store

import (
	"context"
	"errors"
	"fmt"

	smerrors "github.com/abgdnv/storemanager/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSaleStore implements SaleStore using PostgreSQL as the data store.
type PgSaleStore struct {
	db *pgxpool.Pool
}

// NewPgSaleStore creates a new instance of SaleStore using a PostgreSQL connection pool.
func NewPgSaleStore(dbp *pgxpool.Pool) *PgSaleStore {
	return &PgSaleStore{db: dbp}
}

// FindAll returns one row per line item across all sales, sorted by sale id.
func (p *PgSaleStore) FindAll(ctx context.Context) ([]SaleItemRow, error) {
	rows, err := p.db.Query(ctx,
		`SELECT s.id, s.date, sp.product_id, sp.quantity
		   FROM sales s
		   JOIN sales_products sp ON sp.sale_id = s.id
		  ORDER BY s.id, sp.product_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to find all sales: %w", err)
	}
	defer rows.Close()

	return scanSaleItemRows(rows)
}

// FindByID returns the line items of one sale, sorted by product id.
// Returns ErrSaleNotFound if no sale exists with the given ID.
func (p *PgSaleStore) FindByID(ctx context.Context, saleID int64) ([]SaleItemRow, error) {
	rows, err := p.db.Query(ctx,
		`SELECT s.id, s.date, sp.product_id, sp.quantity
		   FROM sales s
		   JOIN sales_products sp ON sp.sale_id = s.id
		  WHERE s.id = $1
		  ORDER BY sp.product_id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}
	defer rows.Close()

	items, err := scanSaleItemRows(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, smerrors.ErrSaleNotFound
	}
	return items, nil
}

// CreateSale adds a new sale with its line items.
// Runs in a transaction so the sale record and its items commit together.
func (p *PgSaleStore) CreateSale(ctx context.Context, items []SaleItem) (*Sale, []SaleItem, error) {
	var sale Sale
	created := make([]SaleItem, 0, len(items))

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO sales (date) VALUES (now()) RETURNING id, date`).
			Scan(&sale.ID, &sale.Date); err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}
		for _, item := range items {
			if _, err := tx.Exec(ctx,
				`INSERT INTO sales_products (sale_id, product_id, quantity) VALUES ($1, $2, $3)`,
				sale.ID, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("failed to create sale item: %w", err)
			}
			created = append(created, SaleItem{SaleID: sale.ID, ProductID: item.ProductID, Quantity: item.Quantity})
		}
		return nil
	})

	if txErr != nil {
		return nil, nil, txErr
	}
	return &sale, created, nil
}

// UpdateItems rewrites the quantity of each line item, matched by sale id and product id.
func (p *PgSaleStore) UpdateItems(ctx context.Context, saleID int64, items []SaleItem) error {
	return p.withTransaction(ctx, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, `SELECT id FROM sales WHERE id = $1`, saleID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return smerrors.ErrSaleNotFound
			}
			return fmt.Errorf("failed to find sale by ID: %w", err)
		}
		for _, item := range items {
			tag, err := tx.Exec(ctx,
				`UPDATE sales_products SET quantity = $3 WHERE sale_id = $1 AND product_id = $2`,
				saleID, item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("failed to update sale item: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return smerrors.ErrSaleItemNotFound
			}
		}
		return nil
	})
}

// DeleteByID removes a sale by its ID; line items are removed by the cascade.
// Returns ErrSaleNotFound if no sale exists with the given ID.
func (p *PgSaleStore) DeleteByID(ctx context.Context, saleID int64) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM sales WHERE id = $1`, saleID)
	if err != nil {
		return fmt.Errorf("failed to delete sale by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return smerrors.ErrSaleNotFound
	}
	return nil
}

func (p *PgSaleStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return smerrors.ErrTransactionBegin
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return smerrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return smerrors.ErrTransactionCommit
	}

	return nil
}

func scanSaleItemRows(rows pgx.Rows) ([]SaleItemRow, error) {
	items := make([]SaleItemRow, 0)
	for rows.Next() {
		var item SaleItemRow
		if err := rows.Scan(&item.SaleID, &item.Date, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan sale row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sale rows: %w", err)
	}
	return items, nil
}
