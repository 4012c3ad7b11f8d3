// Package inventory reconciles sale line items against product stock.
package inventory

import (
	"context"
	"fmt"
	"log/slog"

	smerrors "github.com/abgdnv/storemanager/internal/errors"
	"github.com/abgdnv/storemanager/internal/store"
	"golang.org/x/sync/errgroup"
)

// Direction selects whether a reconciliation batch decreases or increases stock.
type Direction int

const (
	// Debit decreases stock; used when a sale is created.
	Debit Direction = iota
	// Credit increases stock; used when a sale is removed.
	Credit
)

// Line is one (productId, quantity) entry of a reconciliation batch.
type Line struct {
	ProductID int64
	Quantity  int64
}

// Delta is a signed stock change for one product. Negative debits, positive credits.
type Delta struct {
	ProductID int64
	Change    int64
}

// ProductInventory is the slice of the product store the reconciler needs.
type ProductInventory interface {
	FindByID(ctx context.Context, id int64) (*store.Product, error)
	AdjustQuantity(ctx context.Context, id int64, delta int64) error
}

// Reconciler computes and applies stock changes for one sale operation.
type Reconciler struct {
	products ProductInventory
	logger   *slog.Logger
}

// NewReconciler creates a new Reconciler over the given product inventory.
func NewReconciler(products ProductInventory, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		products: products,
		logger:   logger.With("component", "inventory"),
	}
}

// Apply reconciles the batch of line items in the given direction.
// Returns ErrInsufficientStock, without writing anything, if any resulting
// quantity would be negative; ErrProductNotFound if a product is missing.
func (r *Reconciler) Apply(ctx context.Context, direction Direction, lines []Line) error {
	deltas := make([]Delta, len(lines))
	for i, line := range lines {
		change := line.Quantity
		if direction == Debit {
			change = -change
		}
		deltas[i] = Delta{ProductID: line.ProductID, Change: change}
	}
	return r.ApplyDeltas(ctx, deltas)
}

// ApplyDeltas reconciles a batch of signed stock changes.
//
// The batch is planned first: every product is read and its prospective final
// quantity computed, so a batch that would drive any stock negative is rejected
// before a single write. The writes then fan out concurrently and are joined;
// each write is conditional at the store, which closes the window between plan
// and apply under concurrent sales. If a write fails mid-batch, the changes
// already applied are compensated with the inverse delta.
func (r *Reconciler) ApplyDeltas(ctx context.Context, deltas []Delta) error {
	if err := r.plan(ctx, deltas); err != nil {
		return err
	}

	applied := make([]bool, len(deltas))
	g, gCtx := errgroup.WithContext(ctx)
	for i, delta := range deltas {
		g.Go(func() error {
			if err := r.products.AdjustQuantity(gCtx, delta.ProductID, delta.Change); err != nil {
				return fmt.Errorf("failed to adjust stock of product %d: %w", delta.ProductID, err)
			}
			applied[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.compensate(ctx, deltas, applied)
		return err
	}
	return nil
}

// plan reads current stock for every delta and rejects the whole batch if any
// prospective final quantity is negative. No writes occur here.
func (r *Reconciler) plan(ctx context.Context, deltas []Delta) error {
	for _, delta := range deltas {
		product, err := r.products.FindByID(ctx, delta.ProductID)
		if err != nil {
			return err
		}
		if product.Quantity+delta.Change < 0 {
			return smerrors.ErrInsufficientStock
		}
	}
	return nil
}

// compensate reverts the deltas that were applied before the batch failed.
// Best effort: a failed compensation is logged, not retried.
func (r *Reconciler) compensate(ctx context.Context, deltas []Delta, applied []bool) {
	for i, delta := range deltas {
		if !applied[i] {
			continue
		}
		if err := r.products.AdjustQuantity(ctx, delta.ProductID, -delta.Change); err != nil {
			r.logger.Error("failed to compensate stock change",
				"product_id", delta.ProductID,
				"change", -delta.Change,
				"error", err,
			)
		}
	}
}
