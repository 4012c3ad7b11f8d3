package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	smerrors "github.com/abgdnv/storemanager/internal/errors"
	"github.com/abgdnv/storemanager/internal/inventory"
	"github.com/abgdnv/storemanager/internal/store"
)

// SaleService defines the methods for managing sales.
// It abstracts the underlying business logic and data access.
type SaleService interface {
	// FindAll returns one row per line item across all sales, sorted by sale id.
	// Returns ErrNoSales if no sales exist.
	FindAll(ctx context.Context) ([]SaleRowDto, error)

	// FindByID returns the line items of one sale, sorted by product id.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	FindByID(ctx context.Context, id int64) ([]SaleLineDto, error)

	// Create persists a new sale and debits each referenced product's stock.
	// Returns ErrProductNotFound if any line item references a missing product
	// and ErrInsufficientStock if any debit would drive stock negative.
	Create(ctx context.Context, items []SaleItemCreateDto) (*SaleCreateResultDto, error)

	// Update rewrites the sale's line item quantities and reconciles stock by
	// the delta between the stored and the revised quantity of each item.
	Update(ctx context.Context, id int64, items []SaleItemCreateDto) (*SaleUpdateResultDto, error)

	// Remove deletes a sale and credits each line item's quantity back to stock.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	Remove(ctx context.Context, id int64) error
}

// Sales implements SaleService and coordinates the sale workflow with the
// inventory reconciler.
type Sales struct {
	sales      store.SaleStore
	products   store.ProductStore
	reconciler *inventory.Reconciler
	logger     *slog.Logger
}

// NewSales creates a new instance of SaleService.
func NewSales(sales store.SaleStore, products store.ProductStore, reconciler *inventory.Reconciler, logger *slog.Logger) *Sales {
	return &Sales{
		sales:      sales,
		products:   products,
		reconciler: reconciler,
		logger:     logger.With("component", "sales"),
	}
}

// SaleItemDto represents one line item of a sale.
type SaleItemDto struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// SaleItemCreateDto represents one inbound line item.
// Fields are pointers so a missing field can be told apart from a zero value.
type SaleItemCreateDto struct {
	ProductID *int64 `json:"productId" validate:"required"`
	Quantity  *int64 `json:"quantity"  validate:"required,gte=1"`
}

// SaleRowDto is one line item joined with its parent sale, for the all-sales view.
type SaleRowDto struct {
	SaleID    int64  `json:"saleId"`
	Date      string `json:"date"`
	ProductID int64  `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// SaleLineDto is one line item of a single sale.
type SaleLineDto struct {
	Date      string `json:"date"`
	ProductID int64  `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// SaleCreateResultDto is the response payload for a created sale.
type SaleCreateResultDto struct {
	ID        int64         `json:"id"`
	ItemsSold []SaleItemDto `json:"itemsSold"`
}

// SaleUpdateResultDto is the response payload for an updated sale.
type SaleUpdateResultDto struct {
	ID          int64         `json:"id"`
	ItemUpdated []SaleItemDto `json:"itemUpdated"`
}

// FindAll retrieves every line item across all sales.
// Returns ErrNoSales if the store has zero rows.
func (s *Sales) FindAll(ctx context.Context) ([]SaleRowDto, error) {
	rows, err := s.sales.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	if len(rows) == 0 {
		return nil, smerrors.ErrNoSales
	}
	dtos := make([]SaleRowDto, len(rows))
	for i, row := range rows {
		dtos[i] = SaleRowDto{
			SaleID:    row.SaleID,
			Date:      row.Date.Format(time.RFC3339),
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
		}
	}
	return dtos, nil
}

// FindByID retrieves the line items of one sale.
// Returns ErrSaleNotFound if no sale exists with the given ID.
func (s *Sales) FindByID(ctx context.Context, id int64) ([]SaleLineDto, error) {
	rows, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale by ID %d: %w", id, err)
	}
	dtos := make([]SaleLineDto, len(rows))
	for i, row := range rows {
		dtos[i] = SaleLineDto{
			Date:      row.Date.Format(time.RFC3339),
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
		}
	}
	return dtos, nil
}

// Create persists the sale with its line items and debits stock.
// Every referenced product must exist. If the debit is refused the persisted
// sale is deleted again, so a rejected sale leaves nothing behind.
func (s *Sales) Create(ctx context.Context, items []SaleItemCreateDto) (*SaleCreateResultDto, error) {
	storeItems := make([]store.SaleItem, len(items))
	lines := make([]inventory.Line, len(items))
	for i, item := range items {
		if _, err := s.products.FindByID(ctx, *item.ProductID); err != nil {
			return nil, fmt.Errorf("failed to resolve product %d: %w", *item.ProductID, err)
		}
		storeItems[i] = store.SaleItem{ProductID: *item.ProductID, Quantity: *item.Quantity}
		lines[i] = inventory.Line{ProductID: *item.ProductID, Quantity: *item.Quantity}
	}

	sale, created, err := s.sales.CreateSale(ctx, storeItems)
	if err != nil {
		return nil, fmt.Errorf("failed to persist sale: %w", err)
	}

	if err := s.reconciler.Apply(ctx, inventory.Debit, lines); err != nil {
		// Remove the sale so a refused debit leaves no partially-committed sale.
		if delErr := s.sales.DeleteByID(ctx, sale.ID); delErr != nil {
			s.logger.Error("failed to remove sale after refused debit", "sale_id", sale.ID, "error", delErr)
		}
		return nil, err
	}

	sold := make([]SaleItemDto, len(created))
	for i, item := range created {
		sold[i] = SaleItemDto{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return &SaleCreateResultDto{ID: sale.ID, ItemsSold: sold}, nil
}

// Update rewrites line item quantities and settles the stock difference.
// Every revised item must belong to the sale. A refused or failed stock change
// restores the previous quantities.
func (s *Sales) Update(ctx context.Context, id int64, items []SaleItemCreateDto) (*SaleUpdateResultDto, error) {
	existing, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale by ID %d: %w", id, err)
	}
	previous := make(map[int64]int64, len(existing))
	for _, row := range existing {
		previous[row.ProductID] = row.Quantity
	}

	storeItems := make([]store.SaleItem, len(items))
	oldItems := make([]store.SaleItem, len(items))
	deltas := make([]inventory.Delta, len(items))
	for i, item := range items {
		old, ok := previous[*item.ProductID]
		if !ok {
			return nil, smerrors.ErrSaleItemNotFound
		}
		storeItems[i] = store.SaleItem{SaleID: id, ProductID: *item.ProductID, Quantity: *item.Quantity}
		oldItems[i] = store.SaleItem{SaleID: id, ProductID: *item.ProductID, Quantity: old}
		// Selling more than before debits the difference, selling less credits it.
		deltas[i] = inventory.Delta{ProductID: *item.ProductID, Change: old - *item.Quantity}
	}

	if err := s.sales.UpdateItems(ctx, id, storeItems); err != nil {
		return nil, fmt.Errorf("failed to update sale %d: %w", id, err)
	}

	if err := s.reconciler.ApplyDeltas(ctx, deltas); err != nil {
		if restoreErr := s.sales.UpdateItems(ctx, id, oldItems); restoreErr != nil {
			s.logger.Error("failed to restore sale items after refused stock change", "sale_id", id, "error", restoreErr)
		}
		return nil, err
	}

	updated := make([]SaleItemDto, len(items))
	for i, item := range items {
		updated[i] = SaleItemDto{ProductID: *item.ProductID, Quantity: *item.Quantity}
	}
	return &SaleUpdateResultDto{ID: id, ItemUpdated: updated}, nil
}

// Remove deletes the sale and credits each line item's quantity back to stock.
func (s *Sales) Remove(ctx context.Context, id int64) error {
	rows, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch sale by ID %d: %w", id, err)
	}

	if err := s.sales.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete sale %d: %w", id, err)
	}

	lines := make([]inventory.Line, len(rows))
	for i, row := range rows {
		lines[i] = inventory.Line{ProductID: row.ProductID, Quantity: row.Quantity}
	}
	if err := s.reconciler.Apply(ctx, inventory.Credit, lines); err != nil {
		return fmt.Errorf("failed to credit stock for removed sale %d: %w", id, err)
	}
	return nil
}
