package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	smerrors "github.com/abgdnv/storemanager/internal/errors"
	"github.com/abgdnv/storemanager/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockInventory is an in-memory ProductInventory with the same conditional
// semantics as the real store: a change that would drive stock negative is
// refused atomically.
type mockInventory struct {
	mu      sync.Mutex
	stock   map[int64]int64
	failOn  map[int64]error
	adjusts int
}

func newMockInventory(stock map[int64]int64) *mockInventory {
	return &mockInventory{
		stock:  stock,
		failOn: make(map[int64]error),
	}
}

func (m *mockInventory) FindByID(_ context.Context, id int64) (*store.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	quantity, ok := m.stock[id]
	if !ok {
		return nil, smerrors.ErrProductNotFound
	}
	return &store.Product{ID: id, Name: fmt.Sprintf("product-%d", id), Quantity: quantity}, nil
}

func (m *mockInventory) AdjustQuantity(_ context.Context, id int64, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjusts++
	if err := m.failOn[id]; err != nil {
		return err
	}
	quantity, ok := m.stock[id]
	if !ok {
		return smerrors.ErrProductNotFound
	}
	if quantity+delta < 0 {
		return smerrors.ErrInsufficientStock
	}
	m.stock[id] = quantity + delta
	return nil
}

func (m *mockInventory) quantity(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[id]
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestReconciler_Apply_Debit(t *testing.T) {
	inv := newMockInventory(map[int64]int64{1: 10, 2: 5})
	r := NewReconciler(inv, testLogger())

	err := r.Apply(context.Background(), Debit, []Line{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 5},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), inv.quantity(1))
	assert.Equal(t, int64(0), inv.quantity(2))
}

func TestReconciler_Apply_Credit(t *testing.T) {
	inv := newMockInventory(map[int64]int64{1: 5})
	r := NewReconciler(inv, testLogger())

	err := r.Apply(context.Background(), Credit, []Line{{ProductID: 1, Quantity: 3}})

	require.NoError(t, err)
	assert.Equal(t, int64(8), inv.quantity(1))
}

func TestReconciler_Apply_DeniedBatchWritesNothing(t *testing.T) {
	inv := newMockInventory(map[int64]int64{1: 10, 2: 5})
	r := NewReconciler(inv, testLogger())

	err := r.Apply(context.Background(), Debit, []Line{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 6},
	})

	require.ErrorIs(t, err, smerrors.ErrInsufficientStock)
	assert.Equal(t, int64(10), inv.quantity(1))
	assert.Equal(t, int64(5), inv.quantity(2))
	assert.Zero(t, inv.adjusts, "a rejected batch must not issue a single write")
}

func TestReconciler_Apply_UnknownProduct(t *testing.T) {
	inv := newMockInventory(map[int64]int64{1: 10})
	r := NewReconciler(inv, testLogger())

	err := r.Apply(context.Background(), Debit, []Line{{ProductID: 42, Quantity: 1}})

	require.ErrorIs(t, err, smerrors.ErrProductNotFound)
	assert.Equal(t, int64(10), inv.quantity(1))
}

func TestReconciler_Apply_PartialFailureIsCompensated(t *testing.T) {
	inv := newMockInventory(map[int64]int64{1: 10, 2: 10})
	inv.failOn[2] = errors.New("write failed")
	r := NewReconciler(inv, testLogger())

	err := r.Apply(context.Background(), Debit, []Line{
		{ProductID: 1, Quantity: 4},
		{ProductID: 2, Quantity: 4},
	})

	require.Error(t, err)
	assert.Equal(t, int64(10), inv.quantity(1), "applied debit must be credited back")
	assert.Equal(t, int64(10), inv.quantity(2))
}

// Two concurrent debits of 6 against a stock of 10 both pass the plan read,
// but the conditional write lets exactly one of them through.
func TestReconciler_Apply_ConcurrentSales(t *testing.T) {
	inv := newMockInventory(map[int64]int64{1: 10})
	r := NewReconciler(inv, testLogger())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = r.Apply(context.Background(), Debit, []Line{{ProductID: 1, Quantity: 6}})
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, smerrors.ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, failed, "exactly one of the two concurrent sales must be refused")
	assert.Equal(t, int64(4), inv.quantity(1))
}
