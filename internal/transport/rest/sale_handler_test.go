package rest

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	smerrors "github.com/abgdnv/storemanager/internal/errors"
	"github.com/abgdnv/storemanager/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// mockSaleService is a mock implementation of the SaleService interface.
type mockSaleService struct {
	rows  []service.SaleRowDto
	lines []service.SaleLineDto
	err   error
}

func (m *mockSaleService) FindAll(_ context.Context) ([]service.SaleRowDto, error) {
	return m.rows, m.err
}

func (m *mockSaleService) FindByID(_ context.Context, _ int64) ([]service.SaleLineDto, error) {
	return m.lines, m.err
}

func (m *mockSaleService) Create(_ context.Context, items []service.SaleItemCreateDto) (*service.SaleCreateResultDto, error) {
	if m.err != nil {
		return nil, m.err
	}
	sold := make([]service.SaleItemDto, len(items))
	for i, item := range items {
		sold[i] = service.SaleItemDto{ProductID: *item.ProductID, Quantity: *item.Quantity}
	}
	return &service.SaleCreateResultDto{ID: 3, ItemsSold: sold}, nil
}

func (m *mockSaleService) Update(_ context.Context, id int64, items []service.SaleItemCreateDto) (*service.SaleUpdateResultDto, error) {
	if m.err != nil {
		return nil, m.err
	}
	updated := make([]service.SaleItemDto, len(items))
	for i, item := range items {
		updated[i] = service.SaleItemDto{ProductID: *item.ProductID, Quantity: *item.Quantity}
	}
	return &service.SaleUpdateResultDto{ID: id, ItemUpdated: updated}, nil
}

func (m *mockSaleService) Remove(_ context.Context, _ int64) error {
	return m.err
}

func newSaleRouter(svc service.SaleService) *chi.Mux {
	r := chi.NewRouter()
	h := NewSaleHandler(svc, slog.New(slog.DiscardHandler))
	h.RegisterRoutes(r)
	return r
}

func TestSaleHandler_FindAll(t *testing.T) {
	tests := []struct {
		name       string
		service    *mockSaleService
		wantStatus int
		wantBody   string
	}{
		{
			name: "Success",
			service: &mockSaleService{rows: []service.SaleRowDto{
				{SaleID: 1, Date: "2022-07-01T12:00:00Z", ProductID: 1, Quantity: 2},
				{SaleID: 1, Date: "2022-07-01T12:00:00Z", ProductID: 2, Quantity: 3},
			}},
			wantStatus: http.StatusOK,
			wantBody: `[
				{"saleId":1,"date":"2022-07-01T12:00:00Z","productId":1,"quantity":2},
				{"saleId":1,"date":"2022-07-01T12:00:00Z","productId":2,"quantity":3}
			]`,
		},
		{
			name:       "Failure - no sales",
			service:    &mockSaleService{err: smerrors.ErrNoSales},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"No sale was found"}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newSaleRouter(tc.service)

			rec := doRequest(t, router, http.MethodGet, "/sales", "")

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestSaleHandler_FindByID(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		service    *mockSaleService
		wantStatus int
		wantBody   string
	}{
		{
			name:   "Success",
			target: "/sales/1",
			service: &mockSaleService{lines: []service.SaleLineDto{
				{Date: "2022-07-01T12:00:00Z", ProductID: 1, Quantity: 2},
			}},
			wantStatus: http.StatusOK,
			wantBody:   `[{"date":"2022-07-01T12:00:00Z","productId":1,"quantity":2}]`,
		},
		{
			name:       "Failure - sale not found",
			target:     "/sales/999",
			service:    &mockSaleService{err: smerrors.ErrSaleNotFound},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"Sale not found"}`,
		},
		{
			name:       "Failure - non-numeric id",
			target:     "/sales/abc",
			service:    &mockSaleService{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"\"id\" must be a number!"}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newSaleRouter(tc.service)

			rec := doRequest(t, router, http.MethodGet, tc.target, "")

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestSaleHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		service    *mockSaleService
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Success",
			body:       `[{"productId": 1, "quantity": 2}, {"productId": 2, "quantity": 5}]`,
			service:    &mockSaleService{},
			wantStatus: http.StatusCreated,
			wantBody: `{"id":3,"itemsSold":[
				{"productId":1,"quantity":2},
				{"productId":2,"quantity":5}
			]}`,
		},
		{
			name:       "Failure - body is not an array",
			body:       `{"productId": 1, "quantity": 2}`,
			service:    &mockSaleService{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"body must be an array"}`,
		},
		{
			name:       "Failure - empty array",
			body:       `[]`,
			service:    &mockSaleService{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"body must be an array"}`,
		},
		{
			name:       "Failure - productId missing",
			body:       `[{"quantity": 2}]`,
			service:    &mockSaleService{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"\"productId\" is required"}`,
		},
		{
			name:       "Failure - quantity missing on second item",
			body:       `[{"productId": 1, "quantity": 2}, {"productId": 2}]`,
			service:    &mockSaleService{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"\"quantity\" is required"}`,
		},
		{
			name:       "Failure - quantity below one",
			body:       `[{"productId": 1, "quantity": 0}]`,
			service:    &mockSaleService{},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"message":"\"quantity\" must be larger than or equal to 1"}`,
		},
		{
			name:       "Failure - duplicate productId",
			body:       `[{"productId": 1, "quantity": 2}, {"productId": 1, "quantity": 3}]`,
			service:    &mockSaleService{},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"message":"duplicate \"productId\" in sale"}`,
		},
		{
			name:       "Failure - unknown product",
			body:       `[{"productId": 999, "quantity": 2}]`,
			service:    &mockSaleService{err: smerrors.ErrProductNotFound},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"Product not found"}`,
		},
		{
			name:       "Failure - insufficient stock",
			body:       `[{"productId": 1, "quantity": 9999}]`,
			service:    &mockSaleService{err: smerrors.ErrInsufficientStock},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"message":"Such amount is not permitted to sell"}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newSaleRouter(tc.service)

			rec := doRequest(t, router, http.MethodPost, "/sales", tc.body)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestSaleHandler_Update(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       string
		service    *mockSaleService
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Success",
			target:     "/sales/1",
			body:       `[{"productId": 1, "quantity": 8}]`,
			service:    &mockSaleService{},
			wantStatus: http.StatusOK,
			wantBody:   `{"id":1,"itemUpdated":[{"productId":1,"quantity":8}]}`,
		},
		{
			name:       "Failure - sale not found",
			target:     "/sales/999",
			body:       `[{"productId": 1, "quantity": 8}]`,
			service:    &mockSaleService{err: smerrors.ErrSaleNotFound},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"Sale not found"}`,
		},
		{
			name:       "Failure - item not part of the sale",
			target:     "/sales/1",
			body:       `[{"productId": 42, "quantity": 8}]`,
			service:    &mockSaleService{err: smerrors.ErrSaleItemNotFound},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"Product not found"}`,
		},
		{
			name:       "Failure - insufficient stock",
			target:     "/sales/1",
			body:       `[{"productId": 1, "quantity": 9999}]`,
			service:    &mockSaleService{err: smerrors.ErrInsufficientStock},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"message":"Such amount is not permitted to sell"}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newSaleRouter(tc.service)

			rec := doRequest(t, router, http.MethodPut, tc.target, tc.body)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestSaleHandler_Remove(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router := newSaleRouter(&mockSaleService{})

		rec := doRequest(t, router, http.MethodDelete, "/sales/1", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("Failure - sale not found", func(t *testing.T) {
		router := newSaleRouter(&mockSaleService{err: smerrors.ErrSaleNotFound})

		rec := doRequest(t, router, http.MethodDelete, "/sales/999", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"message":"Sale not found"}`, rec.Body.String())
	})
}
