package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storemanager/internal/service"
	"github.com/abgdnv/storemanager/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type SaleHandler struct {
	service  service.SaleService
	payloads *payloadValidator
	logger   *slog.Logger
}

// NewSaleHandler creates a new instance of SaleHandler with the provided service.
func NewSaleHandler(service service.SaleService, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{
		service:  service,
		payloads: newPayloadValidator(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for sales.
func (h *SaleHandler) RegisterRoutes(r *chi.Mux) {
	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.Remove)
		})
	})
}

// FindAll retrieves every line item across all sales, flattened.
func (h *SaleHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		respondServiceError(w, mLogger, err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved sale list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves the line items of one sale.
func (h *SaleHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, mLogger, err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved sale", "ID", id, "items", len(found))
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new sale.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	items, ok := h.decodeItems(w, r, mLogger)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), items)
	if err != nil {
		respondServiceError(w, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Sale created successfully", "ID", created.ID, "items", len(created.ItemsSold))
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Update rewrites the line item quantities of an existing sale.
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	items, ok := h.decodeItems(w, r, mLogger)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), id, items)
	if err != nil {
		respondServiceError(w, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Sale updated successfully", "ID", id, "items", len(updated.ItemUpdated))
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Remove deletes a sale, crediting its quantities back to stock.
func (h *SaleHandler) Remove(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		respondServiceError(w, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Sale removed successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// decodeItems decodes and validates the sale payload, an array of line items.
func (h *SaleHandler) decodeItems(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger) ([]service.SaleItemCreateDto, bool) {
	var items []service.SaleItemCreateDto
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondMessage(w, mLogger, http.StatusBadRequest, msgBodyMustBeArray)
		return nil, false
	}
	if vErr := h.payloads.Sale(items); vErr != nil {
		mLogger.WarnContext(r.Context(), "Sale payload rejected", "message", vErr.message)
		web.RespondMessage(w, mLogger, vErr.status, vErr.message)
		return nil, false
	}
	return items, true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *SaleHandler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
