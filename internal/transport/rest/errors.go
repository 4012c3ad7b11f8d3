package rest

import (
	"errors"
	"log/slog"
	"net/http"

	smerrors "github.com/abgdnv/storemanager/internal/errors"
	"github.com/abgdnv/storemanager/pkg/web"
)

// Response messages for domain errors.
const (
	msgNoProductFound  = "No product was found"
	msgProductNotFound = "Product not found"
	msgProductExists   = "Product already exists"
	msgNoSaleFound     = "No sale was found"
	msgSaleNotFound    = "Sale not found"
	msgDeniedAmount    = "Such amount is not permitted to sell"
	msgInternalError   = "Internal server error"
)

// respondServiceError maps a service error to its HTTP status and message.
// Anything outside the domain taxonomy surfaces as an opaque 500.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, smerrors.ErrNoProducts):
		web.RespondMessage(w, logger, http.StatusNotFound, msgNoProductFound)
	case errors.Is(err, smerrors.ErrProductNotFound):
		web.RespondMessage(w, logger, http.StatusNotFound, msgProductNotFound)
	case errors.Is(err, smerrors.ErrProductExists):
		web.RespondMessage(w, logger, http.StatusConflict, msgProductExists)
	case errors.Is(err, smerrors.ErrNoSales):
		web.RespondMessage(w, logger, http.StatusNotFound, msgNoSaleFound)
	case errors.Is(err, smerrors.ErrSaleNotFound):
		web.RespondMessage(w, logger, http.StatusNotFound, msgSaleNotFound)
	case errors.Is(err, smerrors.ErrSaleItemNotFound):
		web.RespondMessage(w, logger, http.StatusNotFound, msgProductNotFound)
	case errors.Is(err, smerrors.ErrInsufficientStock):
		web.RespondMessage(w, logger, http.StatusUnprocessableEntity, msgDeniedAmount)
	default:
		logger.Error("Unexpected service error", "error", err)
		web.RespondMessage(w, logger, http.StatusInternalServerError, msgInternalError)
	}
}
