// Package app contains the application setup for the store manager service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/storemanager/internal/config"
	"github.com/abgdnv/storemanager/internal/inventory"
	"github.com/abgdnv/storemanager/internal/service"
	"github.com/abgdnv/storemanager/internal/store"
	"github.com/abgdnv/storemanager/internal/transport/rest"
	"github.com/abgdnv/storemanager/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	Products service.ProductService
	Sales    service.SaleService
	Logger   *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, logger *slog.Logger) *Dependencies {
	productStore := store.NewPgProductStore(dbPool)
	saleStore := store.NewPgSaleStore(dbPool)
	reconciler := inventory.NewReconciler(productStore, logger)

	return &Dependencies{
		Products: service.NewProducts(productStore),
		Sales:    service.NewSales(saleStore, productStore, reconciler, logger),
		Logger:   logger,
	}
}

// SetupHttpHandler initializes the HTTP router and routes for the service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewProductHandler(deps.Products, deps.Logger)
	productHandler.RegisterRoutes(mux)
	saleHandler := rest.NewSaleHandler(deps.Sales, deps.Logger)
	saleHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
