// Package app contains the application setup for the stockroom service.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warehall/stockroom/internal/auth"
	"github.com/warehall/stockroom/internal/config"
	"github.com/warehall/stockroom/internal/export"
	"github.com/warehall/stockroom/internal/service"
	"github.com/warehall/stockroom/internal/store"
	"github.com/warehall/stockroom/internal/transport/rest"
	"github.com/warehall/stockroom/pkg/server"
)

type Dependencies struct {
	ProductService service.ProductService
	Exporter       rest.Exporter
	Accounts       *auth.Registry
	Logger         *slog.Logger
}

// SetupDependencies builds the object graph: store, service, exporter and
// the account registry.
func SetupDependencies(dbPool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	accounts, err := auth.NewRegistry(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to build account registry: %w", err)
	}

	pService := service.NewService(store.NewPgStore(dbPool), cfg.Inventory.LeftoverThreshold)

	return &Dependencies{
		ProductService: pService,
		Exporter:       export.NewXlsGenerator(),
		Accounts:       accounts,
		Logger:         logger,
	}, nil
}

// SetupHttpHandler initializes the router and routes for the service.
// Also used by tests to exercise the full HTTP surface.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	handler := rest.NewHandler(deps.ProductService, deps.Exporter, deps.Logger)
	handler.RegisterRoutes(mux, deps.Accounts.Require(auth.RoleRead), deps.Accounts.Require(auth.RoleCRUD))
	return mux
}

// SetupHttpServer creates and configures the HTTP server for the service.
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
