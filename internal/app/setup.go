// Package app contains the application setup for the record store.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caraseli02/inventory-app-sub002/internal/config"
	"github.com/caraseli02/inventory-app-sub002/internal/server"
	"github.com/caraseli02/inventory-app-sub002/internal/store"
	"github.com/caraseli02/inventory-app-sub002/pkg/bootstrap"
	pkgserver "github.com/caraseli02/inventory-app-sub002/pkg/server"
)

type Dependencies struct {
	Store  store.ProductStore
	Logger *slog.Logger
}

// SetupDependencies selects and prepares the product store: PostgreSQL when
// a database URL is configured (migrations applied), in-memory otherwise.
func SetupDependencies(ctx context.Context, cfg *config.ServerConfig, logger *slog.Logger) (*Dependencies, func(), error) {
	if cfg.Database.Enabled() {
		if err := store.Migrate(cfg.Database.URL); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		pool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create database connection pool: %w", err)
		}
		logger.Info("Using PostgreSQL store")
		return &Dependencies{Store: store.NewPgStore(pool), Logger: logger}, pool.Close, nil
	}

	mem := store.NewInMemoryStore()
	if cfg.Seed {
		mem.Seed()
		logger.Info("In-memory store seeded with demo catalog")
	}
	return &Dependencies{Store: mem, Logger: logger}, func() {}, nil
}

// SetupHttpHandler initializes the HTTP routes for the record store.
// Used by e2e-style tests to exercise the full handler stack.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := pkgserver.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	handler := server.NewHandler(deps.Store, deps.Logger)
	handler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the record store's HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.ServerConfig) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := pkgserver.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return pkgserver.NewHTTPServer(httpCfg, mux)
}
