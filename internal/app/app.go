package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/bistpulse/config"
	"github.com/guttosm/bistpulse/internal/api"
	"github.com/guttosm/bistpulse/internal/service"
	"github.com/guttosm/bistpulse/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Opens the SQLite store using InitSQLite().
//   - Initializes the repository layer (PricesRepository).
//   - Creates the HTTP handler layer to handle requests.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB handle).
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	// indirection for unit testing
	db, err := sqliteOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize sqlite: %w", err)
	}

	repo := storage.NewPricesRepository(db)

	svc := service.NewSummaryService(repo)

	handler := api.NewHandler(svc)

	router := api.NewRouter(handler)

	healthHandler := api.NewHealthHandler(db.Ping)
	healthHandler.Register(router)

	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}
