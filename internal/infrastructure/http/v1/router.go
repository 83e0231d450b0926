// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"restoledger/internal/app"
	"restoledger/internal/infrastructure/http/v1/handlers"
	"restoledger/internal/infrastructure/http/v1/middleware"
	"restoledger/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Ledger is the wired service set, over memory or Postgres.
	Ledger *app.Ledger

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Idempotency stores replayable responses. Nil disables the middleware.
	Idempotency middleware.IdempotencyStore

	// Audit serves GET /audit/:entityType/:id to managers. Nil leaves the route out.
	Audit handlers.AuditReader

	// DB is pinged by the readiness probe. Nil for the in-memory store.
	DB handlers.Pinger

	// Backend names the storage in /health/info.
	Backend string
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Backend, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	if cfg.Idempotency != nil {
		v1.Use(middleware.Idempotency(cfg.Idempotency))
	}

	registerRoutes(v1, cfg)

	return router
}

func registerRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	l := cfg.Ledger
	base := handlers.NewBaseHandler()

	handlers.NewCatalogHandler(base, l.Warehouses, l.Ingredients, l.Repos.Recipes, l.TxManager).
		RegisterRoutes(rg, middleware.RequireRole(handlers.RoleManager))
	handlers.NewDocumentHandler(base, l.Documents, l.Production).RegisterRoutes(rg)
	handlers.NewInventoryHandler(base, l.Inventory).RegisterRoutes(rg)
	handlers.NewOrderHandler(base, l.Orders, l.Deduction, l.Documents, l.Repos.Recipes).RegisterRoutes(rg)
	handlers.NewShiftHandler(base, l.Cash).RegisterRoutes(rg)
	handlers.NewStockHandler(base, l.Stock).RegisterRoutes(rg)
	handlers.NewReportHandler(base, l.Reports).RegisterRoutes(rg)

	if cfg.Audit != nil {
		handlers.NewAuditHandler(base, cfg.Audit).RegisterRoutes(rg, middleware.RequireRole(handlers.RoleManager))
	}
}
