// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"mercato/internal/core/numerator"
	"mercato/internal/domain"
	"mercato/internal/domain/auth"
	"mercato/internal/domain/orders"
	"mercato/internal/domain/promotions"
	"mercato/internal/domain/purchasing"
	"mercato/internal/domain/reconciliation"
	"mercato/internal/domain/reports"
	"mercato/internal/infrastructure/http/v1/handlers"
	"mercato/internal/infrastructure/http/v1/middleware"
	"mercato/internal/infrastructure/storage/postgres"
	"mercato/pkg/logger"
)

// Permissions gating mutating endpoints.
const (
	PermOrderFulfill   = "order:fulfill"
	PermPurchaseWrite  = "purchase:write"
	PermPromotionAdmin = "promotion:admin"
	PermInvoiceWrite   = "invoice:write"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (health checks, pool stats)
	Pool *postgres.Pool

	// TxManager drives transactions for all repositories
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator for document number generation
	Numerator numerator.Generator

	// Inventory applies stock deductions when orders are picked
	Inventory orders.InventoryAdjuster

	// Archive stores status-change snapshots (optional)
	Archive *postgres.ArchiveService

	// Outbox publishes status-change events for the relay worker (optional)
	Outbox *postgres.OutboxPublisher

	// IdempotencyTTL enables the idempotency middleware when > 0
	IdempotencyTTL time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	handlers.NewHealthHandler(cfg.Pool).RegisterRoutes(router)

	// API v1
	api := router.Group("/api/v1")
	{
		baseHandler := handlers.NewBaseHandler()

		var authHandler *handlers.AuthHandler
		if cfg.AuthService != nil {
			authHandler = handlers.NewAuthHandler(baseHandler, cfg.AuthService)
			authHandler.RegisterPublicRoutes(api)
		}

		// Everything below requires a valid token.
		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		if cfg.IdempotencyTTL > 0 {
			store := postgres.NewIdempotencyStore(cfg.TxManager, cfg.IdempotencyTTL)
			protected.Use(middleware.Idempotency(store))
		}

		if authHandler != nil {
			authHandler.RegisterProtectedRoutes(protected, middleware.RequireRole("admin"))
		}

		registerOrderRoutes(protected, baseHandler, cfg)
		registerPurchasingRoutes(protected, baseHandler, cfg)
		registerPromotionRoutes(protected, baseHandler, cfg)
		registerInvoiceRoutes(protected, baseHandler, cfg)
		registerReportRoutes(protected, baseHandler, cfg)
	}

	return router
}

// registerOrderRoutes wires the customer order fulfillment endpoints.
func registerOrderRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	repo := postgres.NewOrderRepo(cfg.TxManager)
	service := orders.NewService(repo, cfg.Inventory, cfg.Numerator, cfg.TxManager)

	if cfg.Archive != nil {
		service.Hooks().On(domain.AfterStatus, func(ctx context.Context, o *orders.Order) error {
			return cfg.Archive.Record(ctx, "order", o.ID, string(o.Status), o)
		})
	}
	if cfg.Outbox != nil {
		service.Hooks().On(domain.AfterStatus, func(ctx context.Context, o *orders.Order) error {
			return cfg.Outbox.Publish(ctx, postgres.DomainEvent{
				AggregateType: "order",
				AggregateID:   o.ID,
				EventType:     "order.status_changed",
				Payload:       o,
			})
		})
	}

	handler := handlers.NewOrderHandler(base, service)
	handler.RegisterRoutes(rg, middleware.RequirePermission(PermOrderFulfill))
}

// registerPurchasingRoutes wires the purchase order endpoints.
func registerPurchasingRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	repo := postgres.NewPurchaseOrderRepo(cfg.TxManager)
	events := postgres.NewPurchaseOrderEventRepo(cfg.TxManager)
	service := purchasing.NewService(repo, events, cfg.Numerator, cfg.TxManager)

	if cfg.Archive != nil {
		service.Hooks().On(domain.AfterStatus, func(ctx context.Context, po *purchasing.PurchaseOrder) error {
			return cfg.Archive.Record(ctx, "purchase_order", po.ID, string(po.Status), po)
		})
	}
	if cfg.Outbox != nil {
		service.Hooks().On(domain.AfterStatus, func(ctx context.Context, po *purchasing.PurchaseOrder) error {
			return cfg.Outbox.Publish(ctx, postgres.DomainEvent{
				AggregateType: "purchase_order",
				AggregateID:   po.ID,
				EventType:     "purchase_order.status_changed",
				Payload:       po,
			})
		})
	}

	handler := handlers.NewPurchaseOrderHandler(base, service)
	handler.RegisterRoutes(rg, middleware.RequirePermission(PermPurchaseWrite))
}

// registerPromotionRoutes wires promotion management and price resolution.
func registerPromotionRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	repo := postgres.NewPromotionRepo(cfg.TxManager)
	service := promotions.NewService(repo, cfg.TxManager)
	resolver := promotions.NewResolver(repo)

	handler := handlers.NewPromotionHandler(base, service, resolver)
	handler.RegisterRoutes(rg, middleware.RequirePermission(PermPromotionAdmin))
}

// registerInvoiceRoutes wires the invoice price reconciliation endpoints.
func registerInvoiceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	repo := postgres.NewInvoicePriceRepo(cfg.TxManager)
	service := reconciliation.NewService(repo, cfg.TxManager)

	handler := handlers.NewInvoiceHandler(base, service)
	handler.RegisterRoutes(rg, middleware.RequirePermission(PermInvoiceWrite))
}

// registerReportRoutes wires report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	repo := postgres.NewReportRepo(cfg.TxManager)
	service := reports.NewService(repo)

	handler := handlers.NewReportsHandler(base, service)
	handler.RegisterRoutes(rg)
}
