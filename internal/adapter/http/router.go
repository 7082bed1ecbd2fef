package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/budgetbloom/cardledger/internal/adapter/http/handler"
	"github.com/budgetbloom/cardledger/internal/adapter/http/middleware"
	"github.com/budgetbloom/cardledger/internal/adapter/loader"
	"github.com/budgetbloom/cardledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	SnapshotHandler  *handler.SnapshotHandler
	InsightHandler   *handler.InsightHandler
	RelayHandler     *handler.RelayHandler
	HealthHandler    *handler.HealthHandler
	MetricsHandler   http.Handler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS)

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Pass-through relay
	if cfg.RelayHandler != nil {
		r.Group(func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter.Limit)
			}
			r.Get(loader.MainPath, cfg.RelayHandler.ServeHTTP)
			r.Get(loader.StatementPath, cfg.RelayHandler.ServeHTTP)
		})
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Get("/snapshot", cfg.SnapshotHandler.Get)
		r.Delete("/snapshot", cfg.SnapshotHandler.Invalidate)
		r.Get("/history", cfg.SnapshotHandler.History)

		if cfg.InsightHandler != nil {
			r.Post("/insights", cfg.InsightHandler.Generate)
		}
	})

	return r
}
