package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/budgetbloom/cardledger/internal/adapter/gemini"
	"github.com/budgetbloom/cardledger/internal/adapter/htmldom"
	httpAdapter "github.com/budgetbloom/cardledger/internal/adapter/http"
	"github.com/budgetbloom/cardledger/internal/adapter/http/handler"
	"github.com/budgetbloom/cardledger/internal/adapter/http/middleware"
	"github.com/budgetbloom/cardledger/internal/adapter/idgen"
	"github.com/budgetbloom/cardledger/internal/adapter/loader"
	redisRepo "github.com/budgetbloom/cardledger/internal/adapter/repository/redis"
	"github.com/budgetbloom/cardledger/internal/extractor"
	"github.com/budgetbloom/cardledger/internal/infrastructure/config"
	"github.com/budgetbloom/cardledger/internal/infrastructure/logger"
	"github.com/budgetbloom/cardledger/internal/infrastructure/metrics"
	"github.com/budgetbloom/cardledger/internal/infrastructure/redis"
	"github.com/budgetbloom/cardledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()
	m := metrics.New()

	loc, err := cfg.Location()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("invalid timezone")
	}

	// Connect to Redis (optional)
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	var (
		cache            usecase.SnapshotCache
		idempotencyStore usecase.IdempotencyStore
	)
	if redisClient != nil {
		defer redisClient.Close()
		cache = redisRepo.NewSnapshotCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		appLogger.Info().Msg("connected to redis")
	} else {
		appLogger.Info().Msg("REDIS_URL not set, snapshot cache disabled")
	}

	idGen := idgen.NewULIDGenerator()

	// Document pipeline
	httpLoader := loader.New(loader.Config{
		BaseURL:   cfg.LoaderURL(),
		CampusID:  cfg.CampusID,
		Account:   cfg.StatementAccount,
		UserAgent: cfg.LoaderUserAgent,
		Timeout:   cfg.FetchTimeout,
	}, nil, idGen, m, appLogger.With().Str("component", "loader").Logger())
	docLoader := loader.NewRetryingLoader(httpLoader, cfg.FetchMaxRetries, m, appLogger)

	x := extractor.New(htmldom.NewParser(), extractor.Options{
		SummaryMarkers:    cfg.SummaryMarkers,
		IncludeDeposits:   cfg.IncludeDeposits,
		StatementFallback: cfg.StatementFallback,
		Location:          loc,
	}, appLogger.With().Str("component", "extractor").Logger())

	// Initialize use cases
	snapshotUC := usecase.NewSnapshotUseCase(usecase.SnapshotConfig{
		Loader:    docLoader,
		Extractor: x,
		Cache:     cache,
		CacheTTL:  cfg.SnapshotCacheTTL,
		Metrics:   m,
		Logger:    appLogger,
	})

	generator, err := newTextGenerator(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to create text generator")
	}
	insightUC := usecase.NewInsightUseCase(generator, idGen, m, appLogger)

	// Initialize handlers
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		SnapshotHandler: handler.NewSnapshotHandler(snapshotUC, appLogger),
		InsightHandler:  handler.NewInsightHandler(insightUC, snapshotUC),
		RelayHandler: handler.NewRelayHandler(handler.RelayConfig{
			UpstreamBaseURL: cfg.UpstreamBaseURL,
			UserAgent:       cfg.LoaderUserAgent,
			Timeout:         cfg.FetchTimeout,
		}, nil, m, appLogger.With().Str("component", "relay").Logger()),
		HealthHandler:    handler.NewHealthHandler(redisClient),
		MetricsHandler:   promhttp.Handler(),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Logger:           appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         serverAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go rateLimiter.StartCleanup(cleanupCtx, 10*time.Minute, time.Hour)

	// Start server in goroutine
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Str("upstream", cfg.UpstreamBaseURL).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	appLogger.Info().Msg("server stopped")
}

// newTextGenerator returns nil when no API key is configured, so insights
// degrade to the placeholder summary.
func newTextGenerator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (usecase.TextGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Info().Msg("GEMINI_API_KEY not set, insights disabled")
		return nil, nil
	}

	g, err := gemini.New(ctx, gemini.Config{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		Temperature: 0.4,
	}, logger.With().Str("component", "gemini").Logger())
	if err != nil {
		return nil, err
	}
	return g, nil
}

func serverAddr(port string) string {
	return fmt.Sprintf(":%s", port)
}
