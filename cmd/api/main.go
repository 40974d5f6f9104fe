package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/identity-prism/internal/application/services"
	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/classification"
	"github.com/bimakw/identity-prism/internal/domain/repositories"
	"github.com/bimakw/identity-prism/internal/infrastructure/cache"
	"github.com/bimakw/identity-prism/internal/infrastructure/market"
	"github.com/bimakw/identity-prism/internal/infrastructure/solana"
	"github.com/bimakw/identity-prism/internal/infrastructure/staging"
	"github.com/bimakw/identity-prism/internal/presentation/handlers"
	"github.com/bimakw/identity-prism/internal/presentation/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	logger.Info("Starting identity-prism API",
		zap.Int("port", cfg.API.Port),
	)

	// Connect to Redis (optional)
	var redisClient *redis.Client
	var statsCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisClient, err = cache.Connect(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			statsCache = cache.NewRedisCache(redisClient, "identity-prism:", cfg.Market.StatsCacheTTL, logger)
		}
	}

	// Pending mints
	var store repositories.PendingMintRepository
	switch {
	case cfg.Mint.StagingBackend == "redis" && redisClient != nil:
		store = staging.NewRedisStore(redisClient, cfg.Mint.StagingTTL, logger)
	case cfg.Mint.StagingBackend == "redis":
		logger.Warn("Redis staging requested but Redis is unavailable, staging in memory")
		store = staging.NewMemoryStore(cfg.Mint.StagingTTL)
	default:
		store = staging.NewMemoryStore(cfg.Mint.StagingTTL)
	}

	// Solana upstreams
	provider := solana.NewProvider(cfg.Solana, logger)
	if provider.Len() == 0 {
		logger.Warn("No Solana API keys configured, snapshot endpoints will fail")
	}
	txs, err := provider.Transactions()
	if err != nil {
		logger.Warn("Transaction submission unavailable", zap.Error(err))
		txs = nil
	}

	treasury, err := solana.LoadSigner(cfg.Mint.TreasurySecretKey, cfg.Mint.TreasuryAddress)
	if err != nil {
		logger.Fatal("Failed to load treasury key", zap.Error(err))
	}
	if treasury == nil {
		logger.Warn("Treasury key not configured, collection mints and attestations are disabled")
	}

	// Create services
	reputationService := services.NewReputationService(
		provider,
		services.NewHistoryFetcher(cfg.Solana, logger),
		classification.NewClassifier(classification.DefaultCatalog()),
		logger,
	)
	priceService := services.NewPriceService(market.NewCoinGecko(cfg.Market), cfg.Market.PriceTTL, cfg.Mint, logger)
	marketService := services.NewMarketService(market.NewMagicEden(cfg.Market), market.NewTensor(cfg.Market), statsCache, logger)
	mintService := services.NewMintService(txs, store, priceService, cfg.Mint, treasury, logger)
	attestationService := services.NewAttestationService(reputationService, txs, treasury, cfg.Mint.AttestationApp, logger)

	// Create handlers
	reputationHandler := handlers.NewReputationHandler(reputationService, logger)
	marketHandler := handlers.NewMarketHandler(marketService, priceService, logger)
	mintHandler := handlers.NewMintHandler(mintService, attestationService, logger)

	var cacheChecker handlers.HealthChecker
	if statsCache != nil {
		cacheChecker = statsCache
	}
	healthHandler := handlers.NewHealthHandler(provider, cacheChecker)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))
		reputationHandler.RegisterRoutes(r)
		marketHandler.RegisterRoutes(r)
		mintHandler.RegisterRoutes(r)
	})

	// Start server
	addr := cfg.API.Addr()
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func setupLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoding, encoderConfig := "json", zap.NewProductionEncoderConfig()
	if format == "console" {
		encoding, encoderConfig = "console", zap.NewDevelopmentEncoderConfig()
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
