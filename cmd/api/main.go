package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpAdapter "github.com/lorrc/support-analytics-backend/internal/adapters/primary/http"
	mw "github.com/lorrc/support-analytics-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/support-analytics-backend/internal/adapters/primary/web"
	"github.com/lorrc/support-analytics-backend/internal/adapters/secondary/warehouse"
	"github.com/lorrc/support-analytics-backend/internal/config"
	"github.com/lorrc/support-analytics-backend/internal/core/services"
	"github.com/lorrc/support-analytics-backend/internal/infrastructure/cache"
	"github.com/lorrc/support-analytics-backend/internal/infrastructure/clock"
	"github.com/lorrc/support-analytics-backend/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	// 3. Initialize Warehouse Pool
	// An empty URL lets pgx fall back to the ambient PG* environment
	// credentials, matching local development against the warehouse.
	ctx := context.Background()
	poolConfig, err := pgxpool.ParseConfig(cfg.Warehouse.URL)
	if err != nil {
		logger.Error("failed to parse warehouse URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Warehouse.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Warehouse.MinIdleConns)
	poolConfig.MaxConnLifetime = cfg.Warehouse.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to warehouse", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("warehouse ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("warehouse connection established")

	// 4. Metrics Registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 5. Dependency Injection
	// Explicitly constructed here and torn down at shutdown; no lazy
	// process-wide singletons.
	systemClock := clock.System{}
	resultCache := cache.NewTTLCache(cfg.Dashboard.CacheTTL, systemClock, registry)
	repo := warehouse.NewRepository(pool, systemClock, warehouse.Options{
		QueryTimeout: cfg.Warehouse.QueryTimeout,
		TrendDays:    cfg.Dashboard.TrendDays,
		HeatmapDays:  cfg.Dashboard.HeatmapDays,
		TopTags:      cfg.Dashboard.TopTags,
	})
	dashboardService := services.NewDashboardService(repo, resultCache, systemClock, cfg.Dashboard, logger)

	errorHandler := httpAdapter.NewErrorHandler(logger)
	dashboardHandler := httpAdapter.NewDashboardHandler(dashboardService, errorHandler, logger)
	healthHandler := httpAdapter.NewHealthHandler(repo, cfg.App.Version)

	webHandler, err := web.NewHandler("Support Command Center", cfg.App.Version, logger)
	if err != nil {
		logger.Error("failed to load dashboard page", "error", err)
		os.Exit(1)
	}

	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
	}

	// 6. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", mw.RequestIDHeader},
		MaxAge:         300,
	}))

	if rateLimiter != nil {
		r.Use(rateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	// Prometheus metrics
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Dashboard page
	r.Get("/", webHandler.HandleIndex)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/dashboard", dashboardHandler.RegisterRoutes)
	})

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}
