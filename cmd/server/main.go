package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shutdown-tracker/internal/cache"
	"shutdown-tracker/internal/config"
	"shutdown-tracker/internal/database"
	"shutdown-tracker/internal/geocoding"
	"shutdown-tracker/internal/logger"
	"shutdown-tracker/internal/metrics"
	"shutdown-tracker/internal/routes"
	"shutdown-tracker/internal/store/memory"
	"shutdown-tracker/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	deps := routes.Deps{
		Geocoder: geocoding.NewClient(geocoding.Options{
			URL:     cfg.GeocoderURL,
			APIKey:  cfg.GeocoderAPIKey,
			Country: cfg.GeocoderCountry,
			Timeout: cfg.GeocoderTimeout,
		}),
		Metrics: metrics.NewCollector(),
	}

	var closers []func() error
	switch cfg.Storage {
	case "memory":
		logr.Warn("using in-memory storage, data is lost on restart")
		deps.Shutdowns = memory.NewShutdownStore()
		deps.Users = memory.NewUserStore()
		deps.Sessions = memory.NewSessionStore()
	default:
		db, err := database.New(cfg.DatabaseURL, cfg)
		if err != nil {
			logr.Fatal("failed to connect to database", zap.Error(err))
		}
		closers = append(closers, db.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := database.EnsureSchema(ctx, db); err != nil {
			cancel()
			logr.Fatal("failed to ensure schema", zap.Error(err))
		}
		cancel()

		deps.Shutdowns = postgres.NewShutdownStore(db)
		deps.Users = postgres.NewUserStore(db)
		deps.Sessions = postgres.NewSessionStore(db)
	}

	rdb, err := cache.Connect(context.Background(), cfg, logr.Logger)
	if err != nil {
		// the list cache is optional; serve straight from storage
		logr.Warn("redis unavailable, list cache disabled", zap.Error(err))
	} else if rdb != nil {
		closers = append(closers, rdb.Close)
		deps.Cache = cache.New(rdb, cfg.CacheTTL)
	}

	r := routes.NewRouter(deps, cfg, logr)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started", zap.String("port", cfg.Port), zap.String("storage", cfg.Storage))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Fatal("server forced to shutdown", zap.Error(err))
	}

	for _, c := range closers {
		_ = c()
	}
	logr.Info("server exited gracefully")
}
