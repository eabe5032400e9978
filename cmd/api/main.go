package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sitecanvas-backend/infrastructure/config"
	"sitecanvas-backend/infrastructure/di"
	"sitecanvas-backend/pkg/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger
	defer logger.Sync()

	// Runtime-adjustable limits, reloaded while the service runs. The
	// container already wired the watcher into the services as their limits
	// provider; main just owns its lifecycle.
	if container.Watcher != nil {
		container.Watcher.OnChange(func(dc *config.DynamicConfig) {
			logger.Info("dynamic config reloaded",
				zap.Int("max_nodes_per_project", dc.Limits.MaxNodesPerProject),
				zap.Int("max_concurrent_runs", dc.Generation.MaxConcurrentRuns))
		})
		container.Watcher.Start()
		defer container.Watcher.Stop()
	}

	if cfg.EnableTracing {
		tp, err := observability.InitTracing("sitecanvas-backend", cfg.Environment, cfg.TracingEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Error("Tracer shutdown error", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      container.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // generation runs are synchronous
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.Bool("memory_store", cfg.UseMemoryStore),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
