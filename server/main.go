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

	"github.com/phambaophuc/packshot-composer/internal/config"
	"github.com/phambaophuc/packshot-composer/internal/http/handlers"
	"github.com/phambaophuc/packshot-composer/internal/http/routes"
	"github.com/phambaophuc/packshot-composer/internal/pipeline"
	"github.com/phambaophuc/packshot-composer/internal/retry"
	"github.com/phambaophuc/packshot-composer/internal/services/background"
	"github.com/phambaophuc/packshot-composer/internal/services/compositor"
	"github.com/phambaophuc/packshot-composer/internal/services/fetcher"
	"github.com/phambaophuc/packshot-composer/internal/services/prompt"
	"github.com/phambaophuc/packshot-composer/internal/services/publisher"
	"github.com/phambaophuc/packshot-composer/internal/services/storage"
	"github.com/phambaophuc/packshot-composer/internal/services/vertex"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize clients; built once, read-only afterwards.
	vertexClient, err := vertex.NewClient(ctx, cfg.Vertex)
	if err != nil {
		logger.Fatal("Failed to initialize Vertex AI client", zap.Error(err))
	}

	store, err := storage.NewGCSStore(ctx, cfg.Output.Bucket)
	if err != nil {
		logger.Fatal("Failed to initialize storage client", zap.Error(err))
	}

	// Only the two model calls retry on transient unavailability.
	retryCfg := retry.DefaultConfig(vertex.IsUnavailable)

	pipe := pipeline.New(
		prompt.NewSynthesizer(vertexClient, retryCfg, logger),
		background.NewGenerator(vertexClient, retryCfg, logger),
		fetcher.NewFetcher(cfg.Fetch.Timeout, logger),
		compositor.Composite,
		publisher.NewPublisher(store, logger),
		logger,
	)

	generateHandler := handlers.NewGenerateHandler(pipe, logger)
	router := routes.NewRouter(generateHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
