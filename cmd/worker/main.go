package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/config"
	"github.com/poolfit/poolfit/internal/pkg/database"
	"github.com/poolfit/poolfit/internal/repository/postgres"
	"github.com/poolfit/poolfit/internal/sampler"
	"github.com/poolfit/poolfit/internal/service"
	"github.com/poolfit/poolfit/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Server.Env == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("starting worker service")

	// Initialize dependencies
	deps, cleanup, err := initWorkerDependencies(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer cleanup()

	// Create worker server
	workerServer, err := worker.NewServer(logger, cfg, deps)
	if err != nil {
		logger.Fatal("failed to create worker server", zap.Error(err))
	}

	// Start worker in a goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- workerServer.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutting down worker...")
		workerServer.Stop()
	case err := <-errCh:
		if err != nil {
			logger.Error("worker server error", zap.Error(err))
		}
	}

	logger.Info("worker stopped")
}

// initWorkerDependencies initializes dependencies for the worker
func initWorkerDependencies(cfg *config.Config, logger *zap.Logger) (*worker.Dependencies, func(), error) {
	ctx := context.Background()

	// Initialize PostgreSQL using database wrapper
	pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	// Initialize repositories
	datasetRepo := postgres.NewDatasetRepository(pgDB)
	fitRunRepo := postgres.NewFitRunRepository(pgDB)

	// Initialize services. The worker executes fit runs directly, so no
	// enqueuer is wired in.
	engine := sampler.NewMetropolis(logger)
	comparison := service.NewComparisonService()
	fitService := service.NewFitService(
		fitRunRepo,
		datasetRepo,
		engine,
		comparison,
		nil,
		cfg.Sampler,
		logger,
	)

	deps := &worker.Dependencies{
		FitService: fitService,
	}

	// Cleanup function
	cleanup := func() {
		pgDB.Close()
	}

	return deps, cleanup, nil
}
