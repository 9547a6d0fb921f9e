package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/config"
	"github.com/poolfit/poolfit/internal/dataprep"
	"github.com/poolfit/poolfit/internal/handler"
	"github.com/poolfit/poolfit/internal/middleware"
	"github.com/poolfit/poolfit/internal/pkg/database"
	"github.com/poolfit/poolfit/internal/repository/postgres"
	"github.com/poolfit/poolfit/internal/sampler"
	"github.com/poolfit/poolfit/internal/service"
	"github.com/poolfit/poolfit/internal/worker"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// Database connections
	Postgres *database.PostgresDB
	Redis    *database.RedisDB

	// Repositories
	DatasetRepo *postgres.DatasetRepository
	FitRunRepo  *postgres.FitRunRepository

	// Services
	DatasetService    *service.DatasetService
	FitService        *service.FitService
	ComparisonService *service.ComparisonService

	// Handlers
	DatasetsHandler *handler.DatasetsHandler
	FitsHandler     *handler.FitsHandler
	HealthHandler   *handler.HealthHandler

	// Middleware
	RateLimitMiddleware *middleware.RateLimitMiddleware

	// Task queue
	Enqueuer *worker.Enqueuer
}

// initDependencies initializes all dependencies
func initDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	ctx := context.Background()

	// Initialize PostgreSQL using database wrapper
	pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	deps.Postgres = pgDB

	// Initialize Redis
	redisDB, err := database.NewRedis(ctx, cfg.Redis)
	if err != nil {
		pgDB.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	deps.Redis = redisDB

	// Initialize repositories
	deps.DatasetRepo = postgres.NewDatasetRepository(pgDB)
	deps.FitRunRepo = postgres.NewFitRunRepository(pgDB)

	// Initialize task enqueuer for async fit runs
	deps.Enqueuer = worker.NewEnqueuer(cfg)

	// Initialize services
	preparer := dataprep.NewPreparer(logger, dataprep.WithFailOnInvalid(cfg.Prep.FailOnInvalid))
	engine := sampler.NewMetropolis(logger)

	deps.DatasetService = service.NewDatasetService(deps.DatasetRepo, preparer)
	deps.ComparisonService = service.NewComparisonService()
	deps.FitService = service.NewFitService(
		deps.FitRunRepo,
		deps.DatasetRepo,
		engine,
		deps.ComparisonService,
		deps.Enqueuer,
		cfg.Sampler,
		logger,
	)

	// Initialize handlers
	deps.DatasetsHandler = handler.NewDatasetsHandler(deps.DatasetService, logger)
	deps.FitsHandler = handler.NewFitsHandler(deps.FitService, logger)
	deps.HealthHandler = handler.NewHealthHandler(pgDB.Pool, redisDB.Client, appVersion)

	// Initialize rate limiting
	if cfg.RateLimit.Enabled {
		rlConfig := middleware.DefaultRateLimitConfig()
		if cfg.RateLimit.RequestsPerMinute > 0 {
			rlConfig.Max = cfg.RateLimit.RequestsPerMinute
		}
		deps.RateLimitMiddleware = middleware.NewRateLimitMiddleware(redisDB.Client, rlConfig)
	}

	return deps, nil
}

// Close closes all connections
func (d *Dependencies) Close() {
	if d.Postgres != nil {
		d.Postgres.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.Enqueuer != nil {
		d.Enqueuer.Close()
	}
}
