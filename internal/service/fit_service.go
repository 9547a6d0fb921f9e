package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/config"
	"github.com/poolfit/poolfit/internal/domain"
	"github.com/poolfit/poolfit/internal/middleware"
	"github.com/poolfit/poolfit/internal/model"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
	"github.com/poolfit/poolfit/internal/sampler"
)

// FitRunRepository defines fit run repository operations
type FitRunRepository interface {
	Create(ctx context.Context, run *domain.FitRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FitRun, error)
	Update(ctx context.Context, run *domain.FitRun) error
	List(ctx context.Context, filter *domain.FitRunFilter, limit, offset int) (*domain.FitRunList, error)
}

// FitEnqueuer hands a fit run to the background worker.
type FitEnqueuer interface {
	EnqueueFitRun(ctx context.Context, fitRunID uuid.UUID) error
}

// FitService orchestrates the fit pipeline: build the pooled, unpooled,
// and hierarchical specs for a dataset, run each through the inference
// engine, summarize the traces, and derive the shrinkage comparison.
type FitService struct {
	fitRunRepo  FitRunRepository
	datasetRepo DatasetRepository
	engine      sampler.Engine
	comparison  *ComparisonService
	enqueuer    FitEnqueuer
	defaults    config.SamplerConfig
	logger      *zap.Logger
}

// NewFitService creates a new fit service. The enqueuer may be nil, in
// which case async runs are rejected.
func NewFitService(
	fitRunRepo FitRunRepository,
	datasetRepo DatasetRepository,
	engine sampler.Engine,
	comparison *ComparisonService,
	enqueuer FitEnqueuer,
	defaults config.SamplerConfig,
	logger *zap.Logger,
) *FitService {
	return &FitService{
		fitRunRepo:  fitRunRepo,
		datasetRepo: datasetRepo,
		engine:      engine,
		comparison:  comparison,
		enqueuer:    enqueuer,
		defaults:    defaults,
		logger:      logger,
	}
}

// Create registers a fit run for a dataset. Synchronous runs are
// executed before returning; async runs are enqueued for the worker and
// returned pending.
func (s *FitService) Create(ctx context.Context, input *domain.FitRunInput) (*domain.FitRun, error) {
	datasetID, err := uuid.Parse(input.DatasetID)
	if err != nil {
		return nil, apperrors.Validation("invalid dataset ID")
	}
	if input.Async && s.enqueuer == nil {
		return nil, apperrors.Validation("async fit runs are not available")
	}

	// Fail fast on a missing dataset.
	if _, err := s.datasetRepo.GetByID(ctx, datasetID); err != nil {
		return nil, err
	}

	draws := input.Draws
	if draws == 0 {
		draws = s.defaults.Draws
	}
	warmup := input.Warmup
	if warmup == 0 {
		warmup = s.defaults.Warmup
	}
	seed := input.Seed
	if seed == 0 {
		seed = s.defaults.Seed
	}

	now := time.Now()
	run := &domain.FitRun{
		ID:        uuid.New(),
		DatasetID: datasetID,
		Status:    domain.FitRunStatusPending,
		Draws:     draws,
		Warmup:    warmup,
		Seed:      seed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.fitRunRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create fit run: %w", err)
	}

	if input.Async {
		if err := s.enqueuer.EnqueueFitRun(ctx, run.ID); err != nil {
			return nil, fmt.Errorf("failed to enqueue fit run: %w", err)
		}
		return run, nil
	}

	return s.Execute(ctx, run.ID)
}

// Get retrieves a fit run by ID
func (s *FitService) Get(ctx context.Context, id uuid.UUID) (*domain.FitRun, error) {
	return s.fitRunRepo.GetByID(ctx, id)
}

// List retrieves fit runs with pagination
func (s *FitService) List(ctx context.Context, filter *domain.FitRunFilter, limit, offset int) (*domain.FitRunList, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.fitRunRepo.List(ctx, filter, limit, offset)
}

// GetComparison returns the shrinkage report of a completed fit run.
func (s *FitService) GetComparison(ctx context.Context, id uuid.UUID) (*domain.ShrinkageReport, error) {
	run, err := s.fitRunRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status != domain.FitRunStatusCompleted || run.Results == nil || run.Results.Comparison == nil {
		return nil, apperrors.NotFound("comparison")
	}
	return run.Results.Comparison, nil
}

// Execute runs the full fit pipeline for a pending fit run. It is
// called inline for synchronous runs and by the worker for queued ones.
func (s *FitService) Execute(ctx context.Context, id uuid.UUID) (*domain.FitRun, error) {
	run, err := s.fitRunRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status.IsTerminal() {
		return nil, apperrors.Conflict(fmt.Sprintf("fit run is already %s", run.Status))
	}

	now := time.Now()
	run.Status = domain.FitRunStatusRunning
	run.StartedAt = &now
	run.UpdatedAt = now
	if err := s.fitRunRepo.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to mark fit run running: %w", err)
	}

	results, err := s.fit(ctx, run)
	finished := time.Now()
	run.UpdatedAt = finished
	run.CompletedAt = &finished

	middleware.RecordFitDuration("all", finished.Sub(now))

	if err != nil {
		run.Status = domain.FitRunStatusFailed
		run.Error = err.Error()
		middleware.RecordFitRun(string(run.Status))
		if updateErr := s.fitRunRepo.Update(ctx, run); updateErr != nil {
			s.logger.Error("failed to persist failed fit run",
				zap.String("fit_run_id", run.ID.String()),
				zap.Error(updateErr),
			)
		}
		return nil, err
	}

	run.Status = domain.FitRunStatusCompleted
	run.Results = results
	middleware.RecordFitRun(string(run.Status))
	if err := s.fitRunRepo.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to persist fit run results: %w", err)
	}

	s.logger.Info("fit run completed",
		zap.String("fit_run_id", run.ID.String()),
		zap.String("dataset_id", run.DatasetID.String()),
		zap.Duration("elapsed", finished.Sub(now)),
	)

	return run, nil
}

func (s *FitService) fit(ctx context.Context, run *domain.FitRun) (*domain.FitResults, error) {
	ds, err := s.datasetRepo.GetByID(ctx, run.DatasetID)
	if err != nil {
		return nil, err
	}

	opts := sampler.Options{Draws: run.Draws, Warmup: run.Warmup, Seed: run.Seed}
	results := &domain.FitResults{}

	// Pooled.
	pooledSpec, err := model.NewPooledBuilder(s.logger).Build(ds)
	if err != nil {
		return nil, err
	}
	pooledTrace, err := s.engine.Sample(ctx, pooledSpec, opts)
	if err != nil {
		return nil, err
	}
	if results.Pooled, err = pooledTrace.Summaries(); err != nil {
		return nil, err
	}

	// Unpooled, one independent fit per group. A failed group is
	// recorded and skipped; its siblings still run.
	groupSpecs, err := model.NewUnpooledBuilder(s.logger).Build(ds)
	if err != nil {
		return nil, err
	}
	unpooledTraces := make([]*domain.Trace, len(groupSpecs))
	for code, gs := range groupSpecs {
		fit := domain.GroupFit{Group: gs.Group}
		if gs.Err != nil {
			fit.Error = gs.Err.Error()
			results.Unpooled = append(results.Unpooled, fit)
			continue
		}

		// Each group gets its own derived seed so chains differ.
		groupOpts := opts
		groupOpts.Seed = opts.Seed + int64(code) + 1
		trace, err := s.engine.Sample(ctx, gs.Spec, groupOpts)
		if err != nil {
			s.logger.Warn("unpooled group fit failed",
				zap.String("group", gs.Group),
				zap.Error(err),
			)
			fit.Error = err.Error()
			results.Unpooled = append(results.Unpooled, fit)
			continue
		}

		if fit.Summaries, err = trace.Summaries(); err != nil {
			return nil, err
		}
		unpooledTraces[code] = trace
		results.Unpooled = append(results.Unpooled, fit)
	}

	// Hierarchical.
	hierSpec, err := model.NewHierarchicalBuilder(s.logger).Build(ds)
	if err != nil {
		return nil, err
	}
	hierTrace, err := s.engine.Sample(ctx, hierSpec, opts)
	if err != nil {
		return nil, err
	}
	if results.Hierarchical, err = hierTrace.Summaries(); err != nil {
		return nil, err
	}

	if results.Comparison, err = s.comparison.Compare(ds, unpooledTraces, hierTrace); err != nil {
		return nil, err
	}

	return results, nil
}
