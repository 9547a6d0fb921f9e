package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
	"github.com/poolfit/poolfit/internal/service"
)

// TypeFitRun is the task type for executing a fit run
const TypeFitRun = "fit:run"

// FitRunPayload is the payload for fit run tasks
type FitRunPayload struct {
	FitRunID uuid.UUID `json:"fit_run_id"`
}

// NewFitRunTask creates a new fit run task
func NewFitRunTask(payload *FitRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fit run payload: %w", err)
	}
	return asynq.NewTask(TypeFitRun, data, asynq.MaxRetry(2), asynq.Timeout(30*time.Minute)), nil
}

// FitWorker handles fit run tasks
type FitWorker struct {
	logger     *zap.Logger
	fitService *service.FitService
}

// NewFitWorker creates a new fit worker
func NewFitWorker(logger *zap.Logger, fitService *service.FitService) *FitWorker {
	return &FitWorker{
		logger:     logger,
		fitService: fitService,
	}
}

// ProcessTask executes a queued fit run
func (w *FitWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload FitRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal fit run payload: %w", err)
	}

	w.logger.Info("processing fit run",
		zap.String("fit_run_id", payload.FitRunID.String()),
	)

	_, err := w.fitService.Execute(ctx, payload.FitRunID)
	if err != nil {
		// A deleted run or one already finished by another worker is
		// not worth retrying.
		if apperrors.IsNotFound(err) || apperrors.IsConflict(err) {
			w.logger.Warn("dropping fit run task",
				zap.String("fit_run_id", payload.FitRunID.String()),
				zap.Error(err),
			)
			return nil
		}
		return fmt.Errorf("failed to execute fit run: %w", err)
	}

	return nil
}
