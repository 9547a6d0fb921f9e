package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/poolfit/poolfit/internal/config"
)

// Enqueuer hands fit runs to the background worker via Redis. It
// implements service.FitEnqueuer.
type Enqueuer struct {
	client *asynq.Client
	queue  string
}

// NewEnqueuer creates a new task enqueuer
func NewEnqueuer(cfg *config.Config) *Enqueuer {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	queue := cfg.Worker.QueueDefault
	if queue == "" {
		queue = "default"
	}

	return &Enqueuer{
		client: asynq.NewClient(redisOpt),
		queue:  queue,
	}
}

// EnqueueFitRun enqueues a fit run for background execution
func (e *Enqueuer) EnqueueFitRun(ctx context.Context, fitRunID uuid.UUID) error {
	task, err := NewFitRunTask(&FitRunPayload{FitRunID: fitRunID})
	if err != nil {
		return err
	}

	if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue(e.queue)); err != nil {
		return fmt.Errorf("failed to enqueue fit run task: %w", err)
	}

	return nil
}

// Close closes the underlying client
func (e *Enqueuer) Close() error {
	return e.client.Close()
}
