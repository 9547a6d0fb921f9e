package sampler

import (
	"context"

	"github.com/poolfit/poolfit/internal/domain"
)

// Options control one sampling run.
type Options struct {
	// Draws is the number of retained posterior samples.
	Draws int
	// Warmup is the number of adaptation iterations discarded before
	// retention begins.
	Warmup int
	// Seed makes the run reproducible. Two runs with the same spec,
	// options, and seed produce identical traces.
	Seed int64
}

// Engine is the inference boundary. The core pipeline hands an engine an
// abstract model spec and receives a posterior trace back; nothing
// upstream of this interface knows how the posterior is explored.
type Engine interface {
	Sample(ctx context.Context, spec *domain.ModelSpec, opts Options) (*domain.Trace, error)
}
