package sampler

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/domain"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
)

const (
	// targetAccept is the optimal acceptance rate for componentwise
	// random-walk proposals.
	targetAccept = 0.44
	// adaptWindow is the number of warmup iterations between step-size
	// adjustments.
	adaptWindow = 50
	// ctxCheckInterval bounds how stale a cancellation can go unnoticed.
	ctxCheckInterval = 100
)

// Metropolis is the reference inference engine: an adaptive
// componentwise random-walk Metropolis sampler. Positive-support
// parameters are explored in log space, so every proposal respects the
// support by construction. Step sizes adapt toward the target
// acceptance rate during warmup and are frozen afterwards.
type Metropolis struct {
	logger *zap.Logger
}

// NewMetropolis creates a new Metropolis engine
func NewMetropolis(logger *zap.Logger) *Metropolis {
	return &Metropolis{logger: logger}
}

var _ Engine = (*Metropolis)(nil)

// Sample explores the posterior of the spec and returns a trace of
// opts.Draws retained samples in constrained space.
func (m *Metropolis) Sample(ctx context.Context, spec *domain.ModelSpec, opts Options) (*domain.Trace, error) {
	if opts.Draws <= 0 {
		return nil, apperrors.Sampler(fmt.Errorf("draws must be positive, got %d", opts.Draws))
	}
	if opts.Warmup < 0 {
		return nil, apperrors.Sampler(fmt.Errorf("warmup must be non-negative, got %d", opts.Warmup))
	}

	post, err := newPosterior(spec)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	n := spec.NumParams()

	// z is the unconstrained state: identity for real parameters, log
	// for positive ones. The log-space Jacobian contributes z_j to the
	// target for each positive parameter.
	z := make([]float64, n)
	theta := make([]float64, n)
	logz := func(z []float64) float64 {
		jac := 0.0
		for j, p := range spec.Params {
			if p.Support == domain.SupportPositive {
				theta[j] = math.Exp(z[j])
				jac += z[j]
			} else {
				theta[j] = z[j]
			}
		}
		return post.logProb(theta) + jac
	}

	current := logz(z)
	if math.IsInf(current, -1) || math.IsNaN(current) {
		return nil, apperrors.Sampler(fmt.Errorf("spec %s: log posterior not finite at the initial point", spec.Name))
	}

	step := make([]float64, n)
	for j := range step {
		step[j] = 0.5
	}
	windowAccepts := make([]int, n)
	postAccepts := make([]int, n)

	total := opts.Warmup + opts.Draws
	draws := make([]domain.PosteriorSample, 0, opts.Draws)

	for iter := 0; iter < total; iter++ {
		if iter%ctxCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, apperrors.Sampler(fmt.Errorf("sampling %s: %w", spec.Name, ctx.Err()))
			default:
			}
		}

		warming := iter < opts.Warmup

		for j := 0; j < n; j++ {
			old := z[j]
			z[j] = old + step[j]*rng.NormFloat64()
			proposed := logz(z)

			if math.Log(rng.Float64()) < proposed-current {
				current = proposed
				if warming {
					windowAccepts[j]++
				} else {
					postAccepts[j]++
				}
			} else {
				z[j] = old
			}
		}

		if warming && (iter+1)%adaptWindow == 0 {
			for j := range step {
				rate := float64(windowAccepts[j]) / adaptWindow
				if rate > targetAccept {
					step[j] *= 1.1
				} else {
					step[j] *= 0.9
				}
				windowAccepts[j] = 0
			}
		}

		if !warming {
			sample := make(domain.PosteriorSample, n)
			for j, p := range spec.Params {
				if p.Support == domain.SupportPositive {
					sample[j] = math.Exp(z[j])
				} else {
					sample[j] = z[j]
				}
			}
			draws = append(draws, sample)
		}
	}

	acceptRate := make([]float64, n)
	for j, a := range postAccepts {
		acceptRate[j] = float64(a) / float64(opts.Draws)
	}

	m.logger.Debug("sampling finished",
		zap.String("spec", spec.Name),
		zap.Int("draws", opts.Draws),
		zap.Int("warmup", opts.Warmup),
		zap.Int64("seed", opts.Seed),
	)

	return &domain.Trace{
		SpecName:   spec.Name,
		Strategy:   spec.Strategy,
		ParamNames: spec.ParamNames(),
		Draws:      draws,
		Warmup:     opts.Warmup,
		Seed:       opts.Seed,
		AcceptRate: acceptRate,
	}, nil
}
