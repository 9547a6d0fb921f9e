package model

import (
	"github.com/poolfit/poolfit/internal/domain"
)

// Weakly-informative prior scales. The unpooled scale is wider to
// reflect less-regularized per-group fitting; the noise prior is
// heavy-tailed and positive-only.
const (
	pooledPriorScale   = 10.0
	unpooledPriorScale = 20.0
	hyperPriorScale    = 10.0
	noisePriorScale    = 5.0
)

// specBuilder accumulates named parameters, priors, and a likelihood
// declaration into a ModelSpec value.
type specBuilder struct {
	spec domain.ModelSpec
}

func newSpecBuilder(name string, strategy domain.PoolingStrategy) *specBuilder {
	return &specBuilder{
		spec: domain.ModelSpec{
			Name:     name,
			Strategy: strategy,
		},
	}
}

// param registers a named parameter with its prior.
func (b *specBuilder) param(name string, support domain.Support, prior domain.Prior) *specBuilder {
	b.spec.Params = append(b.spec.Params, domain.Parameter{
		Name:    name,
		Support: support,
		Prior:   prior,
	})
	return b
}

// normalParam registers an unconstrained parameter with a Normal prior.
func (b *specBuilder) normalParam(name string, loc, scale domain.PriorArg) *specBuilder {
	return b.param(name, domain.SupportReal, domain.Prior{
		Family: domain.PriorNormal,
		Loc:    loc,
		Scale:  scale,
	})
}

// scaleParam registers a positive parameter with a half-Cauchy prior.
func (b *specBuilder) scaleParam(name string, scale float64) *specBuilder {
	return b.param(name, domain.SupportPositive, domain.Prior{
		Family: domain.PriorHalfCauchy,
		Loc:    domain.Const(0),
		Scale:  domain.Const(scale),
	})
}

// likelihood declares the observation model.
func (b *specBuilder) likelihood(interceptParams, slopeParams []string, noiseParam string) *specBuilder {
	b.spec.Likelihood = domain.Likelihood{
		Family:          domain.LikelihoodNormal,
		InterceptParams: interceptParams,
		SlopeParams:     slopeParams,
		NoiseParam:      noiseParam,
	}
	return b
}

// observations attaches the predictor, outcome, and group index vectors.
func (b *specBuilder) observations(records []domain.Record, groups []string, useGroupIdx bool) *specBuilder {
	n := len(records)
	x := make([]float64, n)
	y := make([]float64, n)
	idx := make([]int, n)
	for i, r := range records {
		x[i] = r.LogArea
		y[i] = r.LogPrice
		if useGroupIdx {
			idx[i] = r.GroupCode
		}
	}
	b.spec.X = x
	b.spec.Y = y
	b.spec.GroupIdx = idx
	b.spec.Groups = groups
	return b
}

func (b *specBuilder) build() *domain.ModelSpec {
	spec := b.spec
	return &spec
}
