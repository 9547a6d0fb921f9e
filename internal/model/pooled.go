package model

import (
	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/domain"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
)

// Parameter names shared by the pooled and unpooled specs.
const (
	ParamIntercept  = "intercept"
	ParamSlope      = "slope"
	ParamNoiseScale = "noise_scale"
)

// PooledBuilder specifies a single global linear relationship between
// log area and log price, ignoring group structure entirely. It is the
// total-pooling baseline: all groups share one line.
type PooledBuilder struct {
	logger *zap.Logger
}

// NewPooledBuilder creates a new pooled model builder
func NewPooledBuilder(logger *zap.Logger) *PooledBuilder {
	return &PooledBuilder{logger: logger}
}

// Build produces a three-parameter spec (intercept, slope, noise_scale)
// whose likelihood ties every record's log price to
// intercept + slope*log_area, independently across all records.
func (b *PooledBuilder) Build(ds *domain.Dataset) (*domain.ModelSpec, error) {
	if ds == nil || len(ds.Records) == 0 {
		return nil, apperrors.ModelSpec("", "dataset has no records")
	}

	spec := newSpecBuilder("pooled", domain.StrategyPooled).
		normalParam(ParamIntercept, domain.Const(0), domain.Const(pooledPriorScale)).
		normalParam(ParamSlope, domain.Const(0), domain.Const(pooledPriorScale)).
		scaleParam(ParamNoiseScale, noisePriorScale).
		likelihood([]string{ParamIntercept}, []string{ParamSlope}, ParamNoiseScale).
		observations(ds.Records, nil, false).
		build()

	b.logger.Debug("built pooled spec",
		zap.Int("observations", spec.ObservationCount()),
		zap.Int("params", spec.NumParams()),
	)

	return spec, nil
}
