package model

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/domain"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
)

// Hyperparameter names of the hierarchical spec.
const (
	ParamMuIntercept    = "mu_intercept"
	ParamSigmaIntercept = "sigma_intercept"
	ParamMuSlope        = "mu_slope"
	ParamSigmaSlope     = "sigma_slope"
)

// GroupInterceptParam returns the per-group intercept parameter name.
func GroupInterceptParam(label string) string {
	return fmt.Sprintf("intercept[%s]", label)
}

// GroupSlopeParam returns the per-group slope parameter name.
func GroupSlopeParam(label string) string {
	return fmt.Sprintf("slope[%s]", label)
}

// HierarchicalBuilder produces a single spec spanning all groups, with
// per-group intercepts and slopes drawn from shared population
// distributions. Each group's parameters are regularized toward the
// population mean: groups with few observations are pulled strongly,
// data-rich groups less so. The shrinkage emerges from the joint
// posterior structure; no explicit formula is coded.
type HierarchicalBuilder struct {
	logger *zap.Logger
}

// NewHierarchicalBuilder creates a new hierarchical model builder
func NewHierarchicalBuilder(logger *zap.Logger) *HierarchicalBuilder {
	return &HierarchicalBuilder{logger: logger}
}

// Build produces a spec with 4 hyperparameters, 2 per-group parameters
// for each of the G groups, and 1 shared noise scale: 4 + 2G + 1
// parameters in total.
func (b *HierarchicalBuilder) Build(ds *domain.Dataset) (*domain.ModelSpec, error) {
	if ds == nil || len(ds.Records) == 0 {
		return nil, apperrors.ModelSpec("", "dataset has no records")
	}
	if ds.GroupCount() == 0 {
		return nil, apperrors.ModelSpec("", "dataset has no groups")
	}

	sb := newSpecBuilder("hierarchical", domain.StrategyHierarchical).
		normalParam(ParamMuIntercept, domain.Const(0), domain.Const(hyperPriorScale)).
		scaleParam(ParamSigmaIntercept, noisePriorScale).
		normalParam(ParamMuSlope, domain.Const(0), domain.Const(hyperPriorScale)).
		scaleParam(ParamSigmaSlope, noisePriorScale)

	interceptParams := make([]string, ds.GroupCount())
	slopeParams := make([]string, ds.GroupCount())
	for code, label := range ds.Groups {
		interceptParams[code] = GroupInterceptParam(label)
		slopeParams[code] = GroupSlopeParam(label)

		sb.normalParam(interceptParams[code], domain.Ref(ParamMuIntercept), domain.Ref(ParamSigmaIntercept))
		sb.normalParam(slopeParams[code], domain.Ref(ParamMuSlope), domain.Ref(ParamSigmaSlope))
	}

	spec := sb.
		scaleParam(ParamNoiseScale, noisePriorScale).
		likelihood(interceptParams, slopeParams, ParamNoiseScale).
		observations(ds.Records, ds.Groups, true).
		build()

	b.logger.Debug("built hierarchical spec",
		zap.Int("groups", ds.GroupCount()),
		zap.Int("params", spec.NumParams()),
		zap.Int("observations", spec.ObservationCount()),
	)

	return spec, nil
}
