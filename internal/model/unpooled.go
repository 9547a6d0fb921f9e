package model

import (
	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/domain"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
)

// GroupSpec pairs one group with its independent model spec, or with
// the error that prevented building it. A failed group never aborts
// its siblings.
type GroupSpec struct {
	Group string
	Spec  *domain.ModelSpec
	Err   error
}

// UnpooledBuilder partitions the dataset by group and builds one
// independent spec per group, identical in form to the pooled one but
// with wider priors and fit only on that group's records. Groups with
// very few records yield ill-determined posteriors; that is expected
// behavior, not an error.
type UnpooledBuilder struct {
	logger *zap.Logger
}

// NewUnpooledBuilder creates a new unpooled model builder
func NewUnpooledBuilder(logger *zap.Logger) *UnpooledBuilder {
	return &UnpooledBuilder{logger: logger}
}

// Build produces one GroupSpec per distinct group, in group code order.
func (b *UnpooledBuilder) Build(ds *domain.Dataset) ([]GroupSpec, error) {
	if ds == nil || ds.GroupCount() == 0 {
		return nil, apperrors.ModelSpec("", "dataset has no groups")
	}

	specs := make([]GroupSpec, 0, ds.GroupCount())
	for code, label := range ds.Groups {
		records := ds.GroupRecords(code)
		if len(records) == 0 {
			b.logger.Warn("group has no records, skipping",
				zap.String("group", label),
			)
			specs = append(specs, GroupSpec{
				Group: label,
				Err:   apperrors.ModelSpec(label, "group has no records"),
			})
			continue
		}

		spec := newSpecBuilder("unpooled:"+label, domain.StrategyUnpooled).
			normalParam(ParamIntercept, domain.Const(0), domain.Const(unpooledPriorScale)).
			normalParam(ParamSlope, domain.Const(0), domain.Const(unpooledPriorScale)).
			scaleParam(ParamNoiseScale, noisePriorScale).
			likelihood([]string{ParamIntercept}, []string{ParamSlope}, ParamNoiseScale).
			observations(records, []string{label}, false).
			build()

		specs = append(specs, GroupSpec{Group: label, Spec: spec})
	}

	return specs, nil
}
