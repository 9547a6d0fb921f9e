package service

import (
	"fmt"
	"math"

	"github.com/poolfit/poolfit/internal/domain"
	"github.com/poolfit/poolfit/internal/model"
)

// ComparisonService derives the shrinkage report from fitted traces.
// It is pure computation: trace in, report out.
type ComparisonService struct{}

// NewComparisonService creates a new comparison service
func NewComparisonService() *ComparisonService {
	return &ComparisonService{}
}

// Compare pairs each group's unpooled posterior means with its
// hierarchical ones and measures the displacement between them. Groups
// whose unpooled fit failed are skipped; unpooledTraces is indexed by
// group code, with nil entries for failed groups.
func (s *ComparisonService) Compare(ds *domain.Dataset, unpooledTraces []*domain.Trace, hier *domain.Trace) (*domain.ShrinkageReport, error) {
	if len(unpooledTraces) != ds.GroupCount() {
		return nil, fmt.Errorf("expected %d unpooled traces, got %d", ds.GroupCount(), len(unpooledTraces))
	}

	popIntercept, err := hier.Mean(model.ParamMuIntercept)
	if err != nil {
		return nil, err
	}
	popSlope, err := hier.Mean(model.ParamMuSlope)
	if err != nil {
		return nil, err
	}

	sizes := ds.GroupSizes()
	report := &domain.ShrinkageReport{
		PopulationIntercept: popIntercept,
		PopulationSlope:     popSlope,
	}

	for code, label := range ds.Groups {
		trace := unpooledTraces[code]
		if trace == nil {
			continue
		}

		unpooled, err := pointEstimate(trace, model.ParamIntercept, model.ParamSlope)
		if err != nil {
			return nil, fmt.Errorf("group %s unpooled: %w", label, err)
		}
		partial, err := pointEstimate(hier, model.GroupInterceptParam(label), model.GroupSlopeParam(label))
		if err != nil {
			return nil, fmt.Errorf("group %s hierarchical: %w", label, err)
		}

		di := partial.Intercept - unpooled.Intercept
		dsl := partial.Slope - unpooled.Slope
		report.Pairs = append(report.Pairs, domain.ShrinkagePair{
			Group:          label,
			RecordCount:    sizes[code],
			Unpooled:       unpooled,
			Hierarchical:   partial,
			DeltaIntercept: di,
			DeltaSlope:     dsl,
			Magnitude:      math.Hypot(di, dsl),
		})
	}

	return report, nil
}

func pointEstimate(trace *domain.Trace, interceptParam, slopeParam string) (domain.GroupEstimate, error) {
	intercept, err := trace.Mean(interceptParam)
	if err != nil {
		return domain.GroupEstimate{}, err
	}
	slope, err := trace.Mean(slopeParam)
	if err != nil {
		return domain.GroupEstimate{}, err
	}
	return domain.GroupEstimate{Intercept: intercept, Slope: slope}, nil
}
