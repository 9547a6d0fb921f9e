package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolfit/poolfit/internal/domain"
	"github.com/poolfit/poolfit/internal/model"
)

// constantTrace builds a trace whose every draw equals the given values,
// so posterior means are exact.
func constantTrace(names []string, values []float64) *domain.Trace {
	draws := make([]domain.PosteriorSample, 10)
	for i := range draws {
		draws[i] = append(domain.PosteriorSample(nil), values...)
	}
	return &domain.Trace{ParamNames: names, Draws: draws}
}

func twoGroupDataset() *domain.Dataset {
	return &domain.Dataset{
		Groups: []string{"A", "B"},
		Records: []domain.Record{
			{GroupCode: 0}, {GroupCode: 0}, {GroupCode: 0},
			{GroupCode: 1},
		},
	}
}

func unpooledNames() []string {
	return []string{model.ParamIntercept, model.ParamSlope, model.ParamNoiseScale}
}

func hierNames(groups []string) []string {
	names := []string{
		model.ParamMuIntercept, model.ParamSigmaIntercept,
		model.ParamMuSlope, model.ParamSigmaSlope,
	}
	for _, g := range groups {
		names = append(names, model.GroupInterceptParam(g), model.GroupSlopeParam(g))
	}
	return append(names, model.ParamNoiseScale)
}

func TestComparisonService_Compare(t *testing.T) {
	svc := NewComparisonService()

	t.Run("pairs unpooled and hierarchical estimates per group", func(t *testing.T) {
		ds := twoGroupDataset()
		unpooled := []*domain.Trace{
			constantTrace(unpooledNames(), []float64{1.0, 0.2, 0.1}),
			constantTrace(unpooledNames(), []float64{3.0, 1.4, 0.1}),
		}
		hier := constantTrace(hierNames(ds.Groups), []float64{
			2.0, 0.5, 0.8, 0.3, // population
			1.5, 0.5, // A, pulled up
			2.6, 1.1, // B, pulled down
			0.1,
		})

		report, err := svc.Compare(ds, unpooled, hier)
		require.NoError(t, err)

		assert.InDelta(t, 2.0, report.PopulationIntercept, 1e-12)
		assert.InDelta(t, 0.8, report.PopulationSlope, 1e-12)
		require.Len(t, report.Pairs, 2)

		a := report.Pairs[0]
		assert.Equal(t, "A", a.Group)
		assert.Equal(t, 3, a.RecordCount)
		assert.InDelta(t, 0.5, a.DeltaIntercept, 1e-12)
		assert.InDelta(t, 0.3, a.DeltaSlope, 1e-12)
		assert.InDelta(t, math.Hypot(0.5, 0.3), a.Magnitude, 1e-12)

		b := report.Pairs[1]
		assert.Equal(t, "B", b.Group)
		assert.Equal(t, 1, b.RecordCount)
		assert.InDelta(t, -0.4, b.DeltaIntercept, 1e-12)
		assert.InDelta(t, -0.3, b.DeltaSlope, 1e-12)
	})

	t.Run("skips groups whose unpooled fit failed", func(t *testing.T) {
		ds := twoGroupDataset()
		unpooled := []*domain.Trace{
			nil,
			constantTrace(unpooledNames(), []float64{3.0, 1.4, 0.1}),
		}
		hier := constantTrace(hierNames(ds.Groups), []float64{
			2.0, 0.5, 0.8, 0.3,
			1.5, 0.5,
			2.6, 1.1,
			0.1,
		})

		report, err := svc.Compare(ds, unpooled, hier)
		require.NoError(t, err)
		require.Len(t, report.Pairs, 1)
		assert.Equal(t, "B", report.Pairs[0].Group)
	})

	t.Run("rejects a trace count mismatch", func(t *testing.T) {
		ds := twoGroupDataset()
		_, err := svc.Compare(ds, nil, constantTrace(hierNames(ds.Groups), make([]float64, 9)))
		require.Error(t, err)
	})

	t.Run("rejects a hierarchical trace missing group parameters", func(t *testing.T) {
		ds := twoGroupDataset()
		unpooled := []*domain.Trace{
			constantTrace(unpooledNames(), []float64{1.0, 0.2, 0.1}),
			constantTrace(unpooledNames(), []float64{3.0, 1.4, 0.1}),
		}
		hier := constantTrace(hierNames([]string{"A"}), make([]float64, 7))

		_, err := svc.Compare(ds, unpooled, hier)
		require.Error(t, err)
	})
}
