package sampler

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/dataprep"
	"github.com/poolfit/poolfit/internal/domain"
	"github.com/poolfit/poolfit/internal/model"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
)

// jitter is a fixed multiplicative noise cycle, so fixtures are
// reproducible without seeding anything in the test itself.
var jitter = []float64{1.12, 0.91, 1.05, 0.94, 1.08, 0.96}

// lineGroup appends records following price = coeff * area^slope with
// multiplicative noise, which is a noisy line in log-log space.
func lineGroup(inputs []domain.RecordInput, group string, coeff, slope float64, areas []float64) []domain.RecordInput {
	for i, area := range areas {
		price := coeff * math.Pow(area, slope) * jitter[i%len(jitter)]
		inputs = append(inputs, domain.RecordInput{
			RowID:      fmt.Sprintf("%s-%d", group, i),
			Price:      price,
			Area:       area,
			GroupLabel: group,
		})
	}
	return inputs
}

func slopeOneDataset(t *testing.T) *domain.Dataset {
	t.Helper()
	areas := []float64{100, 200, 400, 800, 1600, 3200}
	var inputs []domain.RecordInput
	inputs = lineGroup(inputs, "B", 10, 1, areas)
	inputs = lineGroup(inputs, "C", 20, 1, areas)
	inputs = lineGroup(inputs, "D", 5, 1, areas)

	ds, err := dataprep.NewPreparer(zap.NewNop()).Prepare("slope-one", inputs)
	require.NoError(t, err)
	return ds
}

func TestMetropolis_Sample(t *testing.T) {
	engine := NewMetropolis(zap.NewNop())
	ctx := context.Background()

	t.Run("trace has the requested shape", func(t *testing.T) {
		spec, err := model.NewPooledBuilder(zap.NewNop()).Build(slopeOneDataset(t))
		require.NoError(t, err)

		trace, err := engine.Sample(ctx, spec, Options{Draws: 200, Warmup: 100, Seed: 1})
		require.NoError(t, err)

		assert.Equal(t, 200, trace.Len())
		assert.Equal(t, spec.ParamNames(), trace.ParamNames)
		assert.Equal(t, domain.StrategyPooled, trace.Strategy)
		assert.Len(t, trace.AcceptRate, spec.NumParams())
		for _, d := range trace.Draws {
			assert.Len(t, []float64(d), spec.NumParams())
		}
	})

	t.Run("same seed reproduces the trace exactly", func(t *testing.T) {
		spec, err := model.NewPooledBuilder(zap.NewNop()).Build(slopeOneDataset(t))
		require.NoError(t, err)

		a, err := engine.Sample(ctx, spec, Options{Draws: 100, Warmup: 100, Seed: 42})
		require.NoError(t, err)
		b, err := engine.Sample(ctx, spec, Options{Draws: 100, Warmup: 100, Seed: 42})
		require.NoError(t, err)

		assert.Equal(t, a.Draws, b.Draws)
	})

	t.Run("different seeds explore differently", func(t *testing.T) {
		spec, err := model.NewPooledBuilder(zap.NewNop()).Build(slopeOneDataset(t))
		require.NoError(t, err)

		a, err := engine.Sample(ctx, spec, Options{Draws: 100, Warmup: 100, Seed: 1})
		require.NoError(t, err)
		b, err := engine.Sample(ctx, spec, Options{Draws: 100, Warmup: 100, Seed: 2})
		require.NoError(t, err)

		assert.NotEqual(t, a.Draws, b.Draws)
	})

	t.Run("recovers a known slope", func(t *testing.T) {
		spec, err := model.NewPooledBuilder(zap.NewNop()).Build(slopeOneDataset(t))
		require.NoError(t, err)

		trace, err := engine.Sample(ctx, spec, Options{Draws: 2000, Warmup: 1000, Seed: 7})
		require.NoError(t, err)

		slope, err := trace.Mean(model.ParamSlope)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, slope, 0.1)
	})

	t.Run("positive-support draws stay positive", func(t *testing.T) {
		spec, err := model.NewPooledBuilder(zap.NewNop()).Build(slopeOneDataset(t))
		require.NoError(t, err)

		trace, err := engine.Sample(ctx, spec, Options{Draws: 500, Warmup: 500, Seed: 3})
		require.NoError(t, err)

		noise, err := trace.Values(model.ParamNoiseScale)
		require.NoError(t, err)
		for _, v := range noise {
			assert.Greater(t, v, 0.0)
		}
	})

	t.Run("rejects non-positive draws option", func(t *testing.T) {
		spec, err := model.NewPooledBuilder(zap.NewNop()).Build(slopeOneDataset(t))
		require.NoError(t, err)

		_, err = engine.Sample(ctx, spec, Options{Draws: 0, Warmup: 100, Seed: 1})
		require.Error(t, err)
		assert.True(t, apperrors.IsSamplerError(err))

		_, err = engine.Sample(ctx, spec, Options{Draws: 100, Warmup: -1, Seed: 1})
		require.Error(t, err)
		assert.True(t, apperrors.IsSamplerError(err))
	})

	t.Run("rejects a spec with dangling prior references", func(t *testing.T) {
		spec, err := model.NewPooledBuilder(zap.NewNop()).Build(slopeOneDataset(t))
		require.NoError(t, err)
		spec.Params[0].Prior.Loc = domain.Ref("no_such_param")

		_, err = engine.Sample(ctx, spec, Options{Draws: 100, Warmup: 100, Seed: 1})
		require.Error(t, err)
		assert.True(t, apperrors.IsSamplerError(err))
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		spec, err := model.NewPooledBuilder(zap.NewNop()).Build(slopeOneDataset(t))
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = engine.Sample(cancelled, spec, Options{Draws: 5000, Warmup: 5000, Seed: 1})
		require.Error(t, err)
		assert.True(t, apperrors.IsSamplerError(err))
	})
}

// TestMetropolis_HierarchicalShrinkage checks the defining behavior of
// partial pooling: group A is exactly flat (slope 0), group B follows
// a unit log-log slope, and neither has much data. A's hierarchical
// slope must land strictly between its unpooled estimate and the
// population slope. The records are noise-free, so A's unpooled
// posterior concentrates hard at zero and the ordering does not hinge
// on where a wide posterior mean happens to fall.
func TestMetropolis_HierarchicalShrinkage(t *testing.T) {
	inputs := []domain.RecordInput{
		{RowID: "A-0", Price: 1000, Area: 100, GroupLabel: "A"},
		{RowID: "A-1", Price: 1000, Area: 200, GroupLabel: "A"},
		{RowID: "A-2", Price: 1000, Area: 400, GroupLabel: "A"},
		{RowID: "B-0", Price: 500, Area: 100, GroupLabel: "B"},
		{RowID: "B-1", Price: 1000, Area: 200, GroupLabel: "B"},
		{RowID: "B-2", Price: 2000, Area: 400, GroupLabel: "B"},
	}

	ds, err := dataprep.NewPreparer(zap.NewNop()).Prepare("shrinkage", inputs)
	require.NoError(t, err)

	engine := NewMetropolis(zap.NewNop())
	ctx := context.Background()
	opts := Options{Draws: 4000, Warmup: 2000, Seed: 11}

	groupSpecs, err := model.NewUnpooledBuilder(zap.NewNop()).Build(ds)
	require.NoError(t, err)
	require.Equal(t, "A", groupSpecs[0].Group)
	require.NoError(t, groupSpecs[0].Err)

	unpooledTrace, err := engine.Sample(ctx, groupSpecs[0].Spec, opts)
	require.NoError(t, err)
	unpooledSlope, err := unpooledTrace.Mean(model.ParamSlope)
	require.NoError(t, err)

	hierSpec, err := model.NewHierarchicalBuilder(zap.NewNop()).Build(ds)
	require.NoError(t, err)
	hierTrace, err := engine.Sample(ctx, hierSpec, opts)
	require.NoError(t, err)

	hierSlope, err := hierTrace.Mean(model.GroupSlopeParam("A"))
	require.NoError(t, err)
	muSlope, err := hierTrace.Mean(model.ParamMuSlope)
	require.NoError(t, err)

	// The flat group sits at zero; group B's signal pulls the
	// population slope above it.
	assert.InDelta(t, 0.0, unpooledSlope, 0.1)
	assert.Greater(t, muSlope, 0.1)

	// Partial pooling pulls the flat group toward the population,
	// but not all the way.
	assert.Greater(t, hierSlope, unpooledSlope)
	assert.Less(t, hierSlope, muSlope)
}
