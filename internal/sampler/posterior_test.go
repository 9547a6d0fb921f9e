package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/model"
)

func TestHalfCauchyLogProb(t *testing.T) {
	t.Run("matches the analytic density", func(t *testing.T) {
		// f(x; 0, scale) = 2 / (pi * scale * (1 + (x/scale)^2))
		tests := []struct {
			name            string
			x, loc, scale   float64
			expectedLogProb float64
		}{
			{"unit scale at x=1", 1, 0, 1, math.Log(1 / math.Pi)},
			{"unit scale at x=2", 2, 0, 1, math.Log(2 / (math.Pi * 5))},
			{"scale 2 at x=2", 2, 0, 2, math.Log(1 / (2 * math.Pi))},
			{"shifted location", 6, 1, 5, math.Log(1 / (5 * math.Pi))},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.InDelta(t, tt.expectedLogProb, halfCauchyLogProb(tt.x, tt.loc, tt.scale), 1e-12)
			})
		}
	})

	t.Run("is twice the full Cauchy density", func(t *testing.T) {
		// Doubling the density adds exactly ln 2 to the log.
		full := halfCauchyLogProb(3, 0, 4) - math.Ln2
		assert.InDelta(t, math.Log(4/(math.Pi*25)), full, 1e-12)
	})
}

func TestPosteriorLogProb(t *testing.T) {
	spec, err := model.NewPooledBuilder(zap.NewNop()).Build(slopeOneDataset(t))
	require.NoError(t, err)

	post, err := newPosterior(spec)
	require.NoError(t, err)

	noiseIdx, ok := spec.ParamIndex(model.ParamNoiseScale)
	require.True(t, ok)

	t.Run("finite at an interior point", func(t *testing.T) {
		theta := make([]float64, spec.NumParams())
		theta[noiseIdx] = 1
		lp := post.logProb(theta)
		assert.False(t, math.IsInf(lp, 0))
		assert.False(t, math.IsNaN(lp))
	})

	t.Run("rejects a nonpositive noise scale", func(t *testing.T) {
		theta := make([]float64, spec.NumParams())
		theta[noiseIdx] = -0.5
		assert.True(t, math.IsInf(post.logProb(theta), -1))
	})

	t.Run("moving toward the data raises the log posterior", func(t *testing.T) {
		far := make([]float64, spec.NumParams())
		far[noiseIdx] = 1
		near := make([]float64, spec.NumParams())
		near[noiseIdx] = 1
		interceptIdx, ok := spec.ParamIndex(model.ParamIntercept)
		require.True(t, ok)
		slopeIdx, ok := spec.ParamIndex(model.ParamSlope)
		require.True(t, ok)
		near[interceptIdx] = 2.5
		near[slopeIdx] = 1

		assert.Greater(t, post.logProb(near), post.logProb(far))
	})
}
