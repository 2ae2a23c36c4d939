package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSingleAssetPortfolio(t *testing.T) {
	weights := []float64{1.0}

	assert.Equal(t, 0.0, DiversificationScore(weights), "one asset cannot be diversified")
	assert.Equal(t, 1.0, HerfindahlIndex(weights))
	assert.Equal(t, 1.0, EffectiveAssets(weights))
	assert.Equal(t, 1.0, ConcentrationRisk(weights))
	assert.Equal(t, 0.0, GiniCoefficient(weights), "a single weight has no inequality")
	assert.Equal(t, 1.0, MaxWeight(weights))
}

func TestEqualWeights(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{name: "two assets", n: 2},
		{name: "four assets", n: 4},
		{name: "ten assets", n: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights := make([]float64, tt.n)
			for i := range weights {
				weights[i] = 1.0 / float64(tt.n)
			}

			assert.InDelta(t, 1.0, DiversificationScore(weights), 1e-9, "equal weights maximize entropy")
			assert.InDelta(t, 1.0/float64(tt.n), HerfindahlIndex(weights), 1e-9)
			assert.InDelta(t, float64(tt.n), EffectiveAssets(weights), 1e-9)
			assert.InDelta(t, 0.0, ConcentrationRisk(weights), 1e-9)
			assert.InDelta(t, 0.0, GiniCoefficient(weights), 1e-9)
		})
	}
}

func TestSkewedWeights(t *testing.T) {
	weights := []float64{0.70, 0.20, 0.10}

	score := DiversificationScore(weights)
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0, "skewed weights score strictly below equal weighting")

	hhi := HerfindahlIndex(weights)
	assert.InDelta(t, 0.54, hhi, 1e-9) // 0.49 + 0.04 + 0.01
	assert.InDelta(t, 1.0/0.54, EffectiveAssets(weights), 1e-9)

	risk := ConcentrationRisk(weights)
	assert.Greater(t, risk, 0.0)
	assert.Less(t, risk, 1.0)

	gini := GiniCoefficient(weights)
	assert.Greater(t, gini, 0.0)
	assert.LessOrEqual(t, gini, 1.0)

	assert.Equal(t, 0.70, MaxWeight(weights))
}

func TestZeroWeightsIgnored(t *testing.T) {
	withZeros := []float64{0.5, 0.0, 0.5, 0.0}
	without := []float64{0.5, 0.5}

	assert.InDelta(t, DiversificationScore(without), DiversificationScore(withZeros), 1e-9)
	assert.InDelta(t, GiniCoefficient(without), GiniCoefficient(withZeros), 1e-9)
	assert.InDelta(t, ConcentrationRisk(without), ConcentrationRisk(withZeros), 1e-9)
}

func TestGiniDominantAsset(t *testing.T) {
	// 50 assets with one holding 99.9% of value. Gini needs a wide
	// portfolio to approach 1: at n=2 even a 99.9% position caps out
	// near 0.5 under the (2i-n-1) form.
	weights := make([]float64, 50)
	for i := range weights {
		weights[i] = 0.001 / 49
	}
	weights[0] = 0.999

	gini := GiniCoefficient(weights)
	assert.InDelta(t, 0.979, gini, 1e-3)
	assert.Greater(t, gini, 0.9, "extreme concentration drives Gini toward 1")

	assert.InDelta(t, 0.499, GiniCoefficient([]float64{0.999, 0.001}), 1e-3)
}

func TestGiniBounds(t *testing.T) {
	cases := [][]float64{
		{1.0},
		{0.5, 0.5},
		{0.9, 0.05, 0.05},
		{0.99, 0.01},
		{0.25, 0.25, 0.25, 0.25},
	}
	for _, weights := range cases {
		gini := GiniCoefficient(weights)
		assert.GreaterOrEqual(t, gini, 0.0)
		assert.LessOrEqual(t, gini, 1.0)
	}
}
