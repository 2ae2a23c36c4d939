package formulas

import (
	"math"
	"sort"
)

// Fixed normal-approximation constants by confidence level. Unknown levels
// fall back to the 95% entries. These are lookup data, not derived values;
// adjust here if a different statistical table is preferred.
var (
	varZScores = map[float64]float64{
		0.90:  1.282,
		0.95:  1.645,
		0.99:  2.326,
		0.995: 2.576,
	}

	cvarMultipliers = map[float64]float64{
		0.90:  1.755,
		0.95:  2.063,
		0.99:  2.665,
		0.995: 2.892,
	}
)

// VaRZScore returns the z-score used for parametric VaR at the given
// confidence level, defaulting to the 95% value for unknown levels.
func VaRZScore(confidence float64) float64 {
	if z, ok := varZScores[confidence]; ok {
		return z
	}
	return varZScores[0.95]
}

// CVaRMultiplier returns the expected-shortfall multiplier used for
// parametric CVaR at the given confidence level, defaulting to 95%.
func CVaRMultiplier(confidence float64) float64 {
	if m, ok := cvarMultipliers[confidence]; ok {
		return m
	}
	return cvarMultipliers[0.95]
}

// varIndex returns the index of the VaR observation in an ascending-sorted
// return distribution: floor((1-confidence) * count), clamped to valid range.
func varIndex(count int, confidence float64) int {
	idx := int(math.Floor((1.0 - confidence) * float64(count)))
	if idx < 0 {
		idx = 0
	}
	if idx > count-1 {
		idx = count - 1
	}
	return idx
}

// EmpiricalVaR calculates Value at Risk from a return distribution.
//
// Returns are sorted ascending (worst first); VaR is the return at index
// floor((1-confidence) * count). The result is a raw return (negative for a
// loss). Use VaRLoss to convert to a positive loss magnitude.
func EmpiricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	return sorted[varIndex(len(sorted), confidence)]
}

// EmpiricalCVaR calculates Conditional Value at Risk (expected shortfall)
// from a return distribution: the mean of all returns at or below the VaR
// index. When no returns qualify beyond the VaR observation itself, CVaR
// equals VaR, so CVaR is always at least as extreme as VaR.
func EmpiricalCVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := varIndex(len(sorted), confidence)
	tail := sorted[:idx+1]

	sum := 0.0
	for _, r := range tail {
		sum += r
	}
	return sum / float64(len(tail))
}

// VaRLoss converts a raw tail return to a positive loss magnitude. Gains in
// the tail map to zero loss.
func VaRLoss(tailReturn float64) float64 {
	if tailReturn >= 0 {
		return 0.0
	}
	return -tailReturn
}

// ParametricVaR calculates normal-approximation VaR as an absolute loss
// amount: z(confidence) × volatility × portfolioValue. Used when only a
// volatility estimate is available instead of a return sample.
func ParametricVaR(volatility, portfolioValue, confidence float64) float64 {
	return VaRZScore(confidence) * volatility * portfolioValue
}

// ParametricCVaR calculates normal-approximation CVaR as an absolute loss
// amount using the expected-shortfall multiplier for the confidence level.
func ParametricCVaR(volatility, portfolioValue, confidence float64) float64 {
	return CVaRMultiplier(confidence) * volatility * portfolioValue
}
