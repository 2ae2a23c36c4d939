package formulas

import (
	"math"
	"sort"
)

// DiversificationScore calculates the normalized Shannon entropy of a weight
// distribution: -Σ w·ln(w) divided by ln(n).
//
// The result is in [0,1]: 0 for a single-asset portfolio, approaching 1 for
// equal weights across many assets. Zero weights contribute nothing.
func DiversificationScore(weights []float64) float64 {
	n := 0
	entropy := 0.0
	for _, w := range weights {
		if w <= 0 {
			continue
		}
		entropy -= w * math.Log(w)
		n++
	}
	if n < 2 {
		return 0.0
	}

	score := entropy / math.Log(float64(n))
	return clamp01(score)
}

// HerfindahlIndex calculates the sum of squared weights. 1/n for equal
// weights, 1.0 for a single-asset portfolio.
func HerfindahlIndex(weights []float64) float64 {
	hhi := 0.0
	for _, w := range weights {
		hhi += w * w
	}
	return hhi
}

// EffectiveAssets calculates the effective number of assets, 1/HHI.
func EffectiveAssets(weights []float64) float64 {
	hhi := HerfindahlIndex(weights)
	if hhi <= 0 {
		return 0.0
	}
	return 1.0 / hhi
}

// ConcentrationRisk normalizes the Herfindahl index so that perfectly equal
// weighting yields 0 and single-asset concentration yields 1:
// (HHI - 1/n) / (1 - 1/n).
func ConcentrationRisk(weights []float64) float64 {
	n := countHeld(weights)
	if n <= 1 {
		return 1.0
	}

	invN := 1.0 / float64(n)
	risk := (HerfindahlIndex(weights) - invN) / (1.0 - invN)
	return clamp01(risk)
}

// GiniCoefficient calculates the Gini inequality coefficient over a weight
// distribution: (1/n) Σ (2(i+1) - n - 1)·w_i with weights sorted ascending.
// 0 means perfectly equal weights, values near 1 mean a single dominant
// position. Clamped to [0,1].
func GiniCoefficient(weights []float64) float64 {
	held := make([]float64, 0, len(weights))
	for _, w := range weights {
		if w > 0 {
			held = append(held, w)
		}
	}
	n := len(held)
	if n == 0 {
		return 0.0
	}

	sort.Float64s(held)

	sum := 0.0
	for i, w := range held {
		sum += (2.0*float64(i+1) - float64(n) - 1.0) * w
	}
	return clamp01(sum / float64(n))
}

// MaxWeight returns the largest weight in the distribution.
func MaxWeight(weights []float64) float64 {
	maxW := 0.0
	for _, w := range weights {
		if w > maxW {
			maxW = w
		}
	}
	return maxW
}

func countHeld(weights []float64) int {
	n := 0
	for _, w := range weights {
		if w > 0 {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0.0
	}
	if v > 1 {
		return 1.0
	}
	return v
}
