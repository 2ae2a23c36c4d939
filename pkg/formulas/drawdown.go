package formulas

// DrawdownMetrics represents drawdown analysis over a value trajectory.
type DrawdownMetrics struct {
	MaxDrawdown  float64 `json:"max_drawdown"`            // Signed: -0.25 = 25% loss from peak
	DurationDays int     `json:"duration_days"`           // Steps from peak to trough of the max drawdown
	RecoveryDays *int    `json:"recovery_days,omitempty"` // Steps from trough back to the prior peak, nil if never recovered
	PeakValue    float64 `json:"peak_value"`
	TroughValue  float64 `json:"trough_value"`
}

// MaxDrawdown calculates the maximum drawdown of a value trajectory.
//
// Drawdown at each step is (value - peak) / peak against the running peak, so
// every drawdown is <= 0. The maximum drawdown is the most negative value
// across the series; 0 means the trajectory never fell below a prior peak.
func MaxDrawdown(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}

	maxDD := 0.0
	peak := values[0]

	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (v - peak) / peak
			if dd < maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// CalculateDrawdownMetrics calculates the maximum drawdown together with its
// peak-to-trough duration and, when the trajectory regains the prior peak,
// the trough-to-recovery time.
func CalculateDrawdownMetrics(values []float64) DrawdownMetrics {
	if len(values) < 2 {
		return DrawdownMetrics{}
	}

	maxDD := 0.0
	peak := values[0]
	peakIdx := 0
	troughIdx := 0
	maxDDPeakIdx := 0
	maxDDPeak := values[0]

	for i, v := range values {
		if v > peak {
			peak = v
			peakIdx = i
		}
		if peak > 0 {
			dd := (v - peak) / peak
			if dd < maxDD {
				maxDD = dd
				troughIdx = i
				maxDDPeakIdx = peakIdx
				maxDDPeak = peak
			}
		}
	}

	metrics := DrawdownMetrics{
		MaxDrawdown:  maxDD,
		DurationDays: troughIdx - maxDDPeakIdx,
		PeakValue:    maxDDPeak,
	}
	if maxDD < 0 {
		metrics.TroughValue = values[troughIdx]
	} else {
		metrics.TroughValue = maxDDPeak
	}

	// Recovery: first step after the trough where the prior peak is regained.
	for i := troughIdx + 1; i < len(values); i++ {
		if values[i] >= maxDDPeak {
			recovery := i - troughIdx
			metrics.RecoveryDays = &recovery
			break
		}
	}

	return metrics
}
