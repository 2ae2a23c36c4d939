package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name        string
		values      []float64
		want        float64
		tolerance   float64
		description string
	}{
		{
			name:        "peak then trough",
			values:      []float64{100, 110, 60, 80},
			want:        -0.4545, // (60 - 110) / 110
			tolerance:   0.0001,
			description: "drawdown measures from the running peak, not the start",
		},
		{
			name:        "monotonically rising",
			values:      []float64{100, 105, 110, 120},
			want:        0.0,
			tolerance:   1e-9,
			description: "a trajectory that never falls has zero drawdown",
		},
		{
			name:        "second drawdown deeper",
			values:      []float64{100, 90, 95, 120, 60},
			want:        -0.50, // (60 - 120) / 120
			tolerance:   1e-9,
			description: "the most negative excursion wins",
		},
		{
			name:        "too short",
			values:      []float64{100},
			want:        0.0,
			tolerance:   1e-9,
			description: "a single observation has no drawdown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MaxDrawdown(tt.values)
			assert.InDelta(t, tt.want, result, tt.tolerance, tt.description)
		})
	}
}

func TestCalculateDrawdownMetrics(t *testing.T) {
	t.Run("with recovery", func(t *testing.T) {
		values := []float64{100, 110, 60, 80, 115}
		m := CalculateDrawdownMetrics(values)

		assert.InDelta(t, -0.4545, m.MaxDrawdown, 0.0001)
		assert.Equal(t, 1, m.DurationDays, "peak at step 1, trough at step 2")
		assert.Equal(t, 110.0, m.PeakValue)
		assert.Equal(t, 60.0, m.TroughValue)
		if assert.NotNil(t, m.RecoveryDays, "trajectory regains the prior peak") {
			assert.Equal(t, 2, *m.RecoveryDays, "trough at step 2, recovery at step 4")
		}
	})

	t.Run("never recovered", func(t *testing.T) {
		values := []float64{100, 110, 60, 80}
		m := CalculateDrawdownMetrics(values)

		assert.InDelta(t, -0.4545, m.MaxDrawdown, 0.0001)
		assert.Nil(t, m.RecoveryDays)
	})

	t.Run("flat trajectory", func(t *testing.T) {
		m := CalculateDrawdownMetrics([]float64{100, 100, 100})
		assert.Equal(t, 0.0, m.MaxDrawdown)
		assert.Nil(t, m.RecoveryDays)
	})
}
