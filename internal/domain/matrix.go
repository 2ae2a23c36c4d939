package domain

import (
	"math"
	"time"
)

// CorrelationMatrix holds pairwise correlations for an ordered asset universe
// together with the estimation context. Symmetric with a unit diagonal.
type CorrelationMatrix struct {
	Symbols    []string    `json:"symbols"`
	Matrix     [][]float64 `json:"matrix"`
	Timestamp  time.Time   `json:"timestamp"`
	Window     string      `json:"window"` // e.g. "90d"
	Confidence float64     `json:"confidence"`
}

// Valid reports whether the matrix is square, matches the symbol list,
// is symmetric with a unit diagonal, and has all entries in [-1, 1].
// Callers treat an invalid matrix the same as an absent one.
func (m *CorrelationMatrix) Valid() bool {
	if m == nil {
		return false
	}
	n := len(m.Symbols)
	if n == 0 || len(m.Matrix) != n {
		return false
	}

	const tol = 1e-9
	for i := 0; i < n; i++ {
		if len(m.Matrix[i]) != n {
			return false
		}
		if math.Abs(m.Matrix[i][i]-1.0) > tol {
			return false
		}
		for j := 0; j < n; j++ {
			v := m.Matrix[i][j]
			if v < -1.0-tol || v > 1.0+tol {
				return false
			}
			if math.Abs(v-m.Matrix[j][i]) > tol {
				return false
			}
		}
	}
	return true
}

// Lookup returns the correlation between two symbols, or (0, false) when
// either symbol is not part of the matrix universe.
func (m *CorrelationMatrix) Lookup(a, b string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	ai, bi := -1, -1
	for i, s := range m.Symbols {
		if s == a {
			ai = i
		}
		if s == b {
			bi = i
		}
	}
	if ai < 0 || bi < 0 {
		return 0, false
	}
	return m.Matrix[ai][bi], true
}
