// Package stress runs scenario shocks, Monte Carlo simulations and
// historical backtests against portfolio snapshots.
package stress

import (
	"math"
	"time"

	"github.com/akentari/vigil/internal/domain"
	"github.com/akentari/vigil/internal/modules/diversification"
	"github.com/akentari/vigil/internal/modules/risk"
	"github.com/akentari/vigil/pkg/formulas"
)

// SimulationResult is the outcome of one stress test, Monte Carlo iteration
// or backtest run. VaR95/CVaR95 are absolute losses in portfolio currency;
// MaxDrawdown is signed (negative means a loss).
type SimulationResult struct {
	ID       string `json:"id"`
	Scenario string `json:"scenario"`

	InitialValue float64 `json:"initial_value"`
	FinalValue   float64 `json:"final_value"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	VaR95        float64 `json:"var_95"`
	CVaR95       float64 `json:"cvar_95"`

	LiquidatedPositions []string `json:"liquidated_positions"`
	SurvivingPositions  []string `json:"surviving_positions"`

	RiskMetrics     risk.Metrics                     `json:"risk_metrics"`
	Recommendations []diversification.Recommendation `json:"recommendations,omitempty"`

	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Return is the simple return over the run, or 0 for an empty portfolio.
func (r SimulationResult) Return() float64 {
	if r.InitialValue <= 0 {
		return 0
	}
	return (r.FinalValue - r.InitialValue) / r.InitialValue
}

// MonteCarloConfig drives RunMonteCarloSimulation. Zero values fall back to
// sensible defaults except Iterations, which must be at least 1.
type MonteCarloConfig struct {
	Iterations      int     `json:"iterations"`
	TimeHorizonDays int     `json:"time_horizon_days"` // when > 0, PriceVolatility is annualized and scaled to this horizon
	ConfidenceLevel float64 `json:"confidence_level"`  // defaults to 0.95
	PriceVolatility float64 `json:"price_volatility"`  // draw sigma (annualized when a horizon is set), must be >= 0

	// DriftRates shifts each asset's expected return over the horizon.
	// Assets without an entry drift at zero.
	DriftRates map[string]float64 `json:"drift_rates,omitempty"`

	// CorrelationMatrix is carried into the reported risk metrics. A matrix
	// whose universe does not match the simulated assets is ignored.
	CorrelationMatrix *domain.CorrelationMatrix `json:"correlation_matrix,omitempty"`

	// Seed fixes the per-worker random sources; 0 seeds from the wall
	// clock. Runs are fully reproducible when the pool has one worker.
	Seed uint64 `json:"seed,omitempty"`
}

func (c MonteCarloConfig) confidence() float64 {
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return 0.95
	}
	return c.ConfidenceLevel
}

// sigma is the standard deviation for each price draw. With a horizon set,
// PriceVolatility is treated as annualized and scaled by sqrt(days/252);
// without one it is the per-draw sigma directly.
func (c MonteCarloConfig) sigma() float64 {
	if c.TimeHorizonDays > 0 {
		return c.PriceVolatility * math.Sqrt(float64(c.TimeHorizonDays)/formulas.TradingDaysPerYear)
	}
	return c.PriceVolatility
}
