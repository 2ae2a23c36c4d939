// Package risk computes portfolio-level risk metrics: volatility, VaR/CVaR,
// performance ratios and per-asset risk decomposition.
package risk

import (
	"github.com/akentari/vigil/internal/domain"
)

// Metrics is the full set of portfolio risk metrics. It is owned by the
// result that embeds it and never mutated after creation.
type Metrics struct {
	SharpeRatio             float64                   `json:"sharpe_ratio"`
	SortinoRatio            float64                   `json:"sortino_ratio"`
	CalmarRatio             float64                   `json:"calmar_ratio"`
	MaxDrawdown             float64                   `json:"max_drawdown"` // signed, negative = loss
	MaxDrawdownDurationDays int                       `json:"max_drawdown_duration_days"`
	RecoveryDays            *int                      `json:"recovery_days,omitempty"`
	Volatility              float64                   `json:"volatility"` // annualized
	Beta                    float64                   `json:"beta"`
	TrackingError           float64                   `json:"tracking_error"`
	InformationRatio        float64                   `json:"information_ratio"`
	CorrelationMatrix       *domain.CorrelationMatrix `json:"correlation_matrix,omitempty"`
}

// VaRBreakdown holds VaR and CVaR losses at a set of confidence levels,
// expressed as absolute amounts in portfolio currency.
type VaRBreakdown struct {
	Confidence float64 `json:"confidence"`
	VaR        float64 `json:"var"`
	CVaR       float64 `json:"cvar"`
}

// ComponentRisk decomposes portfolio VaR into per-asset contributions.
// Contributions across all assets sum to ~100%.
type ComponentRisk struct {
	Asset           string  `json:"asset"`
	Weight          float64 `json:"weight"`
	MarginalVaR     float64 `json:"marginal_var"`
	ComponentVaR    float64 `json:"component_var"`
	ContributionPct float64 `json:"contribution_pct"`
}
