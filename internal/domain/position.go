// Package domain holds the pure core types shared across the risk engine
// modules. Nothing in this package depends on infrastructure.
package domain

import (
	"math"
	"time"
)

// Position is a single collateral/debt position in a portfolio snapshot.
// Positions are owned by the caller and read-only to the engine; every
// transformation (shocks, sampled paths) works on copies.
type Position struct {
	Asset                string  `json:"asset"`
	AssetClass           string  `json:"asset_class"` // e.g. "L1", "DeFi", "Stablecoin"
	Quantity             float64 `json:"quantity"`
	EntryPrice           float64 `json:"entry_price"`
	CurrentPrice         float64 `json:"current_price"`
	CollateralValue      float64 `json:"collateral_value"`
	DebtValue            float64 `json:"debt_value"`
	LiquidationThreshold float64 `json:"liquidation_threshold"`
	HealthFactor         float64 `json:"health_factor"`
}

// ComputeHealthFactor derives the health factor: collateral value divided by
// debt value. Zero-debt positions have no defined health factor and are
// treated as never liquidatable (+Inf).
func ComputeHealthFactor(collateralValue, debtValue float64) float64 {
	if debtValue <= 0 {
		return math.Inf(1)
	}
	return collateralValue / debtValue
}

// Reprice returns a copy of the position with a new current price, the
// collateral value recomputed as quantity × price and the health factor
// rederived from the new collateral value.
func (p Position) Reprice(newPrice float64) Position {
	out := p
	out.CurrentPrice = newPrice
	out.CollateralValue = p.Quantity * newPrice
	out.HealthFactor = ComputeHealthFactor(out.CollateralValue, out.DebtValue)
	return out
}

// IsLiquidated reports whether the position's health factor has fallen below
// its liquidation threshold. The comparison is strict: a position exactly at
// threshold survives.
func (p Position) IsLiquidated() bool {
	return p.HealthFactor < p.LiquidationThreshold
}

// TotalValue sums the collateral value across positions.
func TotalValue(positions []Position) float64 {
	total := 0.0
	for _, p := range positions {
		total += p.CollateralValue
	}
	return total
}

// ValueWeights calculates each position's share of total collateral value,
// keyed by asset. Returns nil when the total is not positive.
func ValueWeights(positions []Position) map[string]float64 {
	total := TotalValue(positions)
	if total <= 0 {
		return nil
	}

	weights := make(map[string]float64, len(positions))
	for _, p := range positions {
		weights[p.Asset] += p.CollateralValue / total
	}
	return weights
}

// PricePoint is one observation in an asset's historical price series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
}

// Alert is a position-health notification produced by the out-of-scope
// monitoring component and consumed here only as an input signal.
type Alert struct {
	PositionID string    `json:"position_id"`
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
