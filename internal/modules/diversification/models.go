// Package diversification analyzes how concentrated a portfolio is and
// produces ranked remediation recommendations.
package diversification

import "time"

// Classification labels for the overall diversification score. Thresholds
// are fixed: >=0.8 Excellent, >=0.6 Good, >=0.3 Moderate, else Poor.
const (
	ClassExcellent = "Excellent"
	ClassGood      = "Good"
	ClassModerate  = "Moderate"
	ClassPoor      = "Poor"
)

// Metrics holds the diversification and concentration measures for a
// portfolio snapshot.
type Metrics struct {
	DiversificationScore     float64            `json:"diversification_score"` // normalized entropy, [0,1]
	EffectiveAssets          float64            `json:"effective_assets"`      // 1 / HHI
	ConcentrationRisk        float64            `json:"concentration_risk"`    // [0,1], 0 = equal weights
	HerfindahlIndex          float64            `json:"herfindahl_index"`
	GiniCoefficient          float64            `json:"gini_coefficient"`
	MaxWeight                float64            `json:"max_weight"`
	AssetClassConcentration  map[string]float64 `json:"asset_class_concentration"`
	CorrelationAdjustedScore float64            `json:"correlation_adjusted_score"`
	Classification           string             `json:"classification"`
}

// PositionWeight is one position's share of portfolio value.
type PositionWeight struct {
	Asset  string  `json:"asset"`
	Weight float64 `json:"weight"`
	Value  float64 `json:"value"`
}

// ConcentrationAnalysis is the detailed concentration view: the raw indices
// plus the positions ranked by weight.
type ConcentrationAnalysis struct {
	HerfindahlIndex         float64            `json:"herfindahl_index"`
	ConcentrationRisk       float64            `json:"concentration_risk"`
	GiniCoefficient         float64            `json:"gini_coefficient"`
	MaxWeight               float64            `json:"max_weight"`
	TopPositions            []PositionWeight   `json:"top_positions"` // sorted by descending weight
	AssetClassConcentration map[string]float64 `json:"asset_class_concentration"`
}

// Recommendation is one piece of actionable guidance. Priority runs 1-10,
// higher = more urgent; results are returned sorted by descending priority.
type Recommendation struct {
	ID        string    `json:"id"`
	Priority  int       `json:"priority"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason"`
	Assets    []string  `json:"assets,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
