package scenarios

import (
	"github.com/akentari/vigil/internal/domain"
)

// ShockResult is the outcome of replaying a scenario against a snapshot.
type ShockResult struct {
	Positions  []domain.Position `json:"positions"`
	Liquidated []string          `json:"liquidated"`
	Surviving  []string          `json:"surviving"`
}

// Apply replays a scenario's per-asset price shocks against a position
// snapshot and classifies each shocked position as liquidated or surviving.
//
// For each position whose asset has a configured price shock the current
// price is multiplied by (1 + shock), the collateral value recomputed as
// quantity × new price, and the health factor rederived. Assets without a
// shock mapping keep their prices; a partial scenario is the normal case,
// not a fault. The input slice is never modified.
func Apply(positions []domain.Position, scenario Scenario) ShockResult {
	result := ShockResult{
		Positions:  make([]domain.Position, 0, len(positions)),
		Liquidated: make([]string, 0),
		Surviving:  make([]string, 0),
	}

	for _, pos := range positions {
		shocked := pos
		if shock, ok := scenario.PriceShocks[pos.Asset]; ok {
			shocked = pos.Reprice(pos.CurrentPrice * (1.0 + shock))
		}

		// Strict inequality: a position exactly at threshold survives.
		if shocked.IsLiquidated() {
			result.Liquidated = append(result.Liquidated, shocked.Asset)
		} else {
			result.Surviving = append(result.Surviving, shocked.Asset)
		}
		result.Positions = append(result.Positions, shocked)
	}

	return result
}
