package stress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akentari/vigil/internal/domain"
	"github.com/akentari/vigil/pkg/formulas"
)

// RunBacktest replays the portfolio through archived prices day by day from
// start to end inclusive. Each day a position takes the first archived price
// at or after that day; once the series is exhausted it keeps its last known
// price. A position counts as liquidated if its health factor dropped below
// threshold on any day of the walk.
func (s *Service) RunBacktest(ctx context.Context, positions []domain.Position, start, end time.Time) (SimulationResult, error) {
	if end.Before(start) {
		return SimulationResult{}, fmt.Errorf("%w: backtest end %s precedes start %s",
			domain.ErrInvalidConfiguration, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	initialValue := domain.TotalValue(positions)
	if initialValue <= 0 {
		return SimulationResult{}, domain.ErrEmptyPortfolio
	}

	started := time.Now()
	current := make([]domain.Position, len(positions))
	copy(current, positions)

	liquidatedSet := make(map[string]bool)
	trajectory := []float64{initialValue}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return SimulationResult{}, err
		}
		for i, pos := range current {
			price, ok := s.archive.GetPriceOnOrAfter(pos.Asset, day)
			if !ok {
				continue
			}
			next := pos.Reprice(price)
			current[i] = next
			if next.IsLiquidated() {
				liquidatedSet[next.Asset] = true
			}
		}
		trajectory = append(trajectory, domain.TotalValue(current))
	}

	var liquidated, surviving []string
	for _, pos := range current {
		if liquidatedSet[pos.Asset] {
			liquidated = append(liquidated, pos.Asset)
		} else {
			surviving = append(surviving, pos.Asset)
		}
	}

	returns := formulas.CalculateReturns(trajectory)
	confidence := 0.95
	varLoss := formulas.VaRLoss(formulas.EmpiricalVaR(returns, confidence)) * initialValue
	cvarLoss := formulas.VaRLoss(formulas.EmpiricalCVaR(returns, confidence)) * initialValue

	metrics := s.risk.MetricsFromReturns(returns, s.archive.CompositeReturns())
	metrics.CorrelationMatrix = s.risk.CorrelationMatrix()

	result := SimulationResult{
		ID:                  uuid.New().String(),
		Scenario:            fmt.Sprintf("backtest/%s/%s", start.Format("2006-01-02"), end.Format("2006-01-02")),
		InitialValue:        initialValue,
		FinalValue:          trajectory[len(trajectory)-1],
		MaxDrawdown:         formulas.MaxDrawdown(trajectory),
		VaR95:               varLoss,
		CVaR95:              cvarLoss,
		LiquidatedPositions: liquidated,
		SurvivingPositions:  surviving,
		RiskMetrics:         metrics,
		Recommendations:     s.diversification.RecommendationsForPositions(current),
		Duration:            time.Since(started),
		CreatedAt:           started.UTC(),
	}

	s.log.Info().
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Float64("final_value", result.FinalValue).
		Float64("max_drawdown", result.MaxDrawdown).
		Msg("Backtest complete")

	return result, nil
}
