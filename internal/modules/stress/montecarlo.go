package stress

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/akentari/vigil/internal/domain"
	"github.com/akentari/vigil/pkg/formulas"
)

type mcIteration struct {
	index  int
	result SimulationResult
	ret    float64
}

// RunMonteCarloSimulation simulates the portfolio under randomized price
// paths. Each iteration draws an independent shock per position from
// N(drift, price_volatility), reprices with a 1% price floor, and classifies
// liquidations. After all iterations complete, empirical VaR/CVaR of the
// simulated return distribution are written back into every result.
func (s *Service) RunMonteCarloSimulation(ctx context.Context, positions []domain.Position, config MonteCarloConfig) ([]SimulationResult, error) {
	if config.Iterations < 1 {
		return nil, fmt.Errorf("%w: iterations must be at least 1", domain.ErrInvalidConfiguration)
	}
	if config.PriceVolatility < 0 || math.IsNaN(config.PriceVolatility) {
		return nil, fmt.Errorf("%w: price volatility must be non-negative", domain.ErrInvalidConfiguration)
	}
	if config.TimeHorizonDays < 0 {
		return nil, fmt.Errorf("%w: time horizon must be non-negative", domain.ErrInvalidConfiguration)
	}
	initialValue := domain.TotalValue(positions)
	if initialValue <= 0 {
		return nil, domain.ErrEmptyPortfolio
	}

	corr := config.CorrelationMatrix
	if corr != nil && !coversAssets(corr, positions) {
		s.log.Warn().Msg("Correlation matrix does not cover simulated assets, ignoring it")
		corr = nil
	}

	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	sigma := config.sigma()
	started := time.Now()
	workers := s.workers
	if workers > config.Iterations {
		workers = config.Iterations
	}

	jobs := make(chan int)
	iterations := make(chan mcIteration, config.Iterations)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			// Each worker owns its random source so draws never interleave
			// between iterations.
			normal := distuv.Normal{
				Mu:    0,
				Sigma: sigma,
				Src:   rand.NewPCG(seed, uint64(workerID)),
			}
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				iterations <- s.simulateIteration(idx, positions, config, normal, started)
			}
		}(w)
	}

	feedErr := func() error {
		defer close(jobs)
		for i := 0; i < config.Iterations; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}()

	wg.Wait()
	close(iterations)
	if feedErr != nil {
		return nil, feedErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collected := make([]mcIteration, 0, config.Iterations)
	for it := range iterations {
		collected = append(collected, it)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })

	returns := make([]float64, len(collected))
	for i, it := range collected {
		returns[i] = it.ret
	}

	confidence := config.confidence()
	varLoss := formulas.VaRLoss(formulas.EmpiricalVaR(returns, confidence)) * initialValue
	cvarLoss := formulas.VaRLoss(formulas.EmpiricalCVaR(returns, confidence)) * initialValue

	metrics := s.risk.MetricsFromReturns(returns, nil)
	metrics.CorrelationMatrix = corr

	results := make([]SimulationResult, len(collected))
	for i, it := range collected {
		r := it.result
		r.VaR95 = varLoss
		r.CVaR95 = cvarLoss
		r.RiskMetrics = metrics
		r.Duration = time.Since(started)
		results[i] = r
	}

	s.log.Info().
		Int("iterations", config.Iterations).
		Int("workers", workers).
		Float64("var", varLoss).
		Dur("elapsed", time.Since(started)).
		Msg("Monte Carlo simulation complete")

	return results, nil
}

// simulateIteration prices one random path and classifies the outcome.
func (s *Service) simulateIteration(index int, positions []domain.Position, config MonteCarloConfig, normal distuv.Normal, started time.Time) mcIteration {
	initialValue := domain.TotalValue(positions)

	shocked := make([]domain.Position, len(positions))
	var liquidated, surviving []string
	for i, pos := range positions {
		draw := normal.Rand() + config.DriftRates[pos.Asset]
		// Prices cannot go negative; floor the multiplier at 1% of current.
		multiplier := math.Max(1+draw, 0.01)
		next := pos.Reprice(pos.CurrentPrice * multiplier)
		shocked[i] = next
		if next.IsLiquidated() {
			liquidated = append(liquidated, next.Asset)
		} else {
			surviving = append(surviving, next.Asset)
		}
	}
	finalValue := domain.TotalValue(shocked)

	ret := 0.0
	if initialValue > 0 {
		ret = (finalValue - initialValue) / initialValue
	}

	drawdown := 0.0
	if ret < 0 {
		drawdown = ret
	}

	return mcIteration{
		index: index,
		ret:   ret,
		result: SimulationResult{
			ID:                  uuid.New().String(),
			Scenario:            fmt.Sprintf("montecarlo/%d", index),
			InitialValue:        initialValue,
			FinalValue:          finalValue,
			MaxDrawdown:         drawdown,
			LiquidatedPositions: liquidated,
			SurvivingPositions:  surviving,
			CreatedAt:           started.UTC(),
		},
	}
}

// coversAssets reports whether every position's asset appears in the matrix
// universe.
func coversAssets(m *domain.CorrelationMatrix, positions []domain.Position) bool {
	if !m.Valid() {
		return false
	}
	universe := make(map[string]struct{}, len(m.Symbols))
	for _, sym := range m.Symbols {
		universe[sym] = struct{}{}
	}
	for _, pos := range positions {
		if _, ok := universe[pos.Asset]; !ok {
			return false
		}
	}
	return true
}
