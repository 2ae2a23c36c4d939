package stress

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/akentari/vigil/internal/domain"
	"github.com/akentari/vigil/internal/modules/diversification"
	"github.com/akentari/vigil/internal/modules/history"
	"github.com/akentari/vigil/internal/modules/portfolio"
	"github.com/akentari/vigil/internal/modules/risk"
	"github.com/akentari/vigil/internal/modules/scenarios"
	"github.com/akentari/vigil/pkg/formulas"
)

// DefaultWorkers is the Monte Carlo worker pool size when the configured
// value is not positive.
const DefaultWorkers = 4

// Service orchestrates stress tests, Monte Carlo simulations and backtests.
// Results for deterministic scenario tests are cached by portfolio
// fingerprint with a TTL.
type Service struct {
	registry        *portfolio.Registry
	archive         *history.Archive
	risk            *risk.Service
	diversification *diversification.Service
	cache           *Cache
	journal         *Journal // optional
	workers         int

	mu      sync.RWMutex
	catalog map[string]scenarios.Scenario
	health  domain.PositionHealthProvider // optional live monitor

	log zerolog.Logger
}

// NewService creates the stress-test engine preloaded with the built-in
// scenario catalog. journal may be nil.
func NewService(
	registry *portfolio.Registry,
	archive *history.Archive,
	riskSvc *risk.Service,
	divSvc *diversification.Service,
	cache *Cache,
	journal *Journal,
	workers int,
	log zerolog.Logger,
) *Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	catalog := make(map[string]scenarios.Scenario)
	for _, sc := range scenarios.BuiltinScenarios() {
		catalog[sc.Name] = sc
	}

	return &Service{
		registry:        registry,
		archive:         archive,
		risk:            riskSvc,
		diversification: divSvc,
		cache:           cache,
		journal:         journal,
		workers:         workers,
		catalog:         catalog,
		log:             log.With().Str("component", "stress_engine").Logger(),
	}
}

// SetHealthProvider attaches the live position monitor. When present, stress
// tests start from monitored health factors instead of snapshot-derived ones.
func (s *Service) SetHealthProvider(p domain.PositionHealthProvider) {
	s.mu.Lock()
	s.health = p
	s.mu.Unlock()
}

// Alerts returns outstanding monitor alerts, or nil when no monitor is
// attached.
func (s *Service) Alerts(positionID string) ([]domain.Alert, error) {
	s.mu.RLock()
	health := s.health
	s.mu.RUnlock()

	if health == nil {
		return nil, nil
	}
	return health.GetAlerts(positionID)
}

// refreshHealth overlays monitored health factors onto a snapshot. Positions
// the monitor does not know keep their derived values.
func (s *Service) refreshHealth(positions []domain.Position) []domain.Position {
	s.mu.RLock()
	health := s.health
	s.mu.RUnlock()

	if health == nil {
		return positions
	}

	out := make([]domain.Position, len(positions))
	copy(out, positions)
	for i, pos := range out {
		hf, err := health.GetPositionHealth(pos.Asset)
		if err != nil {
			continue
		}
		out[i].HealthFactor = hf
	}
	return out
}

// RegisterScenario adds or replaces a custom scenario in the catalog.
func (s *Service) RegisterScenario(sc scenarios.Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("%w: scenario name is required", domain.ErrInvalidConfiguration)
	}

	s.mu.Lock()
	s.catalog[sc.Name] = sc
	s.mu.Unlock()
	return nil
}

// Scenario returns a catalog entry by name.
func (s *Service) Scenario(name string) (scenarios.Scenario, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.catalog[name]
	return sc, ok
}

// ListScenarios returns the catalog sorted by name.
func (s *Service) ListScenarios() []scenarios.Scenario {
	s.mu.RLock()
	out := make([]scenarios.Scenario, 0, len(s.catalog))
	for _, sc := range s.catalog {
		out = append(out, sc)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RunStressTest applies a named catalog scenario to a portfolio snapshot.
// The cache is consulted first: an unexpired result for the same scenario
// and composition is returned as-is without recomputation.
func (s *Service) RunStressTest(ctx context.Context, positions []domain.Position, scenarioName string) (SimulationResult, error) {
	sc, ok := s.Scenario(scenarioName)
	if !ok {
		return SimulationResult{}, fmt.Errorf("%w: unknown scenario %q", domain.ErrInvalidConfiguration, scenarioName)
	}
	return s.RunScenario(ctx, positions, sc)
}

// RunScenario applies a scenario definition directly, bypassing the catalog.
func (s *Service) RunScenario(ctx context.Context, positions []domain.Position, sc scenarios.Scenario) (SimulationResult, error) {
	if err := ctx.Err(); err != nil {
		return SimulationResult{}, err
	}
	initialValue := domain.TotalValue(positions)
	if initialValue <= 0 {
		return SimulationResult{}, domain.ErrEmptyPortfolio
	}

	key := CacheKey(sc.Name, positions)
	if cached, ok := s.cache.Get(key); ok {
		s.log.Debug().Str("scenario", sc.Name).Msg("Served stress test from cache")
		return cached, nil
	}

	started := time.Now()
	shock := scenarios.Apply(s.refreshHealth(positions), sc)
	finalValue := domain.TotalValue(shock.Positions)

	// The scenario is a single step, so the drawdown is simply the loss
	// between the pre- and post-shock valuations.
	trajectory := []float64{initialValue, finalValue}

	breakdowns, err := s.risk.VaRBreakdowns(positions)
	if err != nil {
		return SimulationResult{}, fmt.Errorf("%w: %v", domain.ErrCalculationError, err)
	}
	var var95, cvar95 float64
	for _, b := range breakdowns {
		if b.Confidence == 0.95 {
			var95, cvar95 = b.VaR, b.CVaR
		}
	}

	metrics := s.risk.MetricsForPositions(positions)
	if sc.VolatilityMultiplier > 1 {
		metrics.Volatility *= sc.VolatilityMultiplier
	}

	result := SimulationResult{
		ID:                  uuid.New().String(),
		Scenario:            sc.Name,
		InitialValue:        initialValue,
		FinalValue:          finalValue,
		MaxDrawdown:         formulas.MaxDrawdown(trajectory),
		VaR95:               var95,
		CVaR95:              cvar95,
		LiquidatedPositions: shock.Liquidated,
		SurvivingPositions:  shock.Surviving,
		RiskMetrics:         metrics,
		Recommendations:     s.diversification.RecommendationsForPositions(shock.Positions),
		Duration:            time.Since(started),
		CreatedAt:           started.UTC(),
	}

	s.cache.Put(key, result)
	s.journalResult(result)

	s.log.Info().
		Str("scenario", sc.Name).
		Float64("initial_value", initialValue).
		Float64("final_value", finalValue).
		Int("liquidated", len(shock.Liquidated)).
		Msg("Stress test complete")

	return result, nil
}

// RunStressTestForPortfolio runs a catalog scenario against a registered
// portfolio.
func (s *Service) RunStressTestForPortfolio(ctx context.Context, portfolioID, scenarioName string) (SimulationResult, error) {
	positions, err := s.registry.Get(portfolioID)
	if err != nil {
		return SimulationResult{}, err
	}
	return s.RunStressTest(ctx, positions, scenarioName)
}

// RunMonteCarloForPortfolio simulates a registered portfolio.
func (s *Service) RunMonteCarloForPortfolio(ctx context.Context, portfolioID string, config MonteCarloConfig) ([]SimulationResult, error) {
	positions, err := s.registry.Get(portfolioID)
	if err != nil {
		return nil, err
	}
	return s.RunMonteCarloSimulation(ctx, positions, config)
}

// RunBacktestForPortfolio replays a registered portfolio through history.
func (s *Service) RunBacktestForPortfolio(ctx context.Context, portfolioID string, start, end time.Time) (SimulationResult, error) {
	positions, err := s.registry.Get(portfolioID)
	if err != nil {
		return SimulationResult{}, err
	}
	return s.RunBacktest(ctx, positions, start, end)
}

// ClearCache drops all cached stress-test results.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

// CacheStats reports result-cache occupancy.
func (s *Service) CacheStats() map[string]int {
	return s.cache.Stats()
}

// RecentResults reads back journaled results, newest first.
func (s *Service) RecentResults(limit int) ([]SimulationResult, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.Recent(limit)
}

func (s *Service) journalResult(result SimulationResult) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(result); err != nil {
		s.log.Warn().Err(err).Str("id", result.ID).Msg("Failed to journal simulation result")
	}
}
