package risk

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/akentari/vigil/internal/domain"
	"github.com/akentari/vigil/internal/modules/history"
	"github.com/akentari/vigil/internal/modules/portfolio"
	"github.com/akentari/vigil/pkg/formulas"
)

// Confidence levels reported by default in VaR breakdowns.
var defaultConfidenceLevels = []float64{0.90, 0.95, 0.99, 0.995}

// Service computes risk metrics for registered portfolios. Return series come
// from the price archive; the correlation matrix is optional and a missing or
// invalid one falls back to the uncorrelated (conservative) estimate.
type Service struct {
	registry *portfolio.Registry
	archive  *history.Archive

	riskFreeRate float64

	mu   sync.RWMutex
	corr *domain.CorrelationMatrix
	log  zerolog.Logger
}

// NewService creates a risk metrics service. riskFreeRate is annual (e.g.
// 0.02 for 2%).
func NewService(registry *portfolio.Registry, archive *history.Archive, riskFreeRate float64, log zerolog.Logger) *Service {
	return &Service{
		registry:     registry,
		archive:      archive,
		riskFreeRate: riskFreeRate,
		log:          log.With().Str("component", "risk_metrics").Logger(),
	}
}

// SetCorrelationMatrix swaps in a new correlation matrix estimate. An invalid
// matrix is rejected so downstream volatility math never sees a malformed one.
func (s *Service) SetCorrelationMatrix(m *domain.CorrelationMatrix) error {
	if m != nil && !m.Valid() {
		return fmt.Errorf("%w: correlation matrix is not symmetric with unit diagonal", domain.ErrInvalidConfiguration)
	}

	s.mu.Lock()
	s.corr = m
	s.mu.Unlock()
	return nil
}

// CorrelationMatrix returns the current matrix, which may be nil.
func (s *Service) CorrelationMatrix() *domain.CorrelationMatrix {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corr
}

// CalculateRiskMetrics computes the full metric set for a registered
// portfolio from its archived return history.
func (s *Service) CalculateRiskMetrics(portfolioID string) (Metrics, error) {
	positions, err := s.registry.Get(portfolioID)
	if err != nil {
		return Metrics{}, err
	}
	if domain.TotalValue(positions) <= 0 {
		return Metrics{}, fmt.Errorf("%w: %s", domain.ErrEmptyPortfolio, portfolioID)
	}

	metrics := s.MetricsForPositions(positions)

	s.log.Debug().
		Str("portfolio_id", portfolioID).
		Float64("volatility", metrics.Volatility).
		Float64("sharpe", metrics.SharpeRatio).
		Msg("Calculated risk metrics")

	return metrics, nil
}

// MetricsForPositions computes the metric set directly from a snapshot.
// The archived history supplies the return series; volatility uses the
// covariance form when a correlation matrix is set.
func (s *Service) MetricsForPositions(positions []domain.Position) Metrics {
	returns := s.PortfolioReturns(positions)
	benchmark := s.archive.CompositeReturns()

	metrics := s.MetricsFromReturns(returns, benchmark)
	metrics.Volatility = s.PortfolioVolatility(positions)
	metrics.CorrelationMatrix = s.CorrelationMatrix()
	return metrics
}

// MetricsFromReturns derives ratio and drawdown metrics from a daily return
// series, with beta/tracking error/information ratio measured against the
// benchmark series when one is available.
func (s *Service) MetricsFromReturns(returns, benchmark []float64) Metrics {
	values := cumulativeValues(returns)
	dd := formulas.CalculateDrawdownMetrics(values)

	metrics := Metrics{
		SharpeRatio:             formulas.SharpeRatio(returns, s.riskFreeRate),
		SortinoRatio:            formulas.SortinoRatio(returns, s.riskFreeRate),
		CalmarRatio:             formulas.CalmarRatio(returns, dd.MaxDrawdown),
		MaxDrawdown:             dd.MaxDrawdown,
		MaxDrawdownDurationDays: dd.DurationDays,
		RecoveryDays:            dd.RecoveryDays,
		Volatility:              formulas.AnnualizedVolatility(returns),
	}

	if len(benchmark) >= 2 && len(returns) >= 2 {
		aligned := alignTail(returns, benchmark)
		metrics.Beta = formulas.Beta(aligned.a, aligned.b)
		metrics.TrackingError = formulas.TrackingError(aligned.a, aligned.b)
		metrics.InformationRatio = formulas.InformationRatio(aligned.a, aligned.b)
	}

	return metrics
}

// PortfolioReturns builds the value-weighted daily return series for a
// snapshot from the archive. Assets without history contribute nothing;
// series are aligned from their most recent observation backwards.
func (s *Service) PortfolioReturns(positions []domain.Position) []float64 {
	weights := domain.ValueWeights(positions)
	if weights == nil {
		return nil
	}

	type weighted struct {
		returns []float64
		weight  float64
	}
	var series []weighted
	minLen := 0
	for _, pos := range positions {
		r := s.archive.DailyReturns(pos.Asset)
		if len(r) == 0 {
			continue
		}
		series = append(series, weighted{returns: r, weight: weights[pos.Asset]})
		if minLen == 0 || len(r) < minLen {
			minLen = len(r)
		}
	}
	if minLen == 0 {
		return nil
	}

	combined := make([]float64, minLen)
	for _, ws := range series {
		offset := len(ws.returns) - minLen
		for i := 0; i < minLen; i++ {
			combined[i] += ws.weight * ws.returns[offset+i]
		}
	}
	return combined
}

// PortfolioVolatility computes annualized portfolio volatility.
//
// With a correlation matrix: σ_p² = Σᵢ Σⱼ wᵢ wⱼ ρᵢⱼ σᵢ σⱼ, evaluated as the
// quadratic form xᵀRx with xᵢ = wᵢσᵢ. Without one, the value-weighted average
// of individual volatilities, a conservative overestimate that ignores
// diversification.
func (s *Service) PortfolioVolatility(positions []domain.Position) float64 {
	weights := domain.ValueWeights(positions)
	if weights == nil {
		return 0
	}

	vols := make(map[string]float64, len(positions))
	for _, pos := range positions {
		vols[pos.Asset] = s.archive.EstimateVolatility(pos.Asset)
	}

	corr := s.CorrelationMatrix()
	if corr == nil || !corr.Valid() {
		weighted := 0.0
		for asset, w := range weights {
			weighted += w * vols[asset]
		}
		return weighted
	}

	assets := make([]string, 0, len(weights))
	for asset := range weights {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	n := len(assets)
	x := mat.NewVecDense(n, nil)
	rho := mat.NewSymDense(n, nil)
	for i, ai := range assets {
		x.SetVec(i, weights[ai]*vols[ai])
		rho.SetSym(i, i, 1.0)
		for j := i + 1; j < n; j++ {
			// Pairs outside the matrix universe are treated as uncorrelated.
			if c, ok := corr.Lookup(ai, assets[j]); ok {
				rho.SetSym(i, j, c)
			}
		}
	}

	variance := mat.Inner(x, rho, x)
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// VaRBreakdowns computes parametric VaR/CVaR losses at the default
// confidence levels from portfolio volatility and value.
func (s *Service) VaRBreakdowns(positions []domain.Position) ([]VaRBreakdown, error) {
	value := domain.TotalValue(positions)
	if value <= 0 {
		return nil, domain.ErrEmptyPortfolio
	}

	vol := s.PortfolioVolatility(positions)
	out := make([]VaRBreakdown, 0, len(defaultConfidenceLevels))
	for _, c := range defaultConfidenceLevels {
		out = append(out, VaRBreakdown{
			Confidence: c,
			VaR:        formulas.ParametricVaR(vol, value, c),
			CVaR:       formulas.ParametricCVaR(vol, value, c),
		})
	}
	return out, nil
}

// ComponentVaR decomposes portfolio VaR at a confidence level into per-asset
// contributions. Marginal VaR for every asset is the portfolio-level
// z·σ_p·V; component VaR scales it by the asset's weight, so contributions
// sum to the total and percentages to 100.
func (s *Service) ComponentVaR(positions []domain.Position, confidence float64) ([]ComponentRisk, error) {
	value := domain.TotalValue(positions)
	if value <= 0 {
		return nil, domain.ErrEmptyPortfolio
	}

	weights := domain.ValueWeights(positions)
	vol := s.PortfolioVolatility(positions)
	totalVaR := formulas.ParametricVaR(vol, value, confidence)
	marginal := totalVaR

	assets := make([]string, 0, len(weights))
	for asset := range weights {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	out := make([]ComponentRisk, 0, len(assets))
	for _, asset := range assets {
		w := weights[asset]
		component := w * marginal
		contribution := 0.0
		if totalVaR > 0 {
			contribution = component / totalVaR * 100.0
		}
		out = append(out, ComponentRisk{
			Asset:           asset,
			Weight:          w,
			MarginalVaR:     marginal,
			ComponentVaR:    component,
			ContributionPct: contribution,
		})
	}
	return out, nil
}

// cumulativeValues converts a return series to a value trajectory starting
// at 1.0 so drawdown math can run on it.
func cumulativeValues(returns []float64) []float64 {
	values := make([]float64, len(returns)+1)
	values[0] = 1.0
	for i, r := range returns {
		values[i+1] = values[i] * (1 + r)
	}
	return values
}

type alignedPair struct {
	a, b []float64
}

// alignTail truncates both series to the length of the shorter, keeping the
// most recent observations.
func alignTail(a, b []float64) alignedPair {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return alignedPair{
		a: a[len(a)-n:],
		b: b[len(b)-n:],
	}
}
