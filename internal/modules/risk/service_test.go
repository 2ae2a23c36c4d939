package risk

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akentari/vigil/internal/domain"
	"github.com/akentari/vigil/internal/modules/history"
	"github.com/akentari/vigil/internal/modules/portfolio"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// series builds a price series from a start price and daily returns.
func series(start float64, returns ...float64) []domain.PricePoint {
	points := []domain.PricePoint{{Timestamp: day(0), Price: start}}
	price := start
	for i, r := range returns {
		price *= 1 + r
		points = append(points, domain.PricePoint{Timestamp: day(i + 1), Price: price})
	}
	return points
}

func newFixture(t *testing.T) (*Service, *portfolio.Registry, *history.Archive) {
	t.Helper()
	registry := portfolio.NewRegistry(zerolog.Nop())
	archive := history.NewArchive(nil, zerolog.Nop())
	archive.Put("BTC", series(50000, 0.02, -0.04, 0.01, 0.03, -0.02, 0.01, -0.01, 0.02))
	archive.Put("ETH", series(3000, -0.01, 0.03, -0.02, 0.02, 0.01, -0.03, 0.02, 0.01))

	svc := NewService(registry, archive, 0.02, zerolog.Nop())
	return svc, registry, archive
}

func twoAssetPortfolio() []domain.Position {
	return []domain.Position{
		{Asset: "BTC", AssetClass: "L1", Quantity: 1, CurrentPrice: 50000, CollateralValue: 50000, DebtValue: 10000, LiquidationThreshold: 1.2, HealthFactor: 5},
		{Asset: "ETH", AssetClass: "L1", Quantity: 10, CurrentPrice: 3000, CollateralValue: 30000, DebtValue: 5000, LiquidationThreshold: 1.2, HealthFactor: 6},
	}
}

func TestCalculateRiskMetricsErrors(t *testing.T) {
	svc, registry, _ := newFixture(t)

	_, err := svc.CalculateRiskMetrics("missing")
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)

	registry.Register("empty", []domain.Position{{Asset: "BTC", CollateralValue: 0}})
	_, err = svc.CalculateRiskMetrics("empty")
	assert.ErrorIs(t, err, domain.ErrEmptyPortfolio)
}

func TestCalculateRiskMetrics(t *testing.T) {
	svc, registry, _ := newFixture(t)
	registry.Register("main", twoAssetPortfolio())

	metrics, err := svc.CalculateRiskMetrics("main")
	require.NoError(t, err)

	assert.Greater(t, metrics.Volatility, 0.0)
	assert.LessOrEqual(t, metrics.MaxDrawdown, 0.0, "max drawdown is reported signed")
	assert.NotZero(t, metrics.Beta, "a benchmark exists, so beta is measured")
}

func TestSetCorrelationMatrixRejectsInvalid(t *testing.T) {
	svc, _, _ := newFixture(t)

	err := svc.SetCorrelationMatrix(&domain.CorrelationMatrix{
		Symbols: []string{"BTC", "ETH"},
		Matrix:  [][]float64{{1, 0.9}, {0.2, 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.Nil(t, svc.CorrelationMatrix(), "a rejected matrix is never installed")
}

func TestPortfolioVolatilityCorrelationAware(t *testing.T) {
	svc, _, _ := newFixture(t)
	positions := twoAssetPortfolio()

	// Without a matrix: conservative value-weighted average.
	uncorrelatedFallback := svc.PortfolioVolatility(positions)
	assert.Greater(t, uncorrelatedFallback, 0.0)

	// Perfect correlation reproduces the weighted average.
	require.NoError(t, svc.SetCorrelationMatrix(&domain.CorrelationMatrix{
		Symbols: []string{"BTC", "ETH"},
		Matrix:  [][]float64{{1, 1}, {1, 1}},
	}))
	perfect := svc.PortfolioVolatility(positions)
	assert.InDelta(t, uncorrelatedFallback, perfect, 1e-9)

	// Zero cross-correlation diversifies: strictly below the weighted average.
	require.NoError(t, svc.SetCorrelationMatrix(&domain.CorrelationMatrix{
		Symbols: []string{"BTC", "ETH"},
		Matrix:  [][]float64{{1, 0}, {0, 1}},
	}))
	diversified := svc.PortfolioVolatility(positions)
	assert.Less(t, diversified, perfect, "independent assets reduce portfolio volatility")
	assert.Greater(t, diversified, 0.0)
}

func TestVaRBreakdowns(t *testing.T) {
	svc, _, _ := newFixture(t)
	positions := twoAssetPortfolio()

	breakdowns, err := svc.VaRBreakdowns(positions)
	require.NoError(t, err)
	require.Len(t, breakdowns, 4)

	for i, b := range breakdowns {
		assert.Greater(t, b.CVaR, b.VaR, "CVaR dominates VaR at %.3f", b.Confidence)
		if i > 0 {
			assert.Greater(t, b.VaR, breakdowns[i-1].VaR, "VaR grows with confidence")
		}
	}

	_, err = svc.VaRBreakdowns(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyPortfolio)
}

func TestComponentVaRSumsToTotal(t *testing.T) {
	svc, _, _ := newFixture(t)
	positions := twoAssetPortfolio()

	components, err := svc.ComponentVaR(positions, 0.95)
	require.NoError(t, err)
	require.Len(t, components, 2)

	var componentSum, contributionSum float64
	for _, c := range components {
		componentSum += c.ComponentVaR
		contributionSum += c.ContributionPct
	}

	breakdowns, err := svc.VaRBreakdowns(positions)
	require.NoError(t, err)
	var total float64
	for _, b := range breakdowns {
		if b.Confidence == 0.95 {
			total = b.VaR
		}
	}

	assert.InDelta(t, total, componentSum, 1e-6, "component VaRs sum to portfolio VaR")
	assert.InDelta(t, 100.0, contributionSum, 1e-6, "contributions sum to 100%")
}

func TestMetricsFromReturns(t *testing.T) {
	svc, _, _ := newFixture(t)

	returns := []float64{0.10, -0.455, 0.333} // trajectory 1.0 -> 1.1 -> 0.6 -> 0.8
	metrics := svc.MetricsFromReturns(returns, nil)

	assert.InDelta(t, -0.4545, metrics.MaxDrawdown, 0.001)
	assert.Equal(t, 1, metrics.MaxDrawdownDurationDays)
	assert.Nil(t, metrics.RecoveryDays, "the trajectory never regains its peak")
	assert.Zero(t, metrics.Beta, "no benchmark, no beta")
}
