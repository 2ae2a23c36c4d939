package stress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akentari/vigil/internal/domain"
)

func TestBacktestValidation(t *testing.T) {
	svc, _, _ := newEngine(t)
	ctx := context.Background()

	_, err := svc.RunBacktest(ctx, testPortfolio(), day(5), day(1))
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = svc.RunBacktest(ctx, nil, day(0), day(5))
	assert.ErrorIs(t, err, domain.ErrEmptyPortfolio)
}

func TestBacktestWalk(t *testing.T) {
	svc, _, archive := newEngine(t)

	// A crash-and-recover series: the trough breaches the BTC liquidation
	// threshold even though the final day does not.
	archive.Put("BTC", []domain.PricePoint{
		{Timestamp: day(0), Price: 50000},
		{Timestamp: day(1), Price: 45000},
		{Timestamp: day(2), Price: 27000}, // collateral 54k vs 50k debt: HF 1.08
		{Timestamp: day(3), Price: 40000},
		{Timestamp: day(4), Price: 48000},
	})

	result, err := svc.RunBacktest(context.Background(), testPortfolio(), day(0), day(4))
	require.NoError(t, err)

	assert.InDelta(t, 130000.0, result.InitialValue, 1e-6)
	// Final day: BTC 2 x 48000 + USDC series value.
	assert.InDelta(t, 96000.0+30000.0, result.FinalValue, 40.0)

	assert.Contains(t, result.LiquidatedPositions, "BTC",
		"a breach on any day of the walk counts, even if later days recover")
	assert.Contains(t, result.SurvivingPositions, "USDC")

	assert.Less(t, result.MaxDrawdown, 0.0)
	assert.Greater(t, result.MaxDrawdown, -1.0)
	assert.NotEmpty(t, result.ID)
	assert.Contains(t, result.Scenario, "backtest/")
}

func TestBacktestGapPullsNextObservation(t *testing.T) {
	svc, _, archive := newEngine(t)

	archive.Put("BTC", []domain.PricePoint{
		{Timestamp: day(0), Price: 50000},
		{Timestamp: day(4), Price: 45000}, // nothing on days 1-3
	})
	archive.Put("USDC", []domain.PricePoint{
		{Timestamp: day(0), Price: 1},
		{Timestamp: day(2), Price: 1},
	})

	result, err := svc.RunBacktest(context.Background(), testPortfolio(), day(0), day(2))
	require.NoError(t, err)

	// Days 1-2 take the next available BTC observation, day 4's 45000.
	assert.InDelta(t, 90000.0+30000.0, result.FinalValue, 1e-6)
}

func TestBacktestExhaustedSeriesKeepsLastPrice(t *testing.T) {
	svc, _, archive := newEngine(t)

	archive.Put("BTC", []domain.PricePoint{
		{Timestamp: day(0), Price: 50000},
	})
	archive.Put("USDC", []domain.PricePoint{
		{Timestamp: day(0), Price: 1},
	})

	result, err := svc.RunBacktest(context.Background(), testPortfolio(), day(0), day(2))
	require.NoError(t, err)

	// Past the final observation every position retains its last known price.
	assert.InDelta(t, 130000.0, result.FinalValue, 1e-6)
	assert.Equal(t, 0.0, result.MaxDrawdown)
}

func TestBacktestAssetWithoutHistory(t *testing.T) {
	svc, _, _ := newEngine(t)

	positions := []domain.Position{
		{Asset: "MYSTERY", Quantity: 1, CurrentPrice: 1000, CollateralValue: 1000, DebtValue: 0, LiquidationThreshold: 1.1, HealthFactor: domain.ComputeHealthFactor(1000, 0)},
	}

	result, err := svc.RunBacktest(context.Background(), positions, day(0), day(3))
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, result.FinalValue, 1e-9, "positions with no archived prices keep their value")
	assert.Equal(t, []string{"MYSTERY"}, result.SurvivingPositions)
}

func TestBacktestForPortfolio(t *testing.T) {
	svc, registry, _ := newEngine(t)
	ctx := context.Background()

	_, err := svc.RunBacktestForPortfolio(ctx, "missing", day(0), day(4))
	assert.ErrorIs(t, err, domain.ErrPortfolioNotFound)

	registry.Register("main", testPortfolio())
	result, err := svc.RunBacktestForPortfolio(ctx, "main", day(0), day(4))
	require.NoError(t, err)
	assert.Greater(t, result.InitialValue, 0.0)
}
