package stress

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akentari/vigil/internal/database"
	"github.com/akentari/vigil/internal/modules/diversification"
	"github.com/akentari/vigil/internal/modules/risk"
)

func newJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := database.Open("file::memory:?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	journal, err := NewJournal(db, zerolog.Nop())
	require.NoError(t, err)
	return journal
}

func journalResult(id string, createdAt time.Time) SimulationResult {
	return SimulationResult{
		ID:                  id,
		Scenario:            "MarketCrash",
		InitialValue:        130000,
		FinalValue:          80000,
		MaxDrawdown:         -0.3846,
		VaR95:               41000,
		CVaR95:              52000,
		LiquidatedPositions: []string{"BTC"},
		SurvivingPositions:  []string{"USDC"},
		RiskMetrics: risk.Metrics{
			Volatility:  0.42,
			SharpeRatio: 1.1,
			MaxDrawdown: -0.3846,
		},
		Recommendations: []diversification.Recommendation{
			{ID: id + "-rec", Priority: 9, Action: "Reduce BTC exposure", Reason: "BTC is 77% of portfolio value", Assets: []string{"BTC"}},
		},
		Duration:  37 * time.Millisecond,
		CreatedAt: createdAt,
	}
}

func TestJournalAppendAndRecent(t *testing.T) {
	journal := newJournal(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	older := journalResult("result-a", base)
	newer := journalResult("result-b", base.Add(time.Hour))
	require.NoError(t, journal.Append(older))
	require.NoError(t, journal.Append(newer))

	results, err := journal.Recent(10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "result-b", results[0].ID, "newest entry first")
	assert.Equal(t, "result-a", results[1].ID)

	got := results[1]
	assert.Equal(t, "MarketCrash", got.Scenario)
	assert.InDelta(t, 130000.0, got.InitialValue, 1e-9)
	assert.InDelta(t, -0.3846, got.MaxDrawdown, 1e-9)
	assert.Equal(t, []string{"BTC"}, got.LiquidatedPositions)
	assert.Equal(t, []string{"USDC"}, got.SurvivingPositions)
	assert.InDelta(t, 0.42, got.RiskMetrics.Volatility, 1e-9)
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, 9, got.Recommendations[0].Priority)
	assert.Equal(t, []string{"BTC"}, got.Recommendations[0].Assets)
	assert.Equal(t, 37*time.Millisecond, got.Duration)
	assert.True(t, got.CreatedAt.Equal(base))
}

func TestJournalAppendIsIdempotent(t *testing.T) {
	journal := newJournal(t)

	result := journalResult("dup", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, journal.Append(result))

	// Replaying the same result must not duplicate or overwrite it.
	replay := result
	replay.FinalValue = 999
	require.NoError(t, journal.Append(replay))

	results, err := journal.Recent(10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 80000.0, results[0].FinalValue, 1e-9, "the first write wins")
}

func TestJournalRecentDefaultLimit(t *testing.T) {
	journal := newJournal(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 60; i++ {
		result := journalResult(fmt.Sprintf("result-%03d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, journal.Append(result))
	}

	results, err := journal.Recent(0)
	require.NoError(t, err)
	assert.Len(t, results, 50, "a non-positive limit falls back to the default")
}
