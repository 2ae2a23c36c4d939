package history

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/akentari/vigil/internal/domain"
	"github.com/akentari/vigil/pkg/formulas"
)

// volatilityWindow is the rolling window (in observations) for the talib
// standard deviation used by EstimateVolatility.
const volatilityWindow = 30

// Archive is the in-memory historical price archive shared across concurrent
// stress-test invocations. A single reader-writer lock guards the series map;
// the lock is only held across map access, never across a computation.
//
// When a Repository is attached, writes flow through to sqlite and the
// archive can be rehydrated at startup with Load.
type Archive struct {
	mu     sync.RWMutex
	series map[string][]domain.PricePoint

	repo *Repository // optional write-through store
	log  zerolog.Logger
}

// NewArchive creates an empty archive. repo may be nil for a purely
// in-memory archive (tests, embedded use).
func NewArchive(repo *Repository, log zerolog.Logger) *Archive {
	return &Archive{
		series: make(map[string][]domain.PricePoint),
		repo:   repo,
		log:    log.With().Str("component", "price_archive").Logger(),
	}
}

// Load rehydrates the in-memory series from the repository.
func (a *Archive) Load() error {
	if a.repo == nil {
		return nil
	}

	series, err := a.repo.LoadAll()
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.series = series
	a.mu.Unlock()

	a.log.Info().Int("assets", len(series)).Msg("Loaded price archive")
	return nil
}

// Put stores a price series for an asset, replacing any existing series. The
// points are sorted oldest-first before storage. Persistence failures are
// logged but do not fail the in-memory update; the archive is never a
// correctness dependency of its writers.
func (a *Archive) Put(asset string, points []domain.PricePoint) {
	sorted := make([]domain.PricePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	a.mu.Lock()
	a.series[asset] = sorted
	a.mu.Unlock()

	if a.repo != nil {
		if err := a.repo.Save(asset, sorted); err != nil {
			a.log.Warn().Err(err).Str("asset", asset).Msg("Failed to persist price series")
		}
	}
}

// GetPriceHistory returns a copy of the ordered price series for an asset.
// An unknown asset yields an empty series, not an error.
func (a *Archive) GetPriceHistory(asset string) ([]domain.PricePoint, error) {
	a.mu.RLock()
	points := a.series[asset]
	a.mu.RUnlock()

	out := make([]domain.PricePoint, len(points))
	copy(out, points)
	return out, nil
}

// GetPriceOnOrAfter returns the first available price at or after the given
// time. The boolean is false when the asset has no observation at or after
// that time; callers fall back to the last known price.
func (a *Archive) GetPriceOnOrAfter(asset string, t time.Time) (float64, bool) {
	a.mu.RLock()
	points := a.series[asset]
	a.mu.RUnlock()

	idx := sort.Search(len(points), func(i int) bool {
		return !points[i].Timestamp.Before(t)
	})
	if idx >= len(points) {
		return 0, false
	}
	return points[idx].Price, true
}

// Assets returns the sorted list of assets with archived series.
func (a *Archive) Assets() []string {
	a.mu.RLock()
	assets := make([]string, 0, len(a.series))
	for asset := range a.series {
		assets = append(assets, asset)
	}
	a.mu.RUnlock()

	sort.Strings(assets)
	return assets
}

// DailyReturns returns the daily return series for an asset, oldest first.
func (a *Archive) DailyReturns(asset string) []float64 {
	a.mu.RLock()
	points := a.series[asset]
	a.mu.RUnlock()

	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}
	return formulas.CalculateReturns(prices)
}

// EstimateVolatility estimates an asset's annualized volatility from the
// tail of its archived series using a rolling standard deviation of daily
// returns. Returns 0 when the series is too short to estimate.
func (a *Archive) EstimateVolatility(asset string) float64 {
	returns := a.DailyReturns(asset)
	if len(returns) < 2 {
		return 0
	}

	window := volatilityWindow
	if window > len(returns) {
		window = len(returns)
	}

	rolling := talib.StdDev(returns, window, 1.0)
	daily := rolling[len(rolling)-1]
	if math.IsNaN(daily) {
		return 0
	}
	return daily * math.Sqrt(formulas.TradingDaysPerYear)
}

// CompositeReturns builds an equal-weight composite daily return series
// across every archived asset, used as the market benchmark for beta and
// tracking-error calculations. Series are aligned from their most recent
// observation backwards and truncated to the shortest series.
func (a *Archive) CompositeReturns() []float64 {
	a.mu.RLock()
	perAsset := make([][]float64, 0, len(a.series))
	for _, points := range a.series {
		prices := make([]float64, len(points))
		for i, p := range points {
			prices[i] = p.Price
		}
		if r := formulas.CalculateReturns(prices); len(r) > 0 {
			perAsset = append(perAsset, r)
		}
	}
	a.mu.RUnlock()

	if len(perAsset) == 0 {
		return nil
	}

	minLen := len(perAsset[0])
	for _, r := range perAsset[1:] {
		if len(r) < minLen {
			minLen = len(r)
		}
	}
	if minLen == 0 {
		return nil
	}

	composite := make([]float64, minLen)
	for _, r := range perAsset {
		offset := len(r) - minLen
		for i := 0; i < minLen; i++ {
			composite[i] += r[offset+i]
		}
	}
	for i := range composite {
		composite[i] /= float64(len(perAsset))
	}
	return composite
}
