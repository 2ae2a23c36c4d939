package diversification

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/akentari/vigil/internal/domain"
)

// Rule priorities, higher = more urgent. The rules are fixed; only the
// max-concentration threshold is configurable.
const (
	priorityMaxConcentrationBreach = 9
	priorityAssetClassBreach       = 8
	priorityLowDiversification     = 7
	priorityHighCorrelation        = 6
	priorityFewEffectiveAssets     = 5

	assetClassBreachThreshold   = 0.50
	lowDiversificationThreshold = 0.5
	highCorrelationThreshold    = 0.4
	minEffectiveAssets          = 5.0
)

// GenerateRecommendations synthesizes ranked guidance for a registered
// portfolio from its diversification metrics. An empty result is valid and
// means the portfolio is well diversified.
func (s *Service) GenerateRecommendations(portfolioID string) ([]Recommendation, error) {
	positions, err := s.registry.Get(portfolioID)
	if err != nil {
		return nil, err
	}

	metrics, err := s.MetricsForPositions(positions, portfolioID)
	if err != nil {
		return nil, err
	}

	recs := s.recommendationsFromMetrics(metrics, positions)

	s.log.Debug().
		Str("portfolio_id", portfolioID).
		Int("recommendations", len(recs)).
		Msg("Generated diversification recommendations")

	return recs, nil
}

// RecommendationsForPositions synthesizes guidance directly from a snapshot;
// used by the stress-test composition path where no portfolio id exists.
func (s *Service) RecommendationsForPositions(positions []domain.Position) []Recommendation {
	metrics, err := s.MetricsForPositions(positions, "snapshot")
	if err != nil {
		return nil
	}
	return s.recommendationsFromMetrics(metrics, positions)
}

func (s *Service) recommendationsFromMetrics(metrics Metrics, positions []domain.Position) []Recommendation {
	now := time.Now().UTC()
	recs := make([]Recommendation, 0, 5)

	if metrics.MaxWeight > s.maxConcentration {
		recs = append(recs, Recommendation{
			ID:       uuid.New().String(),
			Priority: priorityMaxConcentrationBreach,
			Action:   "Reduce largest position",
			Reason: fmt.Sprintf("Largest position holds %.1f%% of portfolio value, above the %.1f%% concentration limit",
				metrics.MaxWeight*100, s.maxConcentration*100),
			Assets:    largestPositions(positions, s.maxConcentration),
			CreatedAt: now,
		})
	}

	for class, share := range metrics.AssetClassConcentration {
		if share > assetClassBreachThreshold {
			recs = append(recs, Recommendation{
				ID:       uuid.New().String(),
				Priority: priorityAssetClassBreach,
				Action:   fmt.Sprintf("Rebalance out of %s", class),
				Reason: fmt.Sprintf("Asset class %s holds %.1f%% of portfolio value, above the 50%% sector limit",
					class, share*100),
				CreatedAt: now,
			})
		}
	}

	if metrics.DiversificationScore < lowDiversificationThreshold {
		recs = append(recs, Recommendation{
			ID:       uuid.New().String(),
			Priority: priorityLowDiversification,
			Action:   "Spread value across more assets",
			Reason: fmt.Sprintf("Diversification score %.2f is below 0.50; weights are heavily skewed",
				metrics.DiversificationScore),
			CreatedAt: now,
		})
	}

	if metrics.CorrelationAdjustedScore < highCorrelationThreshold {
		recs = append(recs, Recommendation{
			ID:       uuid.New().String(),
			Priority: priorityHighCorrelation,
			Action:   "Add uncorrelated assets",
			Reason: fmt.Sprintf("Correlation-adjusted diversification %.2f is below 0.40; positions move together",
				metrics.CorrelationAdjustedScore),
			CreatedAt: now,
		})
	}

	if metrics.EffectiveAssets < minEffectiveAssets {
		recs = append(recs, Recommendation{
			ID:       uuid.New().String(),
			Priority: priorityFewEffectiveAssets,
			Action:   "Increase effective asset count",
			Reason: fmt.Sprintf("Effective number of assets is %.1f, below the minimum of 5",
				metrics.EffectiveAssets),
			CreatedAt: now,
		})
	}

	// Stable order: priority descending, ties broken by action name.
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority > recs[j].Priority
		}
		return recs[i].Action < recs[j].Action
	})

	return recs
}

// largestPositions names the assets whose weight exceeds the threshold.
func largestPositions(positions []domain.Position, threshold float64) []string {
	weights := domain.ValueWeights(positions)
	var assets []string
	for asset, w := range weights {
		if w > threshold {
			assets = append(assets, asset)
		}
	}
	sort.Strings(assets)
	return assets
}
