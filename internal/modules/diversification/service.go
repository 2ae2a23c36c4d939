package diversification

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/akentari/vigil/internal/domain"
	"github.com/akentari/vigil/internal/modules/portfolio"
	"github.com/akentari/vigil/pkg/formulas"
)

// neutralCorrelationScore is reported when no correlation matrix covers the
// portfolio: neither diversified nor concentrated by correlation.
const neutralCorrelationScore = 0.5

// CorrelationSource provides the current correlation matrix estimate, which
// may be nil. Satisfied by risk.Service.
type CorrelationSource interface {
	CorrelationMatrix() *domain.CorrelationMatrix
}

// Service computes diversification metrics and remediation recommendations
// for registered portfolios.
type Service struct {
	registry         *portfolio.Registry
	correlations     CorrelationSource
	maxConcentration float64 // configured single-position weight ceiling

	log zerolog.Logger
}

// NewService creates a diversification analyzer. correlations may be nil.
func NewService(registry *portfolio.Registry, correlations CorrelationSource, maxConcentration float64, log zerolog.Logger) *Service {
	if maxConcentration <= 0 || maxConcentration > 1 {
		maxConcentration = 0.25
	}
	return &Service{
		registry:         registry,
		correlations:     correlations,
		maxConcentration: maxConcentration,
		log:              log.With().Str("component", "diversification").Logger(),
	}
}

// CalculateMetrics computes the full diversification metric set for a
// registered portfolio.
func (s *Service) CalculateMetrics(portfolioID string) (Metrics, error) {
	positions, err := s.registry.Get(portfolioID)
	if err != nil {
		return Metrics{}, err
	}
	return s.MetricsForPositions(positions, portfolioID)
}

// MetricsForPositions computes metrics directly from a snapshot; used both
// by the portfolio-id surface and by the stress-test composition path.
func (s *Service) MetricsForPositions(positions []domain.Position, portfolioID string) (Metrics, error) {
	weights := domain.ValueWeights(positions)
	if weights == nil {
		return Metrics{}, fmt.Errorf("%w: %s", domain.ErrEmptyPortfolio, portfolioID)
	}

	ws := weightValues(weights)
	score := formulas.DiversificationScore(ws)

	metrics := Metrics{
		DiversificationScore:     score,
		EffectiveAssets:          formulas.EffectiveAssets(ws),
		ConcentrationRisk:        formulas.ConcentrationRisk(ws),
		HerfindahlIndex:          formulas.HerfindahlIndex(ws),
		GiniCoefficient:          formulas.GiniCoefficient(ws),
		MaxWeight:                formulas.MaxWeight(ws),
		AssetClassConcentration:  assetClassConcentration(positions),
		CorrelationAdjustedScore: s.correlationAdjustedScore(weights),
		Classification:           classify(score),
	}
	return metrics, nil
}

// AnalyzeConcentration returns the detailed concentration view for a
// registered portfolio, positions ranked by descending weight.
func (s *Service) AnalyzeConcentration(portfolioID string) (ConcentrationAnalysis, error) {
	positions, err := s.registry.Get(portfolioID)
	if err != nil {
		return ConcentrationAnalysis{}, err
	}

	weights := domain.ValueWeights(positions)
	if weights == nil {
		return ConcentrationAnalysis{}, fmt.Errorf("%w: %s", domain.ErrEmptyPortfolio, portfolioID)
	}

	total := domain.TotalValue(positions)
	ranked := make([]PositionWeight, 0, len(weights))
	for asset, w := range weights {
		ranked = append(ranked, PositionWeight{Asset: asset, Weight: w, Value: w * total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Asset < ranked[j].Asset
	})

	ws := weightValues(weights)
	return ConcentrationAnalysis{
		HerfindahlIndex:         formulas.HerfindahlIndex(ws),
		ConcentrationRisk:       formulas.ConcentrationRisk(ws),
		GiniCoefficient:         formulas.GiniCoefficient(ws),
		MaxWeight:               formulas.MaxWeight(ws),
		TopPositions:            ranked,
		AssetClassConcentration: assetClassConcentration(positions),
	}, nil
}

// correlationAdjustedScore computes 1 - weighted average pairwise |ρ| using
// position-pair value weights. When no matrix covers any pair, the neutral
// score 0.5 is reported.
func (s *Service) correlationAdjustedScore(weights map[string]float64) float64 {
	var corr *domain.CorrelationMatrix
	if s.correlations != nil {
		corr = s.correlations.CorrelationMatrix()
	}
	if corr == nil || !corr.Valid() {
		return neutralCorrelationScore
	}

	assets := make([]string, 0, len(weights))
	for asset := range weights {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	var weightedCorr, weightSum float64
	for i := 0; i < len(assets); i++ {
		for j := i + 1; j < len(assets); j++ {
			rho, ok := corr.Lookup(assets[i], assets[j])
			if !ok {
				continue
			}
			pairWeight := weights[assets[i]] * weights[assets[j]]
			weightedCorr += pairWeight * math.Abs(rho)
			weightSum += pairWeight
		}
	}
	if weightSum == 0 {
		return neutralCorrelationScore
	}
	return clamp01(1.0 - weightedCorr/weightSum)
}

// assetClassConcentration sums value share by asset class. Positions without
// a class are grouped under "Other".
func assetClassConcentration(positions []domain.Position) map[string]float64 {
	total := domain.TotalValue(positions)
	if total <= 0 {
		return map[string]float64{}
	}

	byClass := make(map[string]float64)
	for _, p := range positions {
		class := p.AssetClass
		if class == "" {
			class = "Other"
		}
		byClass[class] += p.CollateralValue / total
	}
	return byClass
}

func classify(score float64) string {
	switch {
	case score >= 0.8:
		return ClassExcellent
	case score >= 0.6:
		return ClassGood
	case score >= 0.3:
		return ClassModerate
	default:
		return ClassPoor
	}
}

func weightValues(weights map[string]float64) []float64 {
	out := make([]float64, 0, len(weights))
	for _, w := range weights {
		out = append(out, w)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
