// Package scenarios provides the static catalog of market shock templates
// and the applicator that replays them against position snapshots.
package scenarios

// Scenario names for the built-in templates.
const (
	HistoricalMarketCrash = "HistoricalMarketCrash"
	CryptoWinter          = "CryptoWinter"
	DeFiContagion         = "DeFiContagion"
	RegulatoryShock       = "RegulatoryShock"
	BlackSwan             = "BlackSwan"
)

// Scenario is a named shock template: per-asset multiplicative price and
// volume shocks plus flags describing the market environment. Scenarios are
// intentionally partial; assets absent from the shock maps are untouched.
type Scenario struct {
	Name                 string             `json:"name"`
	PriceShocks          map[string]float64 `json:"price_shocks"`  // asset -> fraction, -0.50 = price halves
	VolumeShocks         map[string]float64 `json:"volume_shocks"` // asset -> volume multiplier
	VolatilityMultiplier float64            `json:"volatility_multiplier"`
	CorrelationBreakdown bool               `json:"correlation_breakdown"`
	LiquidityCrisis      bool               `json:"liquidity_crisis"`
	DurationDays         int                `json:"duration_days"`
}

// NewCustomScenario builds a user-supplied scenario carrying the same shape
// as the built-in templates. Shock maps are copied so later caller mutations
// cannot leak into a running simulation.
func NewCustomScenario(
	name string,
	priceShocks map[string]float64,
	volumeShocks map[string]float64,
	volatilityMultiplier float64,
	correlationBreakdown bool,
	liquidityCrisis bool,
	durationDays int,
) Scenario {
	return Scenario{
		Name:                 name,
		PriceShocks:          copyShocks(priceShocks),
		VolumeShocks:         copyShocks(volumeShocks),
		VolatilityMultiplier: volatilityMultiplier,
		CorrelationBreakdown: correlationBreakdown,
		LiquidityCrisis:      liquidityCrisis,
		DurationDays:         durationDays,
	}
}

// BuiltinScenarios returns the five built-in shock templates. The catalog is
// constructed once at startup and shared read-only between engine instances;
// each call returns fresh map copies so the shared catalog cannot be mutated.
func BuiltinScenarios() map[string]Scenario {
	catalog := map[string]Scenario{
		HistoricalMarketCrash: {
			Name: HistoricalMarketCrash,
			PriceShocks: map[string]float64{
				"BTC": -0.50, "ETH": -0.55, "SOL": -0.60, "AVAX": -0.60,
				"MATIC": -0.60, "LINK": -0.58,
			},
			VolumeShocks: map[string]float64{
				"BTC": 3.0, "ETH": 3.0, "SOL": 2.5, "AVAX": 2.5,
			},
			VolatilityMultiplier: 2.5,
			CorrelationBreakdown: false,
			LiquidityCrisis:      false,
			DurationDays:         30,
		},
		CryptoWinter: {
			Name: CryptoWinter,
			PriceShocks: map[string]float64{
				"BTC": -0.70, "ETH": -0.75, "SOL": -0.85, "AVAX": -0.85,
				"MATIC": -0.85, "LINK": -0.80, "UNI": -0.82, "AAVE": -0.82,
			},
			VolumeShocks: map[string]float64{
				"BTC": 0.4, "ETH": 0.4, "SOL": 0.3,
			},
			VolatilityMultiplier: 1.8,
			CorrelationBreakdown: false,
			LiquidityCrisis:      false,
			DurationDays:         365,
		},
		DeFiContagion: {
			Name: DeFiContagion,
			PriceShocks: map[string]float64{
				"UNI": -0.65, "AAVE": -0.70, "COMP": -0.70, "CRV": -0.75,
				"MKR": -0.60, "ETH": -0.35, "USDC": -0.03, "DAI": -0.05,
			},
			VolumeShocks: map[string]float64{
				"UNI": 4.0, "AAVE": 4.0, "CRV": 5.0,
			},
			VolatilityMultiplier: 3.0,
			CorrelationBreakdown: true,
			LiquidityCrisis:      true,
			DurationDays:         14,
		},
		RegulatoryShock: {
			Name: RegulatoryShock,
			PriceShocks: map[string]float64{
				"BTC": -0.30, "ETH": -0.35, "USDC": -0.02, "USDT": -0.05,
			},
			VolumeShocks: map[string]float64{
				"USDC": 6.0, "USDT": 6.0,
			},
			VolatilityMultiplier: 2.0,
			CorrelationBreakdown: false,
			LiquidityCrisis:      false,
			DurationDays:         90,
		},
		BlackSwan: {
			Name: BlackSwan,
			PriceShocks: map[string]float64{
				"BTC": -0.90, "ETH": -0.90, "SOL": -0.95, "AVAX": -0.95,
				"MATIC": -0.95, "LINK": -0.92, "UNI": -0.93, "AAVE": -0.93,
				"USDC": -0.10, "USDT": -0.15, "DAI": -0.12,
			},
			VolumeShocks: map[string]float64{
				"BTC": 10.0, "ETH": 10.0,
			},
			VolatilityMultiplier: 5.0,
			CorrelationBreakdown: true,
			LiquidityCrisis:      true,
			DurationDays:         7,
		},
	}

	// Hand out copies; the literal above stays untouched.
	out := make(map[string]Scenario, len(catalog))
	for name, s := range catalog {
		s.PriceShocks = copyShocks(s.PriceShocks)
		s.VolumeShocks = copyShocks(s.VolumeShocks)
		out[name] = s
	}
	return out
}

func copyShocks(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
