package formulas

import "math"

// SharpeRatio calculates the annualized Sharpe ratio from daily returns.
//
// Sharpe = (mean daily return - daily risk-free rate) / daily volatility,
// annualized by sqrt(252). riskFreeRate is annual (e.g. 0.02 for 2%).
// Returns 0 when there is insufficient data or no volatility.
func SharpeRatio(dailyReturns []float64, riskFreeRate float64) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}

	stdDev := StdDev(dailyReturns)
	if stdDev == 0 {
		return 0
	}

	dailyRiskFree := riskFreeRate / TradingDaysPerYear
	sharpe := (Mean(dailyReturns) - dailyRiskFree) / stdDev
	return sharpe * math.Sqrt(TradingDaysPerYear)
}

// SortinoRatio calculates the annualized Sortino ratio from daily returns.
//
// Same numerator as Sharpe, but the denominator is the downside deviation:
// the standard deviation computed only over returns below zero. Returns 0
// when there is no downside in the sample.
func SortinoRatio(dailyReturns []float64, riskFreeRate float64) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}

	var downsideSquaredSum float64
	downsideCount := 0
	for _, r := range dailyReturns {
		if r < 0 {
			downsideSquaredSum += r * r
			downsideCount++
		}
	}
	if downsideCount == 0 {
		return 0
	}

	downsideDev := math.Sqrt(downsideSquaredSum / float64(downsideCount))
	if downsideDev == 0 {
		return 0
	}

	dailyRiskFree := riskFreeRate / TradingDaysPerYear
	sortino := (Mean(dailyReturns) - dailyRiskFree) / downsideDev
	return sortino * math.Sqrt(TradingDaysPerYear)
}

// CalmarRatio calculates the annualized return divided by the magnitude of
// the maximum drawdown. Returns 0 for a drawdown-free series since the ratio
// is undefined without a drawdown.
func CalmarRatio(dailyReturns []float64, maxDrawdown float64) float64 {
	if len(dailyReturns) == 0 || maxDrawdown >= 0 {
		return 0
	}
	return CalculateAnnualReturn(dailyReturns) / math.Abs(maxDrawdown)
}
