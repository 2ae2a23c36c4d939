// Package formulas provides the pure quantitative building blocks used by the
// risk, stress and diversification modules. Functions here are stateless and
// side-effect free.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization basis for daily return series.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Variance(data, nil)
}

// AnnualizedVolatility calculates annualized volatility from daily returns
// Formula: Std Dev of Daily Returns × sqrt(252 trading days)
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// CalculateReturns converts prices to percentage returns
// Returns[i] = (Price[i] - Price[i-1]) / Price[i-1]
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}

// Correlation calculates the Pearson correlation coefficient between two datasets
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// Covariance calculates the covariance between two datasets
func Covariance(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// CalculateAnnualReturn calculates annualized return from daily returns
//
// Formula: ((1+r1)*(1+r2)*...*(1+rN))^(252/N) - 1
//
// This computes the compound annual growth rate from a series of periodic
// returns by first calculating the cumulative return and then annualizing it
// based on the number of trading periods.
func CalculateAnnualReturn(returns []float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}

	cumulative := 1.0
	for _, r := range returns {
		cumulative *= (1 + r)
	}

	numPeriods := float64(len(returns))

	// For very short periods (< 3 days), return simple cumulative return
	// to avoid extreme annualization
	if numPeriods < 3 {
		return cumulative - 1
	}

	years := numPeriods / TradingDaysPerYear
	return math.Pow(cumulative, 1.0/years) - 1
}

// Beta calculates the beta of an asset or portfolio return series against a
// benchmark return series: Cov(r, m) / Var(m).
func Beta(returns, benchmark []float64) float64 {
	if len(returns) < 2 || len(returns) != len(benchmark) {
		return 0
	}

	benchVar := Variance(benchmark)
	if benchVar == 0 {
		return 0
	}
	return Covariance(returns, benchmark) / benchVar
}

// TrackingError calculates the annualized standard deviation of the active
// return (portfolio minus benchmark).
func TrackingError(returns, benchmark []float64) float64 {
	if len(returns) < 2 || len(returns) != len(benchmark) {
		return 0
	}

	active := make([]float64, len(returns))
	for i := range returns {
		active[i] = returns[i] - benchmark[i]
	}
	return AnnualizedVolatility(active)
}

// InformationRatio calculates the annualized active return divided by the
// tracking error. Returns 0 when the tracking error is degenerate.
func InformationRatio(returns, benchmark []float64) float64 {
	if len(returns) < 2 || len(returns) != len(benchmark) {
		return 0
	}

	te := TrackingError(returns, benchmark)
	if te == 0 {
		return 0
	}

	active := make([]float64, len(returns))
	for i := range returns {
		active[i] = returns[i] - benchmark[i]
	}
	annualizedActive := Mean(active) * TradingDaysPerYear
	return annualizedActive / te
}
