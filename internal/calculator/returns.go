package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// TradingDays is the annualisation constant for daily data.
	TradingDays = 252

	// DefaultRiskFreeRate is the annual risk-free rate used by Sharpe.
	DefaultRiskFreeRate = 0.04
)

// DailyReturns computes (close[i]-close[i-1])/close[i-1] for i = 1..n-1.
// Fewer than 2 closes yield an empty slice, meaning risk metrics are unavailable.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return []float64{}
	}
	returns := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			returns[i-1] = (closes[i] - closes[i-1]) / closes[i-1]
		}
	}
	return returns
}

// Mean returns the arithmetic mean, 0 for empty input.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev returns the sample (n-1) standard deviation, 0 for fewer than 2 values.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Volatility returns the annualised volatility of daily returns in percent:
// sample stddev * sqrt(252) * 100.
func Volatility(returns []float64) float64 {
	return StdDev(returns) * math.Sqrt(TradingDays) * 100
}

// Sharpe returns (annualised mean return - riskFree) / annualised stddev.
// A zero stddev yields 0 rather than an infinite ratio.
func Sharpe(returns []float64, riskFree float64) float64 {
	sd := StdDev(returns)
	if sd == 0 {
		return 0
	}
	annualMean := Mean(returns) * TradingDays
	annualSD := sd * math.Sqrt(TradingDays)
	return (annualMean - riskFree) / annualSD
}
