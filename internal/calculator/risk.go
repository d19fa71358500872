package calculator

import "PrimeTerminal/internal/model"

const daysPerYear = 365.25

// SeriesYears returns the number of years a series covers. The nominal period
// length wins; ytd and max fall back to the timestamp span.
func SeriesYears(series model.PriceSeries) float64 {
	if y, ok := series.Period.Years(); ok {
		return y
	}
	return series.Span().Hours() / 24 / daysPerYear
}

// ComputeRisk derives the risk snapshot of a price series. Series with fewer
// than 2 bars return a zero snapshot with Available=false.
func ComputeRisk(series model.PriceSeries, riskFree float64) model.RiskSnapshot {
	closes := series.Closes()
	returns := DailyReturns(closes)
	if len(returns) == 0 {
		return model.RiskSnapshot{}
	}
	return model.RiskSnapshot{
		Volatility:  Volatility(returns),
		MaxDrawdown: MaxDrawdown(closes),
		Sharpe:      Sharpe(returns, riskFree),
		CAGR:        CAGR(closes, SeriesYears(series)),
		Available:   true,
	}
}
