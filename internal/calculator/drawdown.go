package calculator

import "math"

// MaxDrawdown returns the deepest peak-to-trough decline in percent:
// min_i(close[i]/max(close[0..i]) - 1) * 100. The result is <= 0 and is 0
// for empty or non-decreasing input.
func MaxDrawdown(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}
	peak := closes[0]
	worst := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak <= 0 {
			continue
		}
		if dd := c/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst * 100
}

// CAGR returns the compound annual growth rate in percent over the given
// number of years. Empty input, non-positive years or a non-positive first
// close yield 0.
func CAGR(closes []float64, years float64) float64 {
	if len(closes) == 0 || years <= 0 {
		return 0
	}
	first, last := closes[0], closes[len(closes)-1]
	if first <= 0 || last < 0 {
		return 0
	}
	return (math.Pow(last/first, 1/years) - 1) * 100
}
