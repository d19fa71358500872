package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultRSIWindow is the classic RSI lookback.
const DefaultRSIWindow = 14

// RSI computes the relative strength index for every bar using a simple
// trailing mean of gains and losses over `window` day-over-day changes.
// The result has the same length as closes; the first `window` entries are
// NaN because there is not enough history. When the mean loss of a window
// is zero the RSI saturates at 100.
func RSI(closes []float64, window int) []float64 {
	n := len(closes)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || n <= window {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	for i := window; i < n; i++ {
		avgGain := stat.Mean(gains[i-window+1:i+1], nil)
		avgLoss := stat.Mean(losses[i-window+1:i+1], nil)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// LatestRSI returns the most recent RSI value and whether it is defined.
func LatestRSI(closes []float64, window int) (float64, bool) {
	values := RSI(closes, window)
	if len(values) == 0 {
		return 0, false
	}
	last := values[len(values)-1]
	if math.IsNaN(last) {
		return 0, false
	}
	return last, true
}

// RSIZone labels an RSI reading: >70 overbought, <30 oversold.
func RSIZone(rsi float64) string {
	switch {
	case rsi > 70:
		return "Overbought"
	case rsi < 30:
		return "Oversold"
	default:
		return "Neutral"
	}
}
