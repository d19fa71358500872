package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// SMA computes the simple moving average of closes over the given period for
// every bar. Entries without a full window are NaN.
func SMA(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(closes) < period {
		return nil, errors.New("not enough data for SMA calculation")
	}
	out := talib.Sma(closes, period)
	for i := 0; i < period-1 && i < len(out); i++ {
		out[i] = math.NaN()
	}
	return out, nil
}

// NormalizedPerformance rebases closes to percent change from the first bar,
// (close/close[0] - 1) * 100. Used to compare several tickers on one axis.
func NormalizedPerformance(closes []float64) []float64 {
	if len(closes) == 0 || closes[0] == 0 {
		return []float64{}
	}
	out := make([]float64, len(closes))
	for i, c := range closes {
		out[i] = (c/closes[0] - 1) * 100
	}
	return out
}
