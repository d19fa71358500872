package calculator

import "PrimeTerminal/internal/model"

// Compute52WeekRange returns the high and low of the last 252 bars and where
// the latest close sits between them (0 at the low, 1 at the high). A flat
// range places the close at 0.5. It returns false for an empty series.
func Compute52WeekRange(series model.PriceSeries) (model.Range52w, bool) {
	last, ok := series.Last()
	if !ok {
		return model.Range52w{}, false
	}
	window := series.Bars
	if len(window) > TradingDays {
		window = window[len(window)-TradingDays:]
	}

	r := model.Range52w{High: window[0].High, Low: window[0].Low}
	for _, b := range window[1:] {
		r.High = max(r.High, b.High)
		r.Low = min(r.Low, b.Low)
	}

	switch span := r.High - r.Low; {
	case span <= 0:
		r.Position = 0.5
	default:
		r.Position = min(max((last.Close-r.Low)/span, 0), 1)
	}
	return r, true
}
