package strategy

import "PrimeTerminal/internal/model"

// DividendIncome estimates the monthly income of an investment at the
// reported dividend yield. It returns false when the yield is unknown or zero.
func DividendIncome(yield *float64, investment float64) (float64, bool) {
	y, ok := model.Value(yield)
	if !ok || y <= 0 {
		return 0, false
	}
	return investment * y / 12, true
}
