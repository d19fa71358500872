package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned by ParsePeriod for unknown history periods.
var ErrInvalidPeriod = errors.New("invalid period")

// Bar represents a single daily candlestick.
type Bar struct {
	Time   time.Time `json:"time" msgpack:"t"`
	Open   float64   `json:"open" msgpack:"o"`
	High   float64   `json:"high" msgpack:"h"`
	Low    float64   `json:"low" msgpack:"l"`
	Close  float64   `json:"close" msgpack:"c"`
	Volume float64   `json:"volume" msgpack:"v"`
}

// PriceSeries holds the daily bars fetched for one (ticker, period) pair.
// Bars are in strictly increasing time order.
type PriceSeries struct {
	Symbol    string    `json:"symbol" msgpack:"symbol"`
	Period    Period    `json:"period" msgpack:"period"`
	Bars      []Bar     `json:"bars" msgpack:"bars"`
	FetchedAt time.Time `json:"fetched_at" msgpack:"fetched_at"`
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes returns a fresh slice of close prices.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar, or false when the series is empty.
func (s PriceSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Span returns the time between the first and last bar.
func (s PriceSeries) Span() time.Duration {
	if len(s.Bars) < 2 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Time.Sub(s.Bars[0].Time)
}

// Period is a requested history length in Yahoo range notation.
type Period string

const (
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period3y  Period = "3y"
	Period4y  Period = "4y"
	Period5y  Period = "5y"
	Period6y  Period = "6y"
	Period7y  Period = "7y"
	Period8y  Period = "8y"
	Period9y  Period = "9y"
	Period10y Period = "10y"
	PeriodYTD Period = "ytd"
	PeriodMax Period = "max"
)

// Periods lists every supported period, shortest first.
var Periods = []Period{
	Period1mo, Period3mo, Period6mo,
	Period1y, Period2y, Period3y, Period4y, Period5y,
	Period6y, Period7y, Period8y, Period9y, Period10y,
	PeriodYTD, PeriodMax,
}

var periodYears = map[Period]float64{
	Period1mo: 1.0 / 12,
	Period3mo: 0.25,
	Period6mo: 0.5,
	Period1y:  1,
	Period2y:  2,
	Period3y:  3,
	Period4y:  4,
	Period5y:  5,
	Period6y:  6,
	Period7y:  7,
	Period8y:  8,
	Period9y:  9,
	Period10y: 10,
}

// ParsePeriod validates a period string (case-insensitive).
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Periods {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

// Years returns the nominal length of the period in years. Periods without
// a fixed length (ytd, max) return false; callers derive the span from the
// series timestamps instead.
func (p Period) Years() (float64, bool) {
	y, ok := periodYears[p]
	return y, ok
}

func (p Period) String() string { return string(p) }
