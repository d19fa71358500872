package collector

import (
	"context"
	"strings"
	"time"

	"PrimeTerminal/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price        float64
	Drift        float64 // per-bar relative change, 0.001 when zero
	Fundamentals model.Fundamentals
	Headlines    []string
	Err          error
	FundErr      error
	Now          time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, ticker string, period model.Period) (model.PriceSeries, error) {
	if m.Err != nil {
		return model.PriceSeries{}, m.Err
	}
	count := 2520
	if years, ok := period.Years(); ok {
		count = int(years * 252)
	} else if period == model.PeriodYTD {
		count = 200
	}
	return model.PriceSeries{
		Symbol:    strings.ToUpper(ticker),
		Period:    period,
		Bars:      m.generateBars(count),
		FetchedAt: m.now(),
	}, nil
}

func (m *MockFetcher) FetchFundamentals(_ context.Context, _ string) (model.Fundamentals, error) {
	if m.FundErr != nil {
		return model.Fundamentals{}, m.FundErr
	}
	return m.Fundamentals, nil
}

func (m *MockFetcher) FetchHeadlines(_ context.Context, _ string, limit int) ([]string, error) {
	if len(m.Headlines) > limit {
		return m.Headlines[:limit], nil
	}
	return m.Headlines, nil
}

func (m *MockFetcher) now() time.Time {
	if m.Now.IsZero() {
		return time.Now().UTC().Truncate(24 * time.Hour)
	}
	return m.Now
}

func (m *MockFetcher) generateBars(count int) []model.Bar {
	drift := m.Drift
	if drift == 0 {
		drift = 0.001
	}
	end := m.now()
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := m.Price * (1 + float64(i-count/2)*drift)
		if p <= 0 {
			p = m.Price * 0.01
		}
		bars[i] = model.Bar{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
