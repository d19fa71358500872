package calculator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PrimeTerminal/internal/model"
)

func makeSeries(period model.Period, start time.Time, closes ...float64) model.PriceSeries {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Time:  start.AddDate(0, 0, i),
			Open:  c,
			High:  c * 1.01,
			Low:   c * 0.99,
			Close: c,
		}
	}
	return model.PriceSeries{Symbol: "TEST", Period: period, Bars: bars}
}

func TestDailyReturns(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   []float64
	}{
		{"empty", nil, []float64{}},
		{"single bar", []float64{100}, []float64{}},
		{"two bars", []float64{100, 110}, []float64{0.1}},
		{"three bars", []float64{100, 110, 99}, []float64{0.1, -0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DailyReturns(tt.closes)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestMaxDrawdown_Example(t *testing.T) {
	got := MaxDrawdown([]float64{100, 110, 105, 90, 120})
	assert.InDelta(t, (90.0/110.0-1)*100, got, 1e-12)
	assert.InDelta(t, -18.181818181818, got, 1e-9)
}

func TestMaxDrawdown_Edges(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown(nil))
	assert.Equal(t, 0.0, MaxDrawdown([]float64{42}))
	assert.Equal(t, 0.0, MaxDrawdown([]float64{50, 50, 50, 50}))
	assert.Equal(t, 0.0, MaxDrawdown([]float64{1, 2, 3, 4, 5}))
	assert.InDelta(t, -50.0, MaxDrawdown([]float64{10, 5, 7}), 1e-12)
}

func TestFlatSeries(t *testing.T) {
	closes := []float64{50, 50, 50, 50}
	returns := DailyReturns(closes)

	vol := Volatility(returns)
	sharpe := Sharpe(returns, DefaultRiskFreeRate)

	assert.Equal(t, 0.0, vol)
	assert.Equal(t, 0.0, sharpe)
	assert.False(t, math.IsNaN(sharpe))
	assert.False(t, math.IsInf(sharpe, 0))
	assert.Equal(t, 0.0, MaxDrawdown(closes))
}

func TestIncreasingSeries(t *testing.T) {
	closes := []float64{10, 11, 12.5, 13, 20, 21}
	assert.Equal(t, 0.0, MaxDrawdown(closes))
	assert.GreaterOrEqual(t, Volatility(DailyReturns(closes)), 0.0)
}

func TestVolatility_SampleStdDev(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.02}
	mean := (0.01 - 0.01 + 0.02) / 3
	var ss float64
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	sd := math.Sqrt(ss / 2)

	assert.InDelta(t, sd*math.Sqrt(252)*100, Volatility(returns), 1e-9)
	assert.Equal(t, 0.0, Volatility([]float64{0.05}))
	assert.Equal(t, 0.0, Volatility(nil))
}

func TestSharpe(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.02}
	mean := Mean(returns)
	sd := StdDev(returns)
	want := (mean*252 - 0.04) / (sd * math.Sqrt(252))

	assert.InDelta(t, want, Sharpe(returns, 0.04), 1e-9)
	assert.InDelta(t, (mean*252)/(sd*math.Sqrt(252)), Sharpe(returns, 0), 1e-9)
	assert.Equal(t, 0.0, Sharpe(nil, 0.04))
}

func TestCAGR(t *testing.T) {
	assert.InDelta(t, 10.0, CAGR([]float64{100, 105, 121}, 2), 1e-9)
	assert.InDelta(t, -50.0, CAGR([]float64{100, 50}, 1), 1e-9)
	assert.Equal(t, 0.0, CAGR(nil, 5))
	assert.Equal(t, 0.0, CAGR([]float64{100, 200}, 0))
	assert.Equal(t, 0.0, CAGR([]float64{0, 200}, 1))
}

func TestRSI_KnownValues(t *testing.T) {
	values := RSI([]float64{10, 11, 10, 12}, 2)
	require.Len(t, values, 4)
	assert.True(t, math.IsNaN(values[0]))
	assert.True(t, math.IsNaN(values[1]))
	assert.InDelta(t, 50.0, values[2], 1e-9)
	assert.InDelta(t, 200.0/3, values[3], 1e-9)
}

func TestRSI_InsufficientHistory(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	for _, v := range RSI(closes, 14) {
		assert.True(t, math.IsNaN(v))
	}
	_, ok := LatestRSI(closes, 14)
	assert.False(t, ok)

	_, ok = LatestRSI(nil, 14)
	assert.False(t, ok)

	assert.Len(t, RSI(closes, 0), len(closes))
}

func TestRSI_SaturatesWithoutLosses(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi, ok := LatestRSI(closes, DefaultRSIWindow)
	require.True(t, ok)
	assert.Equal(t, 100.0, rsi)

	// a loss that has rolled out of the window no longer counts
	closes[1] = 90
	rsi, ok = LatestRSI(closes, DefaultRSIWindow)
	require.True(t, ok)
	assert.Equal(t, 100.0, rsi)
}

func TestRSI_AlwaysBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	closes := make([]float64, 500)
	price := 100.0
	for i := range closes {
		price *= 1 + (rng.Float64()-0.5)*0.08
		closes[i] = price
	}
	values := RSI(closes, DefaultRSIWindow)
	for i, v := range values {
		if i < DefaultRSIWindow {
			assert.True(t, math.IsNaN(v), "index %d should be undefined", i)
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestRSIZone(t *testing.T) {
	assert.Equal(t, "Overbought", RSIZone(75))
	assert.Equal(t, "Oversold", RSIZone(25))
	assert.Equal(t, "Neutral", RSIZone(70))
	assert.Equal(t, "Neutral", RSIZone(30))
}

func TestSMA(t *testing.T) {
	got, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 2.0, got[2], 1e-9)
	assert.InDelta(t, 3.0, got[3], 1e-9)
	assert.InDelta(t, 4.0, got[4], 1e-9)

	_, err = SMA([]float64{1, 2}, 3)
	assert.Error(t, err)
	_, err = SMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestNormalizedPerformance(t *testing.T) {
	got := NormalizedPerformance([]float64{50, 55, 40})
	require.Len(t, got, 3)
	assert.InDelta(t, 0.0, got[0], 1e-12)
	assert.InDelta(t, 10.0, got[1], 1e-9)
	assert.InDelta(t, -20.0, got[2], 1e-9)
	assert.Empty(t, NormalizedPerformance(nil))
}

func TestCompute52WeekRange(t *testing.T) {
	series := makeSeries(model.Period1y, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 100, 120, 80, 100)
	r, ok := Compute52WeekRange(series)
	require.True(t, ok)
	assert.InDelta(t, 121.2, r.High, 1e-9)
	assert.InDelta(t, 79.2, r.Low, 1e-9)
	assert.InDelta(t, (100-79.2)/(121.2-79.2), r.Position, 1e-9)

	_, ok = Compute52WeekRange(model.PriceSeries{})
	assert.False(t, ok)
}

func TestCompute52WeekRange_Edges(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("flat range sits in the middle", func(t *testing.T) {
		bars := []model.Bar{{Time: start, High: 10, Low: 10, Close: 10}}
		r, ok := Compute52WeekRange(model.PriceSeries{Bars: bars})
		require.True(t, ok)
		assert.Equal(t, 0.5, r.Position)
	})

	t.Run("only the last 252 bars count", func(t *testing.T) {
		bars := make([]model.Bar, 300)
		for i := range bars {
			bars[i] = model.Bar{Time: start.AddDate(0, 0, i), High: 110, Low: 90, Close: 100}
		}
		bars[0].High = 500
		bars[1].Low = 1
		r, ok := Compute52WeekRange(model.PriceSeries{Bars: bars})
		require.True(t, ok)
		assert.Equal(t, 110.0, r.High)
		assert.Equal(t, 90.0, r.Low)
		assert.InDelta(t, 0.5, r.Position, 1e-12)
	})

	t.Run("close outside the range is clamped", func(t *testing.T) {
		bars := []model.Bar{
			{Time: start, High: 10, Low: 8, Close: 9},
			{Time: start.AddDate(0, 0, 1), High: 10, Low: 8, Close: 12},
		}
		r, ok := Compute52WeekRange(model.PriceSeries{Bars: bars})
		require.True(t, ok)
		assert.Equal(t, 1.0, r.Position)
	})
}

func TestComputeRisk(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty series", func(t *testing.T) {
		snap := ComputeRisk(model.PriceSeries{}, DefaultRiskFreeRate)
		assert.False(t, snap.Available)
		assert.Equal(t, model.RiskSnapshot{}, snap)
	})

	t.Run("single bar", func(t *testing.T) {
		snap := ComputeRisk(makeSeries(model.Period1y, start, 100), DefaultRiskFreeRate)
		assert.False(t, snap.Available)
	})

	t.Run("nominal period years", func(t *testing.T) {
		series := makeSeries(model.Period5y, start, 100, 110, 105, 90, 120)
		snap := ComputeRisk(series, DefaultRiskFreeRate)
		assert.True(t, snap.Available)
		assert.InDelta(t, -18.181818181818, snap.MaxDrawdown, 1e-9)
		assert.InDelta(t, (math.Pow(1.2, 1.0/5)-1)*100, snap.CAGR, 1e-9)
		assert.Greater(t, snap.Volatility, 0.0)
	})

	t.Run("max period uses timestamp span", func(t *testing.T) {
		series := model.PriceSeries{
			Period: model.PeriodMax,
			Bars: []model.Bar{
				{Time: start, Close: 100},
				{Time: start.Add(time.Duration(2*365.25*24) * time.Hour), Close: 121},
			},
		}
		assert.InDelta(t, 2.0, SeriesYears(series), 1e-9)
		snap := ComputeRisk(series, DefaultRiskFreeRate)
		assert.InDelta(t, 10.0, snap.CAGR, 1e-6)
	})

	t.Run("idempotent", func(t *testing.T) {
		series := makeSeries(model.Period1y, start, 100, 101, 99, 104, 103, 110)
		assert.Equal(t, ComputeRisk(series, 0.04), ComputeRisk(series, 0.04))
	})
}
