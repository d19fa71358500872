package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PrimeTerminal/internal/model"
	"PrimeTerminal/internal/strategy"
)

func strongFundamentals() model.Fundamentals {
	return model.Fundamentals{
		LongName:      "Strong Corp",
		TrailingPE:    model.Float(20),
		ProfitMargins: model.Float(0.2),
		RevenueGrowth: model.Float(0.2),
		TotalCash:     model.Float(200),
		TotalDebt:     model.Float(100),
	}
}

func newTestCollector(f Fetcher) *Collector {
	c := NewCollector(f, strategy.NewEngine(strategy.DefaultPolicy), strategy.DefaultVerdictPolicy, 0.04, zerolog.Nop())
	c.now = func() time.Time { return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestAnalyze_FullPipeline(t *testing.T) {
	mock := &MockFetcher{
		Price:        100,
		Fundamentals: strongFundamentals(),
		Headlines:    []string{"Record quarter", "Shares jump", "Record quarter"},
	}
	a, err := newTestCollector(mock).Analyze(context.Background(), " strg ", model.Period1y)
	require.NoError(t, err)

	assert.Equal(t, "STRG", a.Ticker)
	assert.Equal(t, "Strong Corp", a.CompanyName)
	assert.Equal(t, 100, a.Score.Score)
	assert.Len(t, a.Score.Reasons, 5)
	assert.Equal(t, model.VerdictOpportunity, a.Verdict)
	assert.True(t, a.Risk.Available)
	assert.Equal(t, 0.0, a.Risk.MaxDrawdown)
	assert.True(t, a.RSIDefined)
	assert.Equal(t, 100.0, a.RSI, "a monotonic rise saturates RSI")
	require.NotNil(t, a.Range)
	assert.InDelta(t, 1.0, a.Range.Position, 0.05)
	assert.Equal(t, model.SentimentPositive, a.Sentiment)
	assert.Len(t, a.Headlines, 2)

	last, _ := a.Series.Last()
	assert.Equal(t, last.Close, a.CurrentPrice)
}

func TestAnalyze_FundamentalsFailureDegrades(t *testing.T) {
	mock := &MockFetcher{Price: 100, FundErr: errors.New("throttled")}
	a, err := newTestCollector(mock).Analyze(context.Background(), "THR", model.Period6mo)
	require.NoError(t, err)

	assert.Equal(t, 50, a.Score.Score)
	assert.Len(t, a.Score.Reasons, 1)
	assert.Equal(t, model.VerdictWeak, a.Verdict)
	assert.Equal(t, "THR", a.CompanyName)
	assert.Equal(t, model.SentimentNeutral, a.Sentiment)
}

func TestAnalyze_DrawdownVeto(t *testing.T) {
	mock := &MockFetcher{Price: 100, Drift: -0.003, Fundamentals: strongFundamentals()}
	a, err := newTestCollector(mock).Analyze(context.Background(), "FALL", model.Period1y)
	require.NoError(t, err)

	assert.Less(t, a.Risk.MaxDrawdown, -35.0)
	assert.Equal(t, model.VerdictHighRisk, a.Verdict)
	assert.Equal(t, 0.0, a.RSI)
}

func TestAnalyze_Errors(t *testing.T) {
	c := newTestCollector(&MockFetcher{Err: ErrNoData})

	_, err := c.Analyze(context.Background(), "NODATA", model.Period1y)
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = c.Analyze(context.Background(), "  ", model.Period1y)
	assert.True(t, errors.Is(err, ErrInvalidTicker))

	_, err = c.Analyze(context.Background(), "BAD TICKER", model.Period1y)
	assert.True(t, errors.Is(err, ErrInvalidTicker))
}

func TestAnalyze_WithPolicies(t *testing.T) {
	f := strongFundamentals()
	f.TrailingPE = model.Float(30)
	f.PEGRatio = model.Float(3)
	mock := &MockFetcher{Price: 100, Fundamentals: f}

	base := newTestCollector(mock)
	a, err := base.Analyze(context.Background(), "PEG", model.Period1y)
	require.NoError(t, err)
	assert.Equal(t, 100, a.Score.Score)

	peg, err := strategy.ParsePolicy("peg")
	require.NoError(t, err)
	a, err = base.WithPolicies(peg, strategy.StrongVerdictPolicy).Analyze(context.Background(), "PEG", model.Period1y)
	require.NoError(t, err)
	assert.Equal(t, 80, a.Score.Score)
	assert.Equal(t, model.VerdictStrong, a.Verdict)
	assert.Equal(t, strategy.DefaultPolicy, base.Engine.Policy, "original collector is unchanged")
}

func TestCompare(t *testing.T) {
	c := newTestCollector(&MockFetcher{Price: 100})
	perf, err := c.Compare(context.Background(), []string{"aaa", "", "bbb"}, model.Period3mo)
	require.NoError(t, err)
	require.Len(t, perf, 2)
	assert.Equal(t, "AAA", perf[0].Symbol)
	assert.Equal(t, 0.0, perf[0].Values[0])
	assert.Len(t, perf[0].Times, len(perf[0].Values))

	_, err = newTestCollector(&MockFetcher{Err: ErrNoData}).Compare(context.Background(), []string{"X"}, model.Period1y)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "BRK-B", NormalizeTicker(" brk-b "))
	assert.Equal(t, "^GSPC", NormalizeTicker("^gspc"))
	assert.Equal(t, "", NormalizeTicker("a b"))
	assert.Equal(t, "", NormalizeTicker(""))
}
