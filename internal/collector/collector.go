package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"PrimeTerminal/internal/calculator"
	"PrimeTerminal/internal/model"
	"PrimeTerminal/internal/strategy"
)

// ErrInvalidTicker is returned for blank or malformed symbols.
var ErrInvalidTicker = errors.New("invalid ticker")

// NormalizeTicker upper-cases and trims a symbol. It returns "" for input
// that cannot be a ticker.
func NormalizeTicker(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || len(s) > 15 {
		return ""
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '^', r == '=':
		default:
			return ""
		}
	}
	return s
}

// Collector orchestrates data fetching and the analysis pipeline.
type Collector struct {
	Fetcher  Fetcher
	Engine   *strategy.Engine
	Verdicts strategy.VerdictPolicy
	RiskFree float64

	log zerolog.Logger
	now func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, engine *strategy.Engine, verdicts strategy.VerdictPolicy, riskFree float64, log zerolog.Logger) *Collector {
	if engine == nil {
		engine = strategy.NewEngine(strategy.DefaultPolicy)
	}
	return &Collector{
		Fetcher:  fetcher,
		Engine:   engine,
		Verdicts: verdicts,
		RiskFree: riskFree,
		log:      log.With().Str("component", "collector").Logger(),
		now:      time.Now,
	}
}

// WithPolicies returns a copy of c that scores with the given policies.
func (c *Collector) WithPolicies(score strategy.Policy, verdicts strategy.VerdictPolicy) *Collector {
	cp := *c
	cp.Engine = strategy.NewEngine(score)
	cp.Verdicts = verdicts
	return &cp
}

// Analyze fetches one snapshot for ticker and derives the full analysis.
// Missing fundamentals or headlines degrade the result; an empty price
// series is an error.
func (c *Collector) Analyze(ctx context.Context, ticker string, period model.Period) (*model.Analysis, error) {
	symbol := NormalizeTicker(ticker)
	if symbol == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}

	series, err := c.Fetcher.FetchHistory(ctx, symbol, period)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	fund, err := c.Fetcher.FetchFundamentals(ctx, symbol)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("ticker", symbol).Msg("fundamentals unavailable, scoring without them")
		fund = model.Fundamentals{}
	}

	headlines, err := c.Fetcher.FetchHeadlines(ctx, symbol, strategy.MaxHeadlines)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("ticker", symbol).Msg("headlines unavailable")
		headlines = nil
	}

	score := c.Engine.Compute(fund, series)
	risk := calculator.ComputeRisk(series, c.RiskFree)
	rsi, rsiOK := calculator.LatestRSI(series.Closes(), calculator.DefaultRSIWindow)
	sentiment, counted := strategy.Sentiment(headlines)
	last, _ := series.Last()

	a := &model.Analysis{
		Ticker:       symbol,
		CompanyName:  fund.LongName,
		Period:       period,
		CurrentPrice: last.Close,
		Score:        score,
		Verdict:      c.Verdicts.Classify(score.Score, risk.MaxDrawdown),
		Risk:         risk,
		RSI:          rsi,
		RSIDefined:   rsiOK,
		Fundamentals: fund,
		Sentiment:    sentiment,
		Headlines:    counted,
		Series:       series,
		GeneratedAt:  c.now(),
	}
	if a.CompanyName == "" {
		a.CompanyName = symbol
	}
	if rng, ok := calculator.Compute52WeekRange(series); ok {
		a.Range = &rng
	}

	c.log.Info().
		Str("ticker", symbol).
		Str("period", string(period)).
		Int("score", score.Score).
		Str("verdict", a.Verdict.String()).
		Float64("max_drawdown", risk.MaxDrawdown).
		Msg("analysis complete")
	return a, nil
}

// Compare fetches each ticker and rebases its closes to percent change.
// Tickers that fail are skipped; it errors only when none succeed.
func (c *Collector) Compare(ctx context.Context, tickers []string, period model.Period) ([]model.Performance, error) {
	out := make([]model.Performance, 0, len(tickers))
	var lastErr error
	for _, t := range tickers {
		symbol := NormalizeTicker(t)
		if symbol == "" {
			lastErr = fmt.Errorf("%w: %q", ErrInvalidTicker, t)
			continue
		}
		series, err := c.Fetcher.FetchHistory(ctx, symbol, period)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn().Err(err).Str("ticker", symbol).Msg("skipping ticker in comparison")
			lastErr = err
			continue
		}
		if series.Len() == 0 {
			continue
		}
		times := make([]time.Time, series.Len())
		for i, b := range series.Bars {
			times[i] = b.Time
		}
		out = append(out, model.Performance{
			Symbol: symbol,
			Times:  times,
			Values: calculator.NormalizedPerformance(series.Closes()),
		})
	}
	if len(out) == 0 {
		if lastErr == nil {
			lastErr = ErrNoData
		}
		return nil, fmt.Errorf("compare: %w", lastErr)
	}
	return out, nil
}
