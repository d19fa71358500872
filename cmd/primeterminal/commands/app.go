package commands

import (
	"fmt"

	"github.com/rs/zerolog"

	"PrimeTerminal/internal/collector"
	"PrimeTerminal/internal/config"
	"PrimeTerminal/internal/logging"
	"PrimeTerminal/internal/model"
	"PrimeTerminal/internal/report"
	"PrimeTerminal/internal/store"
	"PrimeTerminal/internal/strategy"
)

// app holds the components shared by every command.
type app struct {
	log       zerolog.Logger
	cache     *collector.Cache
	collector *collector.Collector
	store     store.FavoritesStore
	renderer  *report.PDFRenderer
	period    model.Period
}

// newApp wires config into the fetcher, cache, collector and store.
// withStore is false for commands that never touch favorites.
func newApp(c *config.Config, withStore bool) (*app, error) {
	log := logging.New(c.Log)

	var fetcher collector.Fetcher
	if c.DataSource.Mock {
		fetcher = &collector.MockFetcher{Price: 100}
	} else {
		fetcher = collector.NewYahooFetcher(
			collector.WithLogger(log),
			collector.WithQueryURL(c.DataSource.QueryURL),
			collector.WithCookieURL(c.DataSource.CookieURL),
			collector.WithRateLimit(c.DataSource.RateLimit),
			collector.WithTimeout(c.DataSource.Timeout),
			collector.WithProxy(c.Proxy),
		)
	}

	a := &app{log: log, renderer: report.NewPDFRenderer(c.Report.Investment)}

	cache, err := collector.OpenCache(c.DataSource.CacheDir, c.DataSource.CacheTTL, log)
	if err != nil {
		log.Warn().Err(err).Msg("cache unavailable, fetching without it")
	} else {
		a.cache = cache
		fetcher = collector.NewCachedFetcher(fetcher, cache)
	}
	log.Info().Str("fetcher", fetcher.Name()).Msg("data source ready")

	policy, err := strategy.ParsePolicy(c.Scoring.Policy)
	if err != nil {
		a.Close()
		return nil, err
	}
	verdicts, err := strategy.ParseVerdictPolicy(c.Scoring.Verdict)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.period, err = model.ParsePeriod(c.Scoring.DefaultPeriod)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.collector = collector.NewCollector(fetcher, strategy.NewEngine(policy), verdicts, c.RiskFree(), log)

	if withStore {
		st, err := store.Open(c.Database.Driver, c.Database.SQLitePath, c.Database.FavoritesFile, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open favorites store: %w", err)
		}
		a.store = st
	}
	return a, nil
}

// periodOr parses flag, falling back to the configured default.
func (a *app) periodOr(flag string) (model.Period, error) {
	if flag == "" {
		return a.period, nil
	}
	return model.ParsePeriod(flag)
}

// Close releases the cache and store.
func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close store")
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close cache")
		}
	}
}
