package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"PrimeTerminal/internal/model"
)

// DefaultCacheTTL keeps a fetched result for one hour.
const DefaultCacheTTL = time.Hour

// Cache is a TTL key/value store for fetched market data.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
	log zerolog.Logger
}

// OpenCache opens a badger-backed cache in dir. An empty dir keeps the cache
// in memory only.
func OpenCache(dir string, ttl time.Duration, log zerolog.Logger) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{log: log.With().Str("component", "badger").Logger()})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	log.Debug().Str("dir", dir).Dur("ttl", ttl).Msg("cache opened")
	return &Cache{db: db, ttl: ttl, log: log}, nil
}

func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Cache) load(key string, out any) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) store(key string, v any) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data).WithTTL(c.ttl))
	})
}

// Purge drops every cached entry.
func (c *Cache) Purge() error {
	return c.db.DropAll()
}

// CachedFetcher serves repeated requests from the cache. Empty results are
// never cached so a throttled response does not stick.
type CachedFetcher struct {
	inner Fetcher
	cache *Cache
}

func NewCachedFetcher(inner Fetcher, cache *Cache) *CachedFetcher {
	return &CachedFetcher{inner: inner, cache: cache}
}

func (f *CachedFetcher) Name() string { return f.inner.Name() + "+cache" }

func cacheKey(kind, ticker string, extra ...string) string {
	parts := append([]string{kind, strings.ToUpper(ticker)}, extra...)
	return strings.Join(parts, ":")
}

func (f *CachedFetcher) FetchHistory(ctx context.Context, ticker string, period model.Period) (model.PriceSeries, error) {
	key := cacheKey("history", ticker, string(period))
	var cached model.PriceSeries
	if hit, err := f.cache.load(key, &cached); err != nil {
		f.cache.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if hit && cached.Len() > 0 {
		return cached, nil
	}

	series, err := f.inner.FetchHistory(ctx, ticker, period)
	if err != nil {
		return series, err
	}
	if series.Len() > 0 {
		if err := f.cache.store(key, series); err != nil {
			f.cache.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return series, nil
}

func (f *CachedFetcher) FetchFundamentals(ctx context.Context, ticker string) (model.Fundamentals, error) {
	key := cacheKey("fundamentals", ticker)
	var cached model.Fundamentals
	if hit, err := f.cache.load(key, &cached); err != nil {
		f.cache.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if hit && !cached.IsEmpty() {
		return cached, nil
	}

	fund, err := f.inner.FetchFundamentals(ctx, ticker)
	if err != nil {
		return fund, err
	}
	if !fund.IsEmpty() {
		if err := f.cache.store(key, fund); err != nil {
			f.cache.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return fund, nil
}

func (f *CachedFetcher) FetchHeadlines(ctx context.Context, ticker string, limit int) ([]string, error) {
	key := cacheKey("headlines", ticker, fmt.Sprint(limit))
	var cached []string
	if hit, err := f.cache.load(key, &cached); err != nil {
		f.cache.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if hit && len(cached) > 0 {
		return cached, nil
	}

	headlines, err := f.inner.FetchHeadlines(ctx, ticker, limit)
	if err != nil {
		return headlines, err
	}
	if len(headlines) > 0 {
		if err := f.cache.store(key, headlines); err != nil {
			f.cache.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return headlines, nil
}

// badgerLogger routes badger's internal logging through zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func trimf(format string, args ...interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.log.Error().Msg(trimf(format, args...))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.log.Warn().Msg(trimf(format, args...))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.log.Debug().Msg(trimf(format, args...))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.log.Trace().Msg(trimf(format, args...))
}
