package collector

import (
	"context"
	"errors"

	"PrimeTerminal/internal/model"
)

// ErrNoData is returned when the provider has nothing for a ticker.
var ErrNoData = errors.New("no data for ticker")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchHistory(ctx context.Context, ticker string, period model.Period) (model.PriceSeries, error)
	FetchFundamentals(ctx context.Context, ticker string) (model.Fundamentals, error)
	FetchHeadlines(ctx context.Context, ticker string, limit int) ([]string, error)
	Name() string
}
