package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"PrimeTerminal/internal/model"
)

// ErrNotFound is returned when a symbol is not among the favorites.
var ErrNotFound = errors.New("favorite not found")

// FavoritesStore persists the user's saved tickers in insertion order.
type FavoritesStore interface {
	List(ctx context.Context) ([]model.Favorite, error)
	Get(ctx context.Context, symbol string) (model.Favorite, error)
	// Add saves fav unless the symbol is already present, reporting whether
	// it was added.
	Add(ctx context.Context, fav model.Favorite) (bool, error)
	Remove(ctx context.Context, symbol string) error
	Close() error
}

// Open creates the store selected by driver ("sqlite" or "file").
func Open(driver, sqlitePath, filePath string, log zerolog.Logger) (FavoritesStore, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite":
		return NewSQLiteStore(sqlitePath, log)
	case "file":
		return NewFileStore(filePath, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
