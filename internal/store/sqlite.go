package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"PrimeTerminal/internal/model"
)

// SQLiteStore persists favorites to a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log.With().Str("component", "store").Logger()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS favorites (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol   TEXT NOT NULL UNIQUE,
			name     TEXT NOT NULL DEFAULT '',
			added_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_added ON favorites(added_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]model.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, name, added_at FROM favorites ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favs := []model.Favorite{}
	for rows.Next() {
		var (
			f  model.Favorite
			ts int64
		)
		if err := rows.Scan(&f.Symbol, &f.Name, &ts); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		f.AddedAt = time.Unix(ts, 0).UTC()
		favs = append(favs, f)
	}
	return favs, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, symbol string) (model.Favorite, error) {
	var (
		f  model.Favorite
		ts int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT symbol, name, added_at FROM favorites WHERE symbol = ?`, normalize(symbol)).
		Scan(&f.Symbol, &f.Name, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Favorite{}, fmt.Errorf("%w: %s", ErrNotFound, normalize(symbol))
	}
	if err != nil {
		return model.Favorite{}, fmt.Errorf("get favorite: %w", err)
	}
	f.AddedAt = time.Unix(ts, 0).UTC()
	return f, nil
}

func (s *SQLiteStore) Add(ctx context.Context, fav model.Favorite) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol := normalize(fav.Symbol)
	if symbol == "" {
		return false, errors.New("empty symbol")
	}
	if fav.AddedAt.IsZero() {
		fav.AddedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (symbol, name, added_at) VALUES (?,?,?) ON CONFLICT(symbol) DO NOTHING`,
		symbol, fav.Name, fav.AddedAt.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.log.Debug().Str("symbol", symbol).Msg("favorite added")
	}
	return n > 0, nil
}

func (s *SQLiteStore) Remove(ctx context.Context, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE symbol = ?`, normalize(symbol))
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, normalize(symbol))
	}
	s.log.Debug().Str("symbol", normalize(symbol)).Msg("favorite removed")
	return nil
}

func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite store")
	return s.db.Close()
}
