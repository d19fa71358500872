package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"PrimeTerminal/internal/model"
)

// FileStore keeps favorites in a JSON file, rewritten on every change.
type FileStore struct {
	mu       sync.Mutex
	filePath string
	favs     []model.Favorite
	log      zerolog.Logger
}

type fileState struct {
	Favorites []model.Favorite `json:"favorites"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewFileStore loads the favorites file, starting empty if it does not exist.
func NewFileStore(filePath string, log zerolog.Logger) (*FileStore, error) {
	favs, err := loadFavorites(filePath)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	return &FileStore{
		filePath: filePath,
		favs:     favs,
		log:      log.With().Str("component", "store").Logger(),
	}, nil
}

func loadFavorites(filePath string) ([]model.Favorite, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Favorite{}, nil
		}
		return nil, err
	}
	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Favorites == nil {
		state.Favorites = []model.Favorite{}
	}
	return state.Favorites, nil
}

// save writes atomically through a temp file. Callers hold mu.
func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileState{Favorites: s.favs, UpdatedAt: time.Now()}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

func (s *FileStore) indexOf(symbol string) int {
	for i, f := range s.favs {
		if f.Symbol == symbol {
			return i
		}
	}
	return -1
}

func (s *FileStore) List(_ context.Context) ([]model.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Favorite, len(s.favs))
	copy(out, s.favs)
	return out, nil
}

func (s *FileStore) Get(_ context.Context, symbol string) (model.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(normalize(symbol)); i >= 0 {
		return s.favs[i], nil
	}
	return model.Favorite{}, fmt.Errorf("%w: %s", ErrNotFound, normalize(symbol))
}

func (s *FileStore) Add(_ context.Context, fav model.Favorite) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fav.Symbol = normalize(fav.Symbol)
	if fav.Symbol == "" {
		return false, errors.New("empty symbol")
	}
	if s.indexOf(fav.Symbol) >= 0 {
		return false, nil
	}
	if fav.AddedAt.IsZero() {
		fav.AddedAt = time.Now().UTC()
	}
	s.favs = append(s.favs, fav)
	if err := s.save(); err != nil {
		s.favs = s.favs[:len(s.favs)-1]
		return false, fmt.Errorf("save favorites: %w", err)
	}
	s.log.Debug().Str("symbol", fav.Symbol).Msg("favorite added")
	return true, nil
}

func (s *FileStore) Remove(_ context.Context, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol = normalize(symbol)
	i := s.indexOf(symbol)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	prev := s.favs
	s.favs = append(append([]model.Favorite{}, s.favs[:i]...), s.favs[i+1:]...)
	if err := s.save(); err != nil {
		s.favs = prev
		return fmt.Errorf("save favorites: %w", err)
	}
	s.log.Debug().Str("symbol", symbol).Msg("favorite removed")
	return nil
}

func (s *FileStore) Close() error { return nil }
