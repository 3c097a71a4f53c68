// Package memory provides an in-process implementation of storage.Store.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mmynk/pokerbank/internal/models"
	"github.com/mmynk/pokerbank/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps deep copies of games in maps.
type Store struct {
	games  map[string]*models.Game
	byCode map[string]string
	mu     sync.RWMutex
}

// New creates an empty memory store.
func New() *Store {
	return &Store{
		games:  make(map[string]*models.Game),
		byCode: make(map[string]string),
	}
}

// SaveGame stores a copy of the game.
func (s *Store) SaveGame(ctx context.Context, game *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, taken := s.byCode[game.Code]; taken && id != game.ID {
		return fmt.Errorf("join code %s already in use", game.Code)
	}
	s.games[game.ID] = game.Clone()
	s.byCode[game.Code] = game.ID
	return nil
}

// GetGame returns a copy of the stored game.
func (s *Store) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, storage.ErrNotFound)
	}
	return game.Clone(), nil
}

// GetGameByCode returns a copy of the game using the join code.
func (s *Store) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	s.mu.RLock()
	id, ok := s.byCode[code]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("game code %s: %w", code, storage.ErrNotFound)
	}
	return s.GetGame(ctx, id)
}

// CodeExists checks if a join code is taken.
func (s *Store) CodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.byCode[code]
	return exists, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
