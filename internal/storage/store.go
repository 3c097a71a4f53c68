// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/pokerbank/internal/models"
)

// ErrNotFound is returned when a game does not exist.
var ErrNotFound = errors.New("not found")

// Store persists whole game aggregates.
// This abstraction allows swapping storage backends (SQLite, memory, etc.)
// without changing the engine.
type Store interface {
	// SaveGame inserts or replaces the game and everything it owns in one
	// atomic write. Ledger entries already stored are never rewritten.
	SaveGame(ctx context.Context, game *models.Game) error

	// GetGame retrieves a game by its ID.
	// Returns ErrNotFound if the game does not exist.
	GetGame(ctx context.Context, gameID string) (*models.Game, error)

	// GetGameByCode retrieves a game by its join code.
	// Returns ErrNotFound if no game uses the code.
	GetGameByCode(ctx context.Context, code string) (*models.Game, error)

	// CodeExists reports whether a join code is already taken.
	CodeExists(ctx context.Context, code string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
