// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/pokerbank/internal/models"
	"github.com/mmynk/pokerbank/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; the engine already serializes per game.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveGame upserts the game, its players, requests and new ledger entries in
// a single transaction.
func (s *SQLiteStore) SaveGame(ctx context.Context, game *models.Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (id, code, status, manager_id, passcode_hash, created_at, settling_at, closed_at,
		                   cash_pool, credit_pool, reserved_cash, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			manager_id = excluded.manager_id,
			settling_at = excluded.settling_at,
			closed_at = excluded.closed_at,
			cash_pool = excluded.cash_pool,
			credit_pool = excluded.credit_pool,
			reserved_cash = excluded.reserved_cash,
			version = excluded.version`,
		game.ID, game.Code, string(game.Status), game.ManagerID, game.PasscodeHash,
		game.CreatedAt, game.SettlingAt, game.ClosedAt,
		game.Pool.CashPool, game.Pool.CreditPool, game.Pool.ReservedCash, game.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	for _, p := range game.Players {
		if err := upsertPlayer(ctx, tx, p); err != nil {
			return err
		}
	}

	for i, r := range game.Requests {
		if err := upsertRequest(ctx, tx, r, i); err != nil {
			return err
		}
	}

	for _, e := range game.Ledger {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_entries (id, game_id, player_id, kind, amount, request_id, counterparty_id, seq, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`,
			e.ID, e.GameID, e.PlayerID, string(e.Kind), e.Amount, e.RequestID, e.CounterpartyID, e.Seq, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert ledger entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGame retrieves a game by ID with all players, requests and ledger entries.
func (s *SQLiteStore) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	return s.loadGame(ctx, "SELECT "+gameColumns+" FROM games WHERE id = ?", gameID)
}

// GetGameByCode retrieves a game by its join code.
func (s *SQLiteStore) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	return s.loadGame(ctx, "SELECT "+gameColumns+" FROM games WHERE code = ?", code)
}

// CodeExists checks if a join code is taken.
func (s *SQLiteStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM games WHERE code = ?", code).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check code: %w", err)
	}
	return true, nil
}

const gameColumns = `id, code, status, manager_id, passcode_hash, created_at, settling_at, closed_at,
	cash_pool, credit_pool, reserved_cash, version`

func (s *SQLiteStore) loadGame(ctx context.Context, query string, arg string) (*models.Game, error) {
	game := &models.Game{}
	var status string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&game.ID, &game.Code, &status, &game.ManagerID, &game.PasscodeHash,
		&game.CreatedAt, &game.SettlingAt, &game.ClosedAt,
		&game.Pool.CashPool, &game.Pool.CreditPool, &game.Pool.ReservedCash, &game.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", arg, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	game.Status = models.GameStatus(status)

	if game.Players, err = s.listPlayers(ctx, game.ID); err != nil {
		return nil, err
	}
	if game.Requests, err = s.listRequests(ctx, game.ID); err != nil {
		return nil, err
	}
	if game.Ledger, err = s.listLedger(ctx, game.ID); err != nil {
		return nil, err
	}
	return game, nil
}

// nullInt converts an optional amount to a SQL parameter.
func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// intPtr converts a nullable column back to an optional amount.
func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
