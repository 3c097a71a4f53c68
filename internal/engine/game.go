package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/pokerbank/internal/models"
	"github.com/mmynk/pokerbank/internal/notify"
)

// MaxNameLength bounds player display names.
const MaxNameLength = 32

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name required", ErrValidation)
	}
	if len([]rune(name)) > MaxNameLength {
		return "", fmt.Errorf("%w: name longer than %d characters", ErrValidation, MaxNameLength)
	}
	return name, nil
}

// CreateGame opens a new game with managerName as its manager and first player.
// passcodeHash may be empty.
func (e *Engine) CreateGame(ctx context.Context, managerName, passcodeHash string) (*models.Game, error) {
	name, err := cleanName(managerName)
	if err != nil {
		return nil, err
	}
	code, err := e.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	now := e.now().Unix()
	game := &models.Game{
		ID:           e.newID(),
		Code:         code,
		Status:       models.GameOpen,
		PasscodeHash: passcodeHash,
		CreatedAt:    now,
		Version:      1,
	}
	manager := &models.Player{
		ID:        e.newID(),
		GameID:    game.ID,
		Name:      name,
		IsManager: true,
		JoinOrder: 0,
		JoinedAt:  now,
		IsActive:  true,
	}
	game.ManagerID = manager.ID
	game.Players = []*models.Player{manager}

	a := e.actor(game.ID)
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := e.store.SaveGame(ctx, game); err != nil {
		e.evict(game.ID)
		return nil, fmt.Errorf("failed to persist game: %w", err)
	}
	a.game = game

	slog.Info("Game created", "game_id", game.ID, "code", game.Code, "manager_id", manager.ID)
	return game, nil
}

// JoinGame adds a player to an OPEN game. Names are unique per game,
// ignoring case.
func (e *Engine) JoinGame(ctx context.Context, gameID, name string) (*models.Game, *models.Player, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, nil, err
	}

	var joined *models.Player
	g, err := e.mutate(ctx, gameID, "JoinGame", func(tx *txn) error {
		if err := tx.requireStatus(models.GameOpen); err != nil {
			return err
		}
		for _, p := range tx.g.Players {
			if strings.EqualFold(p.Name, name) {
				return fmt.Errorf("%w: name %q already taken", ErrValidation, name)
			}
		}
		joined = &models.Player{
			ID:        tx.newID(),
			GameID:    tx.g.ID,
			Name:      name,
			JoinOrder: len(tx.g.Players),
			JoinedAt:  tx.now,
			IsActive:  true,
		}
		tx.g.Players = append(tx.g.Players, joined)
		tx.emit(notify.EventPlayerJoined, joined.ID, "", "")
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Player joined", "game_id", gameID, "player_id", joined.ID, "name", name)
	return g, joined, nil
}

// DeactivatePlayer removes a player who never bought in from the game.
// Inactive players are skipped when settlement starts.
func (e *Engine) DeactivatePlayer(ctx context.Context, gameID, actorID, playerID string) (*models.Game, error) {
	return e.mutate(ctx, gameID, "DeactivatePlayer", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		if err := tx.requireStatus(models.GameOpen); err != nil {
			return err
		}
		p, err := tx.player(playerID)
		if err != nil {
			return err
		}
		if p.IsManager {
			return fmt.Errorf("%w: the manager cannot be deactivated", ErrInvalidState)
		}
		if !p.IsActive {
			return fmt.Errorf("%w: player already inactive", ErrInvalidState)
		}
		if p.TotalBuyIn() > 0 {
			return fmt.Errorf("%w: player has bought in %d", ErrInvalidState, p.TotalBuyIn())
		}
		for _, r := range tx.g.Requests {
			if r.PlayerID == playerID && r.Status == models.RequestPending {
				return fmt.Errorf("%w: player has a pending request", ErrInvalidState)
			}
		}
		p.IsActive = false
		tx.emit(notify.EventPlayerDeactivated, p.ID, "", "")
		return nil
	})
}

// RequestCheckout records that a player wants to leave before settlement.
// It only notifies; checkout states exist once the game is SETTLING.
func (e *Engine) RequestCheckout(ctx context.Context, gameID, actorID, playerID string) (*models.Game, error) {
	return e.mutate(ctx, gameID, "RequestCheckout", func(tx *txn) error {
		if err := tx.requireSelfOrManager(actorID, playerID); err != nil {
			return err
		}
		if err := tx.requireStatus(models.GameOpen); err != nil {
			return err
		}
		p, err := tx.player(playerID)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return fmt.Errorf("%w: player is inactive", ErrInvalidState)
		}
		if !p.CheckoutRequested {
			p.CheckoutRequested = true
			tx.emit(notify.EventCheckoutRequested, p.ID, "", "")
		}
		return nil
	})
}
