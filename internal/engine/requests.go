package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/pokerbank/internal/models"
	"github.com/mmynk/pokerbank/internal/notify"
)

// SubmitRequest creates a PENDING chip request for playerID. The manager may
// submit on a player's behalf.
func (e *Engine) SubmitRequest(ctx context.Context, gameID, actorID, playerID string, typ models.BuyInType, amount int64) (*models.Game, *models.ChipRequest, error) {
	if !typ.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown buy-in type %q", ErrValidation, typ)
	}
	if amount <= 0 {
		return nil, nil, fmt.Errorf("%w: amount must be positive, got %d", ErrValidation, amount)
	}
	if err := checkAmount("amount", amount); err != nil {
		return nil, nil, err
	}

	var req *models.ChipRequest
	g, err := e.mutate(ctx, gameID, "SubmitRequest", func(tx *txn) error {
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
		req = &models.ChipRequest{
			ID:        tx.newID(),
			GameID:    tx.g.ID,
			PlayerID:  p.ID,
			Type:      typ,
			Amount:    amount,
			Status:    models.RequestPending,
			CreatedAt: tx.now,
		}
		tx.g.Requests = append(tx.g.Requests, req)
		tx.emit(notify.EventRequestSubmitted, p.ID, req.ID, string(req.Status))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Chip request submitted",
		"game_id", gameID,
		"request_id", req.ID,
		"player_id", playerID,
		"type", typ,
		"amount", amount,
	)
	return g, req, nil
}

// ApproveRequest resolves a PENDING request and records the requested amount.
func (e *Engine) ApproveRequest(ctx context.Context, gameID, actorID, requestID string) (*models.Game, error) {
	return e.resolve(ctx, gameID, actorID, requestID, models.RequestApproved, 0)
}

// DeclineRequest resolves a PENDING request with no ledger effect.
func (e *Engine) DeclineRequest(ctx context.Context, gameID, actorID, requestID string) (*models.Game, error) {
	return e.resolve(ctx, gameID, actorID, requestID, models.RequestDeclined, 0)
}

// EditAndApproveRequest resolves a PENDING request, recording newAmount
// instead of what was asked.
func (e *Engine) EditAndApproveRequest(ctx context.Context, gameID, actorID, requestID string, newAmount int64) (*models.Game, error) {
	if newAmount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrValidation, newAmount)
	}
	if err := checkAmount("amount", newAmount); err != nil {
		return nil, err
	}
	return e.resolve(ctx, gameID, actorID, requestID, models.RequestEdited, newAmount)
}

// resolve is the compare-and-swap on a request's PENDING status. Under the
// game lock exactly one resolution wins; the rest get ErrAlreadyResolved.
func (e *Engine) resolve(ctx context.Context, gameID, actorID, requestID string, to models.RequestStatus, edited int64) (*models.Game, error) {
	g, err := e.mutate(ctx, gameID, "ResolveRequest", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		r := tx.g.Request(requestID)
		if r == nil {
			return fmt.Errorf("%w: request %s", ErrNotFound, requestID)
		}
		if r.Status != models.RequestPending {
			return fmt.Errorf("%w: request %s is %s", ErrAlreadyResolved, requestID, r.Status)
		}
		if err := tx.requireStatus(models.GameOpen); err != nil {
			return err
		}
		p, err := tx.player(r.PlayerID)
		if err != nil {
			return err
		}

		r.Status = to
		r.ResolvedBy = actorID
		r.ResolvedAt = tx.now
		if to == models.RequestEdited {
			r.EditedAmount = &edited
		}
		if to != models.RequestDeclined {
			if err := tx.recordApprovedRequest(p, r); err != nil {
				return err
			}
		}
		tx.resolutions = append(tx.resolutions, string(to))
		tx.emit(notify.EventRequestResolved, p.ID, r.ID, string(to))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Chip request resolved", "game_id", gameID, "request_id", requestID, "status", to)
	return g, nil
}
