package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/pokerbank/internal/models"
	"github.com/mmynk/pokerbank/internal/notify"
)

// transition moves p from one checkout state to the next. Every caller names
// the exact source state, so no state can be skipped.
func (tx *txn) transition(p *models.Player, from, to models.CheckoutStatus) error {
	if p.CheckoutStatus != from {
		return fmt.Errorf("%w: player %s is %s, want %s", ErrInvalidTransition, p.ID, statusName(p.CheckoutStatus), from)
	}
	p.CheckoutStatus = to
	tx.transitions = append(tx.transitions, to)
	tx.emit(notify.EventCheckoutChanged, p.ID, "", string(to))
	return nil
}

func statusName(s models.CheckoutStatus) string {
	if s == models.CheckoutNone {
		return "NOT_SETTLING"
	}
	return string(s)
}

// settlingPlayer returns a player who takes part in checkout.
func (tx *txn) settlingPlayer(id string) (*models.Player, error) {
	if err := tx.requireStatus(models.GameSettling); err != nil {
		return nil, err
	}
	p, err := tx.player(id)
	if err != nil {
		return nil, err
	}
	if p.CheckoutStatus == models.CheckoutNone {
		return nil, fmt.Errorf("%w: player %s is not settling", ErrInvalidState, id)
	}
	return p, nil
}

// StartSettling moves an OPEN game to SETTLING. Every active player's buy-in
// is frozen and their checkout starts at PENDING.
func (e *Engine) StartSettling(ctx context.Context, gameID, actorID string) (*models.Game, error) {
	g, err := e.mutate(ctx, gameID, "StartSettling", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		return tx.startSettling()
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Game settling",
		"game_id", gameID,
		"cash_pool", g.Pool.CashPool,
		"credit_pool", g.Pool.CreditPool,
	)
	return g, nil
}

func (tx *txn) startSettling() error {
	if err := tx.requireStatus(models.GameOpen); err != nil {
		return err
	}
	for _, r := range tx.g.Requests {
		if r.Status == models.RequestPending {
			return fmt.Errorf("%w: request %s is still pending", ErrInvalidState, r.ID)
		}
	}

	tx.g.Status = models.GameSettling
	tx.g.SettlingAt = tx.now
	tx.g.Pool = models.Pool{}
	for _, p := range tx.g.ActivePlayers() {
		p.FrozenBuyIn = &models.FrozenBuyIn{
			CashIn:   p.TotalCashIn,
			CreditIn: p.TotalCreditIn,
			Total:    p.TotalBuyIn(),
		}
		tx.g.Pool.CashPool += p.TotalCashIn
		tx.g.Pool.CreditPool += p.CreditsOwed
		if err := tx.transition(p, models.CheckoutNone, models.CheckoutPending); err != nil {
			return err
		}
	}
	tx.emit(notify.EventGameSettling, "", "", string(models.GameSettling))
	return nil
}

// ChipCount is a final chip count and the player's preferred cash/credit
// split of it.
type ChipCount struct {
	Chips           int64
	PreferredCash   int64
	PreferredCredit int64
}

func (c ChipCount) validate() error {
	if c.Chips < 0 || c.PreferredCash < 0 || c.PreferredCredit < 0 {
		return fmt.Errorf("%w: chip counts must not be negative", ErrValidation)
	}
	if err := checkAmount("chips", c.Chips); err != nil {
		return err
	}
	if err := checkAmount("cash", c.PreferredCash); err != nil {
		return err
	}
	if err := checkAmount("credit", c.PreferredCredit); err != nil {
		return err
	}
	if c.PreferredCash+c.PreferredCredit != c.Chips {
		return fmt.Errorf("%w: cash %d + credit %d != chips %d", ErrValidation, c.PreferredCash, c.PreferredCredit, c.Chips)
	}
	return nil
}

// SubmitChips records a player's own final chip count. It fails while the
// manager holds the player's input lock.
func (e *Engine) SubmitChips(ctx context.Context, gameID, actorID, playerID string, count ChipCount) (*models.Game, error) {
	if err := count.validate(); err != nil {
		return nil, err
	}
	return e.mutate(ctx, gameID, "SubmitChips", func(tx *txn) error {
		if err := tx.requireSelfOrManager(actorID, playerID); err != nil {
			return err
		}
		p, err := tx.settlingPlayer(playerID)
		if err != nil {
			return err
		}
		if p.InputLocked {
			return fmt.Errorf("%w: manager is entering chips for this player", ErrInvalidState)
		}
		return tx.submitChips(p, count)
	})
}

// ManagerInput is the manager's equivalent of SubmitChips. It ignores the
// input lock, holds it while submitting and leaves it released.
func (e *Engine) ManagerInput(ctx context.Context, gameID, actorID, playerID string, count ChipCount) (*models.Game, error) {
	if err := count.validate(); err != nil {
		return nil, err
	}
	return e.mutate(ctx, gameID, "ManagerInput", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		p, err := tx.settlingPlayer(playerID)
		if err != nil {
			return err
		}
		return tx.managerInput(p, count)
	})
}

func (tx *txn) managerInput(p *models.Player, count ChipCount) error {
	p.InputLocked = true
	if err := tx.submitChips(p, count); err != nil {
		return err
	}
	p.InputLocked = false
	return nil
}

func (tx *txn) submitChips(p *models.Player, count ChipCount) error {
	if err := tx.transition(p, models.CheckoutPending, models.CheckoutSubmitted); err != nil {
		return err
	}
	chips := count.Chips
	p.SubmittedChipCount = &chips
	p.PreferredCash = count.PreferredCash
	p.PreferredCredit = count.PreferredCredit
	return nil
}

// LockInput blocks the player's own chip submission while the manager counts.
func (e *Engine) LockInput(ctx context.Context, gameID, actorID, playerID string) (*models.Game, error) {
	return e.setInputLock(ctx, gameID, actorID, playerID, true)
}

// UnlockInput releases a lock taken with LockInput.
func (e *Engine) UnlockInput(ctx context.Context, gameID, actorID, playerID string) (*models.Game, error) {
	return e.setInputLock(ctx, gameID, actorID, playerID, false)
}

func (e *Engine) setInputLock(ctx context.Context, gameID, actorID, playerID string, locked bool) (*models.Game, error) {
	return e.mutate(ctx, gameID, "SetInputLock", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		p, err := tx.settlingPlayer(playerID)
		if err != nil {
			return err
		}
		if locked && p.CheckoutStatus != models.CheckoutPending {
			return fmt.Errorf("%w: player %s is %s, want %s", ErrInvalidTransition, p.ID, p.CheckoutStatus, models.CheckoutPending)
		}
		if p.InputLocked == locked {
			return nil
		}
		p.InputLocked = locked
		typ := notify.EventInputUnlocked
		if locked {
			typ = notify.EventInputLocked
		}
		tx.emit(typ, p.ID, "", string(p.CheckoutStatus))
		return nil
	})
}

// ValidateChips accepts a submitted count. With automatic deduction on, the
// player's credit is deducted in the same step.
func (e *Engine) ValidateChips(ctx context.Context, gameID, actorID, playerID string) (*models.Game, error) {
	return e.mutate(ctx, gameID, "ValidateChips", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		p, err := tx.settlingPlayer(playerID)
		if err != nil {
			return err
		}
		if err := tx.validateChips(p); err != nil {
			return err
		}
		if tx.autoDeduct {
			return tx.deductCredit(p)
		}
		return nil
	})
}

func (tx *txn) validateChips(p *models.Player) error {
	if err := tx.transition(p, models.CheckoutSubmitted, models.CheckoutValidated); err != nil {
		return err
	}
	if p.SubmittedChipCount == nil {
		return fmt.Errorf("%w: player %s submitted no chip count", ErrInvariant, p.ID)
	}
	validated := *p.SubmittedChipCount
	p.ValidatedChipCount = &validated
	return nil
}

// RejectChips discards a submitted count so the player can resubmit.
func (e *Engine) RejectChips(ctx context.Context, gameID, actorID, playerID string) (*models.Game, error) {
	return e.mutate(ctx, gameID, "RejectChips", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		p, err := tx.settlingPlayer(playerID)
		if err != nil {
			return err
		}
		if err := tx.transition(p, models.CheckoutSubmitted, models.CheckoutPending); err != nil {
			return err
		}
		p.SubmittedChipCount = nil
		p.PreferredCash = 0
		p.PreferredCredit = 0
		return nil
	})
}

// DeductCredit runs credit deduction for a VALIDATED player. Only needed
// when automatic deduction is off.
func (e *Engine) DeductCredit(ctx context.Context, gameID, actorID, playerID string) (*models.Game, error) {
	return e.mutate(ctx, gameID, "DeductCredit", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		p, err := tx.settlingPlayer(playerID)
		if err != nil {
			return err
		}
		return tx.deductCredit(p)
	})
}

// deductCredit repays as much of the player's outstanding credit as their
// chips allow. Repaid credit is retired and leaves the claimable pool.
func (tx *txn) deductCredit(p *models.Player) error {
	if err := tx.transition(p, models.CheckoutValidated, models.CheckoutCreditDeducted); err != nil {
		return err
	}
	if p.ValidatedChipCount == nil || p.FrozenBuyIn == nil {
		return fmt.Errorf("%w: player %s missing validated count or frozen buy-in", ErrInvariant, p.ID)
	}

	validated := *p.ValidatedChipCount
	repaid := min(validated, p.CreditsOwed)
	p.CreditRepaid = repaid
	p.ChipsAfterCredit = validated - repaid
	p.ProfitLoss = p.ChipsAfterCredit - p.FrozenBuyIn.CashIn
	p.CreditsOwed -= repaid
	tx.g.Pool.CreditPool -= repaid
	if repaid > 0 {
		tx.appendLedger(models.LedgerEntry{
			PlayerID: p.ID,
			Kind:     models.LedgerCreditRepaid,
			Amount:   repaid,
		})
	}

	if p.ChipsAfterCredit > tx.g.Pool.AvailableCash() {
		return tx.transition(p, models.CheckoutCreditDeducted, models.CheckoutAwaitingDistribution)
	}
	return nil
}

// ConfirmDistribution completes a DISTRIBUTED player's checkout and records
// their payout.
func (e *Engine) ConfirmDistribution(ctx context.Context, gameID, actorID, playerID string) (*models.Game, error) {
	return e.mutate(ctx, gameID, "ConfirmDistribution", func(tx *txn) error {
		if err := tx.requireSelfOrManager(actorID, playerID); err != nil {
			return err
		}
		p, err := tx.settlingPlayer(playerID)
		if err != nil {
			return err
		}
		return tx.confirm(p)
	})
}

// ConfirmAll confirms every DISTRIBUTED player.
func (e *Engine) ConfirmAll(ctx context.Context, gameID, actorID string) (*models.Game, error) {
	return e.mutate(ctx, gameID, "ConfirmAll", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		if err := tx.requireStatus(models.GameSettling); err != nil {
			return err
		}
		n, err := tx.confirmAll()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: no player is %s", ErrInvalidTransition, models.CheckoutDistributed)
		}
		return nil
	})
}

func (tx *txn) confirmAll() (int, error) {
	n := 0
	for _, p := range tx.g.SettlingPlayers() {
		if p.CheckoutStatus != models.CheckoutDistributed {
			continue
		}
		if err := tx.confirm(p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (tx *txn) confirm(p *models.Player) error {
	if err := tx.transition(p, models.CheckoutDistributed, models.CheckoutDone); err != nil {
		return err
	}
	return tx.recordCheckoutPayout(p)
}

// CloseGame ends a game once every settling player is DONE.
func (e *Engine) CloseGame(ctx context.Context, gameID, actorID string) (*models.Game, error) {
	g, err := e.mutate(ctx, gameID, "CloseGame", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		if err := tx.requireStatus(models.GameSettling); err != nil {
			return err
		}
		for _, p := range tx.g.SettlingPlayers() {
			if p.CheckoutStatus != models.CheckoutDone {
				return fmt.Errorf("%w: player %s is %s", ErrInvalidState, p.ID, p.CheckoutStatus)
			}
		}
		tx.g.Status = models.GameClosed
		tx.g.ClosedAt = tx.now
		tx.emit(notify.EventGameClosed, "", "", string(models.GameClosed))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Game closed", "game_id", gameID, "cash_remaining", g.Pool.CashPool)
	return g, nil
}

// CheckoutAll settles the listed players in one step. Each one is driven
// through the same state machine as the granular operations: manager input,
// validation and credit deduction. The suggested distribution is then
// committed and confirmed. An OPEN game starts settling first.
func (e *Engine) CheckoutAll(ctx context.Context, gameID, actorID string, counts map[string]int64) (*models.Game, error) {
	for id, chips := range counts {
		if chips < 0 {
			return nil, fmt.Errorf("%w: negative chip count for %s", ErrValidation, id)
		}
		if err := checkAmount("chips", chips); err != nil {
			return nil, err
		}
	}

	g, err := e.mutate(ctx, gameID, "CheckoutAll", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		if tx.g.Status == models.GameOpen {
			if err := tx.startSettling(); err != nil {
				return err
			}
		}
		if err := tx.requireStatus(models.GameSettling); err != nil {
			return err
		}
		for id := range counts {
			if _, err := tx.settlingPlayer(id); err != nil {
				return err
			}
		}

		// Join order keeps the ledger sequence deterministic.
		for _, p := range tx.g.SettlingPlayers() {
			chips, listed := counts[p.ID]
			if listed && p.CheckoutStatus == models.CheckoutPending {
				if err := tx.managerInput(p, ChipCount{Chips: chips, PreferredCash: chips}); err != nil {
					return err
				}
			}
			if p.CheckoutStatus == models.CheckoutSubmitted {
				if err := tx.validateChips(p); err != nil {
					return err
				}
			}
			if p.CheckoutStatus == models.CheckoutValidated {
				if err := tx.deductCredit(p); err != nil {
					return err
				}
			}
		}

		if tx.pendingDistribution() {
			dists, err := tx.suggest()
			if err != nil {
				return err
			}
			if err := tx.commitDistribution(dists, models.DistributionSuggested); err != nil {
				return err
			}
		}
		_, err := tx.confirmAll()
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Batch checkout complete", "game_id", gameID, "players", len(counts))
	return g, nil
}
