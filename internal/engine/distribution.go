package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/pokerbank/internal/calculator"
	"github.com/mmynk/pokerbank/internal/models"
	"github.com/mmynk/pokerbank/internal/notify"
)

// Suggestion is a computed, uncommitted distribution keyed by player ID.
type Suggestion map[string]*models.Distribution

// awaitingPayout reports whether p has a payout but no distribution yet.
func awaitingPayout(p *models.Player) bool {
	return p.CheckoutStatus == models.CheckoutCreditDeducted ||
		p.CheckoutStatus == models.CheckoutAwaitingDistribution
}

func (tx *txn) pendingDistribution() bool {
	for _, p := range tx.g.SettlingPlayers() {
		if awaitingPayout(p) {
			return true
		}
	}
	return false
}

// requireAllDeducted checks that every settling player is at least
// CREDIT_DEDUCTED, so payouts and debts form a consistent snapshot.
func (tx *txn) requireAllDeducted() error {
	if err := tx.requireStatus(models.GameSettling); err != nil {
		return err
	}
	for _, p := range tx.g.SettlingPlayers() {
		if !p.CheckoutStatus.AtLeast(models.CheckoutCreditDeducted) {
			return fmt.Errorf("%w: player %s is %s", ErrInvalidState, p.ID, p.CheckoutStatus)
		}
	}
	if !tx.pendingDistribution() {
		return fmt.Errorf("%w: no player is awaiting distribution", ErrInvalidState)
	}
	return nil
}

// suggest runs netting over every player still awaiting a payout, against
// the outstanding debt and the cash not yet reserved.
func (tx *txn) suggest() (Suggestion, error) {
	if err := tx.requireAllDeducted(); err != nil {
		return nil, err
	}

	var payouts, debts []calculator.Claim
	for _, p := range tx.g.SettlingPlayers() {
		if awaitingPayout(p) {
			payouts = append(payouts, calculator.Claim{PlayerID: p.ID, JoinOrder: p.JoinOrder, Amount: p.ChipsAfterCredit})
		}
		if p.CreditsOwed > 0 {
			debts = append(debts, calculator.Claim{PlayerID: p.ID, JoinOrder: p.JoinOrder, Amount: p.CreditsOwed})
		}
	}

	allocs, err := calculator.Net(payouts, debts, tx.g.Pool.AvailableCash())
	if errors.Is(err, calculator.ErrInsufficientPool) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	out := make(Suggestion, len(allocs))
	for _, a := range allocs {
		d := &models.Distribution{Cash: a.Cash, Source: models.DistributionSuggested}
		for _, c := range a.Credit {
			d.Credit = append(d.Credit, models.CreditAssignment{From: c.From, Amount: c.Amount})
		}
		out[a.PlayerID] = d
	}
	return out, nil
}

// SuggestDistribution computes a distribution without committing it.
func (e *Engine) SuggestDistribution(ctx context.Context, gameID string) (Suggestion, error) {
	a := e.actor(gameID)
	a.mu.Lock()
	defer a.mu.Unlock()

	g, err := e.load(ctx, a, gameID)
	if err != nil {
		return nil, err
	}
	tx := e.begin(g.Clone())
	s, err := tx.suggest()
	if err != nil {
		e.fault("SuggestDistribution", gameID, err)
		return nil, err
	}
	return s, nil
}

// AcceptDistribution recomputes the suggestion under the game lock and
// commits it.
func (e *Engine) AcceptDistribution(ctx context.Context, gameID, actorID string) (*models.Game, error) {
	return e.mutate(ctx, gameID, "AcceptDistribution", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		s, err := tx.suggest()
		if err != nil {
			return err
		}
		return tx.commitDistribution(s, models.DistributionSuggested)
	})
}

// OverrideDistribution commits a manager-supplied distribution. It must cover
// exactly the players awaiting a payout, each summing to their payout.
func (e *Engine) OverrideDistribution(ctx context.Context, gameID, actorID string, dists map[string]*models.Distribution) (*models.Game, error) {
	return e.mutate(ctx, gameID, "OverrideDistribution", func(tx *txn) error {
		if err := tx.requireManager(actorID); err != nil {
			return err
		}
		if err := tx.requireAllDeducted(); err != nil {
			return err
		}
		if err := tx.validateOverride(dists); err != nil {
			return err
		}
		return tx.commitDistribution(dists, models.DistributionOverride)
	})
}

func (tx *txn) validateOverride(dists map[string]*models.Distribution) error {
	for id, d := range dists {
		p := tx.g.Player(id)
		if p == nil {
			return fmt.Errorf("%w: unknown player %s", ErrValidation, id)
		}
		if d == nil {
			return fmt.Errorf("%w: empty distribution for %s", ErrValidation, id)
		}
		if !awaitingPayout(p) {
			return fmt.Errorf("%w: player %s is %s", ErrValidation, id, statusName(p.CheckoutStatus))
		}
	}

	var cash int64
	for _, p := range tx.g.SettlingPlayers() {
		if !awaitingPayout(p) {
			continue
		}
		d, ok := dists[p.ID]
		if !ok {
			return fmt.Errorf("%w: no distribution for player %s", ErrValidation, p.ID)
		}
		if d.Cash < 0 {
			return fmt.Errorf("%w: negative cash for %s", ErrValidation, p.ID)
		}
		if err := checkAmount("cash", d.Cash); err != nil {
			return err
		}
		total := d.Cash
		for _, c := range d.Credit {
			if c.Amount <= 0 {
				return fmt.Errorf("%w: credit amounts must be positive", ErrValidation)
			}
			if err := checkAmount("credit", c.Amount); err != nil {
				return err
			}
			total += c.Amount
			if err := checkAmount("distribution total", total); err != nil {
				return err
			}
			if c.From == p.ID {
				return fmt.Errorf("%w: player %s cannot absorb their own credit", ErrValidation, p.ID)
			}
			from := tx.g.Player(c.From)
			if from == nil || from.CheckoutStatus == models.CheckoutNone {
				return fmt.Errorf("%w: unknown debtor %s", ErrValidation, c.From)
			}
		}
		if total != p.ChipsAfterCredit {
			return fmt.Errorf("%w: distribution for %s totals %d, payout is %d", ErrValidation, p.ID, total, p.ChipsAfterCredit)
		}
		cash += d.Cash
	}
	if avail := tx.g.Pool.AvailableCash(); cash > avail {
		return fmt.Errorf("%w: distribution pays %d cash, only %d available", ErrValidation, cash, avail)
	}
	return nil
}

// commitDistribution applies distributions in join order. Absorbed credit is
// moved from the debtor to the creditor and cash is reserved until the
// player confirms.
func (tx *txn) commitDistribution(dists map[string]*models.Distribution, source models.DistributionSource) error {
	pool := &tx.g.Pool
	for _, p := range tx.g.SettlingPlayers() {
		d, ok := dists[p.ID]
		if !ok {
			continue
		}
		if !awaitingPayout(p) {
			return fmt.Errorf("%w: player %s is %s", ErrInvalidTransition, p.ID, p.CheckoutStatus)
		}
		if d.Total() != p.ChipsAfterCredit {
			return fmt.Errorf("%w: distribution for %s totals %d, payout is %d", ErrInvariant, p.ID, d.Total(), p.ChipsAfterCredit)
		}

		for _, c := range d.Credit {
			debtor := tx.g.Player(c.From)
			if debtor == nil {
				return fmt.Errorf("%w: unknown debtor %s", ErrInvariant, c.From)
			}
			absorbed := min(c.Amount, debtor.CreditsOwed)
			if excess := c.Amount - absorbed; excess > 0 {
				debtor.ExcessAbsorbed += excess
				slog.Warn("Distribution absorbs more credit than owed",
					"game_id", tx.g.ID,
					"debtor_id", debtor.ID,
					"creditor_id", p.ID,
					"owed", debtor.CreditsOwed,
					"assigned", c.Amount,
				)
			}
			debtor.CreditsOwed -= absorbed
			pool.CreditPool -= absorbed
			tx.appendLedger(models.LedgerEntry{
				PlayerID:       debtor.ID,
				Kind:           models.LedgerCreditAbsorbed,
				Amount:         c.Amount,
				CounterpartyID: p.ID,
			})
		}
		pool.ReservedCash += d.Cash

		committed := d.Clone()
		committed.Source = source
		committed.CommittedAt = tx.now
		p.Distribution = committed

		if p.CheckoutStatus == models.CheckoutCreditDeducted {
			if err := tx.transition(p, models.CheckoutCreditDeducted, models.CheckoutAwaitingDistribution); err != nil {
				return err
			}
		}
		if err := tx.transition(p, models.CheckoutAwaitingDistribution, models.CheckoutDistributed); err != nil {
			return err
		}
		if tx.distributed == nil {
			tx.distributed = make(map[models.DistributionSource]int)
		}
		tx.distributed[source]++
		tx.emit(notify.EventDistributionCommitted, p.ID, "", string(source))
	}
	return nil
}
