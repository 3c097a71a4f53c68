package engine

import (
	"fmt"

	"github.com/mmynk/pokerbank/internal/models"
)

// MaxAmount bounds every chip amount the engine accepts, and a player's
// total buy-in. Sums over a game's players stay far inside int64.
const MaxAmount int64 = 1_000_000_000_000

// checkAmount rejects amounts above MaxAmount. Sign checks are the caller's.
func checkAmount(what string, amount int64) error {
	if amount > MaxAmount {
		return fmt.Errorf("%w: %s %d exceeds limit %d", ErrValidation, what, amount, MaxAmount)
	}
	return nil
}

// appendLedger adds an entry with the next sequence number.
func (tx *txn) appendLedger(entry models.LedgerEntry) {
	entry.ID = tx.newID()
	entry.GameID = tx.g.ID
	entry.Seq = int64(len(tx.g.Ledger)) + 1
	entry.CreatedAt = tx.now
	tx.g.Ledger = append(tx.g.Ledger, entry)
}

// recordApprovedRequest credits an approved or edited request to its player.
// Recording the same request twice is a contract violation.
func (tx *txn) recordApprovedRequest(p *models.Player, r *models.ChipRequest) error {
	for _, entry := range tx.g.Ledger {
		if entry.RequestID == r.ID {
			return fmt.Errorf("%w: request %s already recorded in ledger", ErrInvariant, r.ID)
		}
	}

	amount := r.EffectiveAmount()
	if amount <= 0 {
		return fmt.Errorf("%w: request %s records %d", ErrInvariant, r.ID, amount)
	}
	if err := checkAmount("buy-in total", p.TotalBuyIn()+amount); err != nil {
		return err
	}
	kind := models.LedgerBuyInCash
	switch r.Type {
	case models.BuyInCash:
		p.TotalCashIn += amount
	case models.BuyInCredit:
		kind = models.LedgerBuyInCredit
		p.TotalCreditIn += amount
		p.CreditsOwed += amount
	default:
		return fmt.Errorf("%w: unknown buy-in type %q", ErrInvariant, r.Type)
	}
	p.CurrentChips += amount

	tx.appendLedger(models.LedgerEntry{
		PlayerID:  p.ID,
		Kind:      kind,
		Amount:    amount,
		RequestID: r.ID,
	})
	return nil
}

// recordCheckoutPayout writes a player's final payout and releases the cash
// from the pool. It runs exactly once per player, on DISTRIBUTED -> DONE.
func (tx *txn) recordCheckoutPayout(p *models.Player) error {
	if p.Payout != nil {
		return fmt.Errorf("%w: player %s already paid out", ErrInvariant, p.ID)
	}
	for _, entry := range tx.g.Ledger {
		if entry.PlayerID == p.ID && (entry.Kind == models.LedgerPayoutCash || entry.Kind == models.LedgerPayoutCredit) {
			return fmt.Errorf("%w: payout for %s already in ledger", ErrInvariant, p.ID)
		}
	}
	d := p.Distribution
	if d == nil {
		return fmt.Errorf("%w: player %s has no distribution", ErrInvariant, p.ID)
	}

	pool := &tx.g.Pool
	if d.Cash > pool.ReservedCash || d.Cash > pool.CashPool {
		return fmt.Errorf("%w: payout %d exceeds reserved cash %d", ErrInvariant, d.Cash, pool.ReservedCash)
	}
	pool.CashPool -= d.Cash
	pool.ReservedCash -= d.Cash

	credit := d.CreditTotal()
	p.Payout = &models.Payout{Cash: d.Cash, Credit: credit}

	tx.appendLedger(models.LedgerEntry{PlayerID: p.ID, Kind: models.LedgerPayoutCash, Amount: d.Cash})
	if credit > 0 {
		tx.appendLedger(models.LedgerEntry{PlayerID: p.ID, Kind: models.LedgerPayoutCredit, Amount: credit})
	}
	return nil
}
