package engine

import (
	"context"
	"fmt"

	"github.com/mmynk/pokerbank/internal/models"
)

// Pool returns the bank's settlement counters. Only meaningful while SETTLING.
func (e *Engine) Pool(ctx context.Context, gameID string) (models.Pool, error) {
	g, err := e.Game(ctx, gameID)
	if err != nil {
		return models.Pool{}, err
	}
	if g.Status != models.GameSettling {
		return models.Pool{}, fmt.Errorf("%w: game is %s, want %s", ErrInvalidState, g.Status, models.GameSettling)
	}
	return g.Pool, nil
}

// CheckInvariants re-derives the pool and every player's balances from the
// ledger and compares them with the running totals.
func (e *Engine) CheckInvariants(ctx context.Context, gameID string) error {
	g, err := e.Game(ctx, gameID)
	if err != nil {
		return err
	}
	if err := checkInvariants(g); err != nil {
		e.fault("CheckInvariants", gameID, err)
		return err
	}
	return nil
}

type ledgerTotals struct {
	cashIn, creditIn, repaid, absorbed, payoutCash, payoutCredit int64
}

func sumLedger(g *models.Game) (map[string]*ledgerTotals, error) {
	totals := make(map[string]*ledgerTotals, len(g.Players))
	for _, p := range g.Players {
		totals[p.ID] = &ledgerTotals{}
	}
	recorded := make(map[string]bool)
	for i, entry := range g.Ledger {
		if entry.Seq != int64(i)+1 {
			return nil, fmt.Errorf("ledger entry %s has seq %d at position %d", entry.ID, entry.Seq, i+1)
		}
		if entry.Amount < 0 {
			return nil, fmt.Errorf("ledger entry %s has negative amount", entry.ID)
		}
		t, ok := totals[entry.PlayerID]
		if !ok {
			return nil, fmt.Errorf("ledger entry %s names unknown player %s", entry.ID, entry.PlayerID)
		}
		switch entry.Kind {
		case models.LedgerBuyInCash, models.LedgerBuyInCredit:
			if recorded[entry.RequestID] {
				return nil, fmt.Errorf("request %s recorded twice", entry.RequestID)
			}
			recorded[entry.RequestID] = true
			if entry.Kind == models.LedgerBuyInCash {
				t.cashIn += entry.Amount
			} else {
				t.creditIn += entry.Amount
			}
		case models.LedgerCreditRepaid:
			t.repaid += entry.Amount
		case models.LedgerCreditAbsorbed:
			t.absorbed += entry.Amount
		case models.LedgerPayoutCash:
			t.payoutCash += entry.Amount
		case models.LedgerPayoutCredit:
			t.payoutCredit += entry.Amount
		default:
			return nil, fmt.Errorf("ledger entry %s has unknown kind %q", entry.ID, entry.Kind)
		}
	}

	for _, r := range g.Requests {
		resolved := r.Status == models.RequestApproved || r.Status == models.RequestEdited
		if resolved != recorded[r.ID] {
			return nil, fmt.Errorf("request %s is %s but recorded=%t", r.ID, r.Status, recorded[r.ID])
		}
	}
	return totals, nil
}

// checkInvariants audits a game. Any mismatch is an ErrInvariant.
func checkInvariants(g *models.Game) error {
	totals, err := sumLedger(g)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	var cashIn, cashOut, owed, reserved int64
	for _, p := range g.Players {
		t := totals[p.ID]
		if err := checkPlayer(p, t); err != nil {
			return fmt.Errorf("%w: player %s: %v", ErrInvariant, p.ID, err)
		}
		cashIn += t.cashIn
		cashOut += t.payoutCash
		owed += p.CreditsOwed
		if p.CheckoutStatus == models.CheckoutDistributed {
			reserved += p.Distribution.Cash
		}
	}

	pool := g.Pool
	if g.Status == models.GameOpen {
		if pool != (models.Pool{}) {
			return fmt.Errorf("%w: pool %+v set while game is open", ErrInvariant, pool)
		}
		return nil
	}
	if pool.CashPool != cashIn-cashOut {
		return fmt.Errorf("%w: cash pool %d, ledger says %d in and %d out", ErrInvariant, pool.CashPool, cashIn, cashOut)
	}
	if pool.CreditPool != owed {
		return fmt.Errorf("%w: credit pool %d, players owe %d", ErrInvariant, pool.CreditPool, owed)
	}
	if pool.ReservedCash != reserved {
		return fmt.Errorf("%w: reserved cash %d, distributed players hold %d", ErrInvariant, pool.ReservedCash, reserved)
	}
	if pool.AvailableCash() < 0 {
		return fmt.Errorf("%w: reserved cash %d exceeds pool %d", ErrInvariant, pool.ReservedCash, pool.CashPool)
	}
	return nil
}

func checkPlayer(p *models.Player, t *ledgerTotals) error {
	if p.TotalCashIn != t.cashIn || p.TotalCreditIn != t.creditIn {
		return fmt.Errorf("buy-ins %d/%d, ledger says %d/%d", p.TotalCashIn, p.TotalCreditIn, t.cashIn, t.creditIn)
	}
	if p.CreditsOwed < 0 {
		return fmt.Errorf("negative credits owed %d", p.CreditsOwed)
	}
	if want := t.creditIn - t.repaid - t.absorbed + p.ExcessAbsorbed; p.CreditsOwed != want {
		return fmt.Errorf("credits owed %d, ledger says %d", p.CreditsOwed, want)
	}
	if !p.CheckoutStatus.Valid() {
		return fmt.Errorf("unknown checkout status %q", p.CheckoutStatus)
	}
	if p.CheckoutStatus == models.CheckoutNone {
		return nil
	}

	if f := p.FrozenBuyIn; f == nil || f.CashIn != t.cashIn || f.CreditIn != t.creditIn || f.Total != f.CashIn+f.CreditIn {
		return fmt.Errorf("frozen buy-in %+v does not match ledger", p.FrozenBuyIn)
	}
	if p.CheckoutStatus.AtLeast(models.CheckoutCreditDeducted) {
		if p.ValidatedChipCount == nil || p.ChipsAfterCredit+p.CreditRepaid != *p.ValidatedChipCount {
			return fmt.Errorf("chips after credit %d + repaid %d != validated count", p.ChipsAfterCredit, p.CreditRepaid)
		}
		if p.CreditRepaid != t.repaid {
			return fmt.Errorf("credit repaid %d, ledger says %d", p.CreditRepaid, t.repaid)
		}
	}
	if p.CheckoutStatus.AtLeast(models.CheckoutDistributed) {
		if p.Distribution == nil {
			return fmt.Errorf("%s without a distribution", p.CheckoutStatus)
		}
		if p.Distribution.Total() != p.ChipsAfterCredit {
			return fmt.Errorf("distribution totals %d, payout is %d", p.Distribution.Total(), p.ChipsAfterCredit)
		}
	}
	done := p.CheckoutStatus == models.CheckoutDone
	if done != (p.Payout != nil) {
		return fmt.Errorf("%s with payout recorded=%t", p.CheckoutStatus, p.Payout != nil)
	}
	if done && (p.Payout.Cash != t.payoutCash || p.Payout.Credit != t.payoutCredit) {
		return fmt.Errorf("payout %+v, ledger says %d/%d", *p.Payout, t.payoutCash, t.payoutCredit)
	}
	return nil
}
