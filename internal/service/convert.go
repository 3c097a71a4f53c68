package service

import (
	"github.com/mmynk/pokerbank/internal/models"
	"github.com/mmynk/pokerbank/internal/notify"
	"github.com/mmynk/pokerbank/pkg/api"
)

func toAPIGame(g *models.Game) *api.Game {
	out := &api.Game{
		ID:          g.ID,
		Code:        g.Code,
		Status:      string(g.Status),
		ManagerID:   g.ManagerID,
		HasPasscode: g.PasscodeHash != "",
		CreatedAt:   g.CreatedAt,
		SettlingAt:  g.SettlingAt,
		ClosedAt:    g.ClosedAt,
		Players:     make([]*api.Player, len(g.Players)),
		Requests:    toAPIRequests(g.Requests),
		Version:     g.Version,
	}
	for i, p := range g.Players {
		out.Players[i] = toAPIPlayer(p)
	}
	if g.Status != models.GameOpen {
		out.Pool = toAPIPool(g.Pool)
	}
	return out
}

func toAPIPlayer(p *models.Player) *api.Player {
	out := &api.Player{
		ID:                 p.ID,
		Name:               p.Name,
		IsManager:          p.IsManager,
		JoinOrder:          p.JoinOrder,
		IsActive:           p.IsActive,
		CurrentChips:       p.CurrentChips,
		TotalCashIn:        p.TotalCashIn,
		TotalCreditIn:      p.TotalCreditIn,
		CreditsOwed:        p.CreditsOwed,
		CheckoutRequested:  p.CheckoutRequested,
		CheckoutStatus:     string(p.CheckoutStatus),
		SubmittedChipCount: p.SubmittedChipCount,
		PreferredCash:      p.PreferredCash,
		PreferredCredit:    p.PreferredCredit,
		ValidatedChipCount: p.ValidatedChipCount,
		ChipsAfterCredit:   p.ChipsAfterCredit,
		CreditRepaid:       p.CreditRepaid,
		ProfitLoss:         p.ProfitLoss,
		InputLocked:        p.InputLocked,
		ExcessAbsorbed:     p.ExcessAbsorbed,
	}
	if f := p.FrozenBuyIn; f != nil {
		out.FrozenBuyIn = &api.FrozenBuyIn{CashIn: f.CashIn, CreditIn: f.CreditIn, Total: f.Total}
	}
	if p.Distribution != nil {
		out.Distribution = toAPIDistribution(p.Distribution)
	}
	if p.Payout != nil {
		cash, credit := p.Payout.Cash, p.Payout.Credit
		out.PayoutCash = &cash
		out.PayoutCredit = &credit
	}
	return out
}

func toAPIRequests(reqs []*models.ChipRequest) []*api.ChipRequest {
	out := make([]*api.ChipRequest, len(reqs))
	for i, r := range reqs {
		out[i] = toAPIRequest(r)
	}
	return out
}

func toAPIRequest(r *models.ChipRequest) *api.ChipRequest {
	return &api.ChipRequest{
		ID:           r.ID,
		PlayerID:     r.PlayerID,
		Type:         string(r.Type),
		Amount:       r.Amount,
		Status:       string(r.Status),
		EditedAmount: r.EditedAmount,
		ResolvedBy:   r.ResolvedBy,
		CreatedAt:    r.CreatedAt,
		ResolvedAt:   r.ResolvedAt,
	}
}

func toAPILedger(entries []models.LedgerEntry) []*api.LedgerEntry {
	out := make([]*api.LedgerEntry, len(entries))
	for i, e := range entries {
		out[i] = &api.LedgerEntry{
			ID:             e.ID,
			Seq:            e.Seq,
			PlayerID:       e.PlayerID,
			Kind:           string(e.Kind),
			Amount:         e.Amount,
			RequestID:      e.RequestID,
			CounterpartyID: e.CounterpartyID,
			CreatedAt:      e.CreatedAt,
		}
	}
	return out
}

func toAPIPool(p models.Pool) *api.Pool {
	return &api.Pool{
		CashPool:      p.CashPool,
		CreditPool:    p.CreditPool,
		ReservedCash:  p.ReservedCash,
		AvailableCash: p.AvailableCash(),
	}
}

func toAPIDistribution(d *models.Distribution) *api.Distribution {
	out := &api.Distribution{
		Cash:        d.Cash,
		Source:      string(d.Source),
		CommittedAt: d.CommittedAt,
	}
	for _, c := range d.Credit {
		out.Credit = append(out.Credit, api.CreditAssignment{From: c.From, Amount: c.Amount})
	}
	return out
}

func fromAPIDistribution(d *api.Distribution) *models.Distribution {
	if d == nil {
		return nil
	}
	out := &models.Distribution{Cash: d.Cash}
	for _, c := range d.Credit {
		out.Credit = append(out.Credit, models.CreditAssignment{From: c.From, Amount: c.Amount})
	}
	return out
}

func toAPIEvent(e notify.Event) *api.Event {
	return &api.Event{
		Type:      string(e.Type),
		GameID:    e.GameID,
		PlayerID:  e.PlayerID,
		RequestID: e.RequestID,
		Status:    e.Status,
		Version:   e.Version,
		At:        e.At,
	}
}
