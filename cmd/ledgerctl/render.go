package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/mmynk/pokerbank/pkg/api"
)

func names(g *api.Game) map[string]string {
	out := make(map[string]string, len(g.Players))
	for _, p := range g.Players {
		out[p.ID] = p.Name
	}
	return out
}

func optional(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func playerTable(g *api.Game) pterm.TableData {
	data := pterm.TableData{{"Player", "Cash in", "Credit in", "Owed", "Checkout", "Chips", "P/L"}}
	for _, p := range g.Players {
		name := p.Name
		if p.IsManager {
			name += " *"
		}
		if !p.IsActive {
			name += " (inactive)"
		}
		status := p.CheckoutStatus
		if p.InputLocked {
			status += " [locked]"
		}
		data = append(data, []string{
			name,
			strconv.FormatInt(p.TotalCashIn, 10),
			strconv.FormatInt(p.TotalCreditIn, 10),
			strconv.FormatInt(p.CreditsOwed, 10),
			status,
			optional(p.ValidatedChipCount),
			strconv.FormatInt(p.ProfitLoss, 10),
		})
	}
	return data
}

func poolSummary(p *api.Pool) string {
	return fmt.Sprintf("Cash:      %d\nReserved:  %d\nAvailable: %d\nCredit:    %d",
		p.CashPool, p.ReservedCash, p.AvailableCash, p.CreditPool)
}

// distributionTable lists players in join order with their suggested split.
func distributionTable(g *api.Game, dists map[string]*api.Distribution) pterm.TableData {
	who := names(g)
	data := pterm.TableData{{"Player", "Cash", "Absorbs credit from"}}
	for _, p := range g.Players {
		d, ok := dists[p.ID]
		if !ok {
			continue
		}
		var from []string
		for _, c := range d.Credit {
			from = append(from, fmt.Sprintf("%s %d", who[c.From], c.Amount))
		}
		sort.Strings(from)
		data = append(data, []string{p.Name, strconv.FormatInt(d.Cash, 10), strings.Join(from, ", ")})
	}
	return data
}

func ledgerTable(g *api.Game, entries []*api.LedgerEntry) pterm.TableData {
	who := names(g)
	data := pterm.TableData{{"#", "Player", "Kind", "Amount", "Counterparty"}}
	for _, e := range entries {
		data = append(data, []string{
			strconv.FormatInt(e.Seq, 10),
			who[e.PlayerID],
			e.Kind,
			strconv.FormatInt(e.Amount, 10),
			who[e.CounterpartyID],
		})
	}
	return data
}
