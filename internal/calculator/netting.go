package calculator

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrInsufficientPool means cash plus claimable credit cannot cover the payouts.
	ErrInsufficientPool = errors.New("insufficient pool")

	// ErrOverflow means a sum of amounts does not fit in an int64.
	ErrOverflow = errors.New("amount overflow")
)

// add returns a + b for non-negative amounts, or ErrOverflow.
func add(a, b int64) (int64, error) {
	if b > math.MaxInt64-a {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return a + b, nil
}

// Claim is an amount attached to a player: a payout owed to them, or a debt
// they still owe.
type Claim struct {
	PlayerID  string
	JoinOrder int
	Amount    int64
}

// CreditShare is part of a payout satisfied by taking over From's debt.
type CreditShare struct {
	From   string
	Amount int64
}

// Allocation is the computed split of one player's payout.
type Allocation struct {
	PlayerID  string
	JoinOrder int
	Payout    int64
	Cash      int64
	Credit    []CreditShare
}

// CreditTotal sums the credit shares.
func (a Allocation) CreditTotal() int64 {
	var total int64
	for _, c := range a.Credit {
		total += c.Amount
	}
	return total
}

// Net splits every payout between absorbed credit and cash.
//
// Algorithm:
// - Creditors are players owed a payout, debtors are players with outstanding credit
// - Repeatedly match the largest remaining payout with the largest remaining debt
// - Assign min(payout, debt) as a credit share and put back whichever side is left over
// - Whatever payout is left once the debt runs out is paid in cash
//
// Ties go to the lower JoinOrder so the result is deterministic. Each match
// exhausts at least one party, which bounds the number of credit shares by
// one less than the number of parties. Net fails with ErrInsufficientPool if
// cash plus debt cannot cover the payouts; it never under-pays. Sums that do
// not fit in an int64 fail with ErrOverflow.
func Net(payouts, debts []Claim, cash int64) ([]Allocation, error) {
	if cash < 0 {
		return nil, fmt.Errorf("cash cannot be negative: %d", cash)
	}

	var totalPayout, totalDebt int64
	allocs := make(map[string]*Allocation, len(payouts))
	creditors := &claimHeap{}
	for _, p := range payouts {
		if p.Amount < 0 {
			return nil, fmt.Errorf("payout for %s cannot be negative: %d", p.PlayerID, p.Amount)
		}
		if _, dup := allocs[p.PlayerID]; dup {
			return nil, fmt.Errorf("duplicate payout for %s", p.PlayerID)
		}
		total, err := add(totalPayout, p.Amount)
		if err != nil {
			return nil, fmt.Errorf("total payout: %w", err)
		}
		totalPayout = total
		allocs[p.PlayerID] = &Allocation{PlayerID: p.PlayerID, JoinOrder: p.JoinOrder, Payout: p.Amount}
		if p.Amount > 0 {
			*creditors = append(*creditors, p)
		}
	}

	debtors := &claimHeap{}
	for _, d := range debts {
		if d.Amount < 0 {
			return nil, fmt.Errorf("debt for %s cannot be negative: %d", d.PlayerID, d.Amount)
		}
		if a, isCreditor := allocs[d.PlayerID]; isCreditor && a.Payout > 0 && d.Amount > 0 {
			return nil, fmt.Errorf("player %s is both owed a payout and in debt", d.PlayerID)
		}
		total, err := add(totalDebt, d.Amount)
		if err != nil {
			return nil, fmt.Errorf("total debt: %w", err)
		}
		totalDebt = total
		if d.Amount > 0 {
			*debtors = append(*debtors, d)
		}
	}

	cover, err := add(cash, totalDebt)
	if err != nil {
		return nil, fmt.Errorf("cash plus debt: %w", err)
	}
	if totalPayout > cover {
		return nil, fmt.Errorf("%w: payouts %d exceed cash %d plus credit %d",
			ErrInsufficientPool, totalPayout, cash, totalDebt)
	}

	heap.Init(creditors)
	heap.Init(debtors)

	// Greedy algorithm: match largest payouts with largest debts
	for creditors.Len() > 0 && debtors.Len() > 0 {
		c := heap.Pop(creditors).(Claim)
		d := heap.Pop(debtors).(Claim)

		amount := min(c.Amount, d.Amount)
		alloc := allocs[c.PlayerID]
		alloc.Credit = append(alloc.Credit, CreditShare{From: d.PlayerID, Amount: amount})

		c.Amount -= amount
		d.Amount -= amount
		if c.Amount > 0 {
			heap.Push(creditors, c)
		}
		if d.Amount > 0 {
			heap.Push(debtors, d)
		}
	}

	var cashUsed int64
	for creditors.Len() > 0 {
		c := heap.Pop(creditors).(Claim)
		allocs[c.PlayerID].Cash = c.Amount
		used, err := add(cashUsed, c.Amount)
		if err != nil {
			return nil, fmt.Errorf("cash used: %w", err)
		}
		cashUsed = used
	}
	if cashUsed > cash {
		return nil, fmt.Errorf("%w: cash needed %d, available %d", ErrInsufficientPool, cashUsed, cash)
	}

	result := make([]Allocation, 0, len(allocs))
	for _, a := range allocs {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].JoinOrder != result[j].JoinOrder {
			return result[i].JoinOrder < result[j].JoinOrder
		}
		return result[i].PlayerID < result[j].PlayerID
	})
	return result, nil
}

// claimHeap is a max-heap on Amount, lower JoinOrder first on ties.
type claimHeap []Claim

func (h claimHeap) Len() int { return len(h) }

func (h claimHeap) Less(i, j int) bool {
	if h[i].Amount != h[j].Amount {
		return h[i].Amount > h[j].Amount
	}
	if h[i].JoinOrder != h[j].JoinOrder {
		return h[i].JoinOrder < h[j].JoinOrder
	}
	return h[i].PlayerID < h[j].PlayerID
}

func (h claimHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *claimHeap) Push(x any) { *h = append(*h, x.(Claim)) }

func (h *claimHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
