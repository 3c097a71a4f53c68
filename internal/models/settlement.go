package models

// DistributionSource records how a distribution was produced.
type DistributionSource string

const (
	DistributionSuggested DistributionSource = "SUGGESTED"
	DistributionOverride  DistributionSource = "OVERRIDE"
)

// CreditAssignment says that part of a payout is satisfied by taking over
// the outstanding debt of player From.
type CreditAssignment struct {
	From   string
	Amount int64
}

// Distribution is how one player's payout is split between cash from the
// pool and absorbed credit. Cash + CreditTotal() equals the payout.
type Distribution struct {
	Cash   int64
	Credit []CreditAssignment

	Source      DistributionSource
	CommittedAt int64
}

// CreditTotal sums the absorbed credit.
func (d *Distribution) CreditTotal() int64 {
	var total int64
	for _, c := range d.Credit {
		total += c.Amount
	}
	return total
}

// Total is cash plus absorbed credit.
func (d *Distribution) Total() int64 {
	return d.Cash + d.CreditTotal()
}

// Clone returns a deep copy of the distribution.
func (d *Distribution) Clone() *Distribution {
	c := *d
	c.Credit = append([]CreditAssignment(nil), d.Credit...)
	return &c
}
