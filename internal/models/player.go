package models

// CheckoutStatus is a player's position in the checkout state machine.
type CheckoutStatus string

const (
	// CheckoutNone means the game has not started settling for this player.
	CheckoutNone                 CheckoutStatus = ""
	CheckoutPending              CheckoutStatus = "PENDING"
	CheckoutSubmitted            CheckoutStatus = "SUBMITTED"
	CheckoutValidated            CheckoutStatus = "VALIDATED"
	CheckoutCreditDeducted       CheckoutStatus = "CREDIT_DEDUCTED"
	CheckoutAwaitingDistribution CheckoutStatus = "AWAITING_DISTRIBUTION"
	CheckoutDistributed          CheckoutStatus = "DISTRIBUTED"
	CheckoutDone                 CheckoutStatus = "DONE"
)

var checkoutRank = map[CheckoutStatus]int{
	CheckoutNone:                 0,
	CheckoutPending:              1,
	CheckoutSubmitted:            2,
	CheckoutValidated:            3,
	CheckoutCreditDeducted:       4,
	CheckoutAwaitingDistribution: 5,
	CheckoutDistributed:          6,
	CheckoutDone:                 7,
}

// Rank orders checkout states. Higher is further along.
func (s CheckoutStatus) Rank() int {
	return checkoutRank[s]
}

// AtLeast reports whether s is at or beyond other.
func (s CheckoutStatus) AtLeast(other CheckoutStatus) bool {
	return s.Rank() >= other.Rank()
}

// Valid reports whether s is a known checkout state.
func (s CheckoutStatus) Valid() bool {
	_, ok := checkoutRank[s]
	return ok
}

// FrozenBuyIn is the snapshot of a player's buy-ins taken when settling
// starts. All profit/loss arithmetic is anchored on it.
type FrozenBuyIn struct {
	CashIn   int64
	CreditIn int64
	Total    int64
}

// Payout is what a player was finally paid when their checkout completed.
type Payout struct {
	Cash   int64
	Credit int64
}

// Player is a participant in a game. The manager is a player too.
type Player struct {
	// ID is the unique identifier for the player (UUID format).
	ID     string
	GameID string
	Name   string

	IsManager bool

	// JoinOrder is 0 for the manager and increases with every join. It breaks
	// ties in netting.
	JoinOrder int
	JoinedAt  int64
	IsActive  bool

	// CurrentChips is only meaningful while the game is OPEN.
	CurrentChips int64

	TotalCashIn   int64
	TotalCreditIn int64

	// CreditsOwed is the outstanding credit balance. Never negative.
	CreditsOwed int64

	// CheckoutRequested records a mid-game intent to leave.
	CheckoutRequested bool

	// Settlement-scoped fields, populated once the game is SETTLING.
	CheckoutStatus     CheckoutStatus
	FrozenBuyIn        *FrozenBuyIn
	SubmittedChipCount *int64
	PreferredCash      int64
	PreferredCredit    int64
	ValidatedChipCount *int64
	ChipsAfterCredit   int64
	CreditRepaid       int64
	ProfitLoss         int64
	Distribution       *Distribution
	InputLocked        bool

	// ExcessAbsorbed is credit assigned away from this player by a manager
	// override beyond what the player still owed.
	ExcessAbsorbed int64

	// Payout is set when the player reaches DONE.
	Payout *Payout
}

// TotalBuyIn is cash plus credit bought in so far.
func (p *Player) TotalBuyIn() int64 {
	return p.TotalCashIn + p.TotalCreditIn
}

// Clone returns a deep copy of the player.
func (p *Player) Clone() *Player {
	c := *p
	if p.FrozenBuyIn != nil {
		f := *p.FrozenBuyIn
		c.FrozenBuyIn = &f
	}
	if p.SubmittedChipCount != nil {
		v := *p.SubmittedChipCount
		c.SubmittedChipCount = &v
	}
	if p.ValidatedChipCount != nil {
		v := *p.ValidatedChipCount
		c.ValidatedChipCount = &v
	}
	if p.Distribution != nil {
		c.Distribution = p.Distribution.Clone()
	}
	if p.Payout != nil {
		v := *p.Payout
		c.Payout = &v
	}
	return &c
}
