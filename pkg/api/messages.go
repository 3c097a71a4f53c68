package api

// Game is the full state of one game as seen by its players.
type Game struct {
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Status      string         `json:"status"`
	ManagerID   string         `json:"manager_id"`
	HasPasscode bool           `json:"has_passcode"`
	CreatedAt   int64          `json:"created_at"`
	SettlingAt  int64          `json:"settling_at,omitempty"`
	ClosedAt    int64          `json:"closed_at,omitempty"`
	Players     []*Player      `json:"players"`
	Requests    []*ChipRequest `json:"requests"`
	Pool        *Pool          `json:"pool,omitempty"`
	Version     int64          `json:"version"`
}

// Player mirrors a seat in a game, including settlement fields once SETTLING.
type Player struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	IsManager         bool   `json:"is_manager"`
	JoinOrder         int    `json:"join_order"`
	IsActive          bool   `json:"is_active"`
	CurrentChips      int64  `json:"current_chips"`
	TotalCashIn       int64  `json:"total_cash_in"`
	TotalCreditIn     int64  `json:"total_credit_in"`
	CreditsOwed       int64  `json:"credits_owed"`
	CheckoutRequested bool   `json:"checkout_requested,omitempty"`

	CheckoutStatus     string        `json:"checkout_status,omitempty"`
	FrozenBuyIn        *FrozenBuyIn  `json:"frozen_buy_in,omitempty"`
	SubmittedChipCount *int64        `json:"submitted_chip_count,omitempty"`
	PreferredCash      int64         `json:"preferred_cash,omitempty"`
	PreferredCredit    int64         `json:"preferred_credit,omitempty"`
	ValidatedChipCount *int64        `json:"validated_chip_count,omitempty"`
	ChipsAfterCredit   int64         `json:"chips_after_credit,omitempty"`
	CreditRepaid       int64         `json:"credit_repaid,omitempty"`
	ProfitLoss         int64         `json:"profit_loss,omitempty"`
	Distribution       *Distribution `json:"distribution,omitempty"`
	InputLocked        bool          `json:"input_locked,omitempty"`
	ExcessAbsorbed     int64         `json:"excess_absorbed,omitempty"`
	PayoutCash         *int64        `json:"payout_cash,omitempty"`
	PayoutCredit       *int64        `json:"payout_credit,omitempty"`
}

type FrozenBuyIn struct {
	CashIn   int64 `json:"cash_in"`
	CreditIn int64 `json:"credit_in"`
	Total    int64 `json:"total"`
}

type ChipRequest struct {
	ID           string `json:"id"`
	PlayerID     string `json:"player_id"`
	Type         string `json:"type"`
	Amount       int64  `json:"amount"`
	Status       string `json:"status"`
	EditedAmount *int64 `json:"edited_amount,omitempty"`
	ResolvedBy   string `json:"resolved_by,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	ResolvedAt   int64  `json:"resolved_at,omitempty"`
}

type LedgerEntry struct {
	ID             string `json:"id"`
	Seq            int64  `json:"seq"`
	PlayerID       string `json:"player_id"`
	Kind           string `json:"kind"`
	Amount         int64  `json:"amount"`
	RequestID      string `json:"request_id,omitempty"`
	CounterpartyID string `json:"counterparty_id,omitempty"`
	CreatedAt      int64  `json:"created_at"`
}

type Pool struct {
	CashPool      int64 `json:"cash_pool"`
	CreditPool    int64 `json:"credit_pool"`
	ReservedCash  int64 `json:"reserved_cash"`
	AvailableCash int64 `json:"available_cash"`
}

type CreditAssignment struct {
	From   string `json:"from"`
	Amount int64  `json:"amount"`
}

type Distribution struct {
	Cash        int64              `json:"cash"`
	Credit      []CreditAssignment `json:"credit,omitempty"`
	Source      string             `json:"source,omitempty"`
	CommittedAt int64              `json:"committed_at,omitempty"`
}

// Event is a change notification streamed by WatchGame.
type Event struct {
	Type      string `json:"type"`
	GameID    string `json:"game_id"`
	PlayerID  string `json:"player_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Version   int64  `json:"version"`
	At        int64  `json:"at"`
}

// Requests and responses. The game is always taken from the caller's
// session token, never from the message.

type CreateGameRequest struct {
	ManagerName string `json:"manager_name"`
	Passcode    string `json:"passcode,omitempty"`
}

// SessionResponse answers CreateGame and JoinGame with the caller's token.
type SessionResponse struct {
	Game     *Game  `json:"game"`
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

type JoinGameRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Passcode string `json:"passcode,omitempty"`
}

// Empty is used by procedures that take no arguments.
type Empty struct{}

type GameResponse struct {
	Game *Game `json:"game"`
}

type PlayerRequest struct {
	PlayerID string `json:"player_id"`
}

type ResolveRequest struct {
	RequestID string `json:"request_id"`
	// Amount is only read by EditApproveRequest.
	Amount int64 `json:"amount,omitempty"`
}

type SubmitRequestRequest struct {
	// PlayerID defaults to the caller.
	PlayerID string `json:"player_id,omitempty"`
	Type     string `json:"type"`
	Amount   int64  `json:"amount"`
}

type SubmitRequestResponse struct {
	Request *ChipRequest `json:"request"`
	Game    *Game        `json:"game"`
}

type ListRequestsRequest struct {
	// Status filters by request status. Empty lists all.
	Status string `json:"status,omitempty"`
}

type ListRequestsResponse struct {
	Requests []*ChipRequest `json:"requests"`
}

type LedgerResponse struct {
	Entries []*LedgerEntry `json:"entries"`
}

type ChipCountRequest struct {
	// PlayerID defaults to the caller.
	PlayerID        string `json:"player_id,omitempty"`
	ChipCount       int64  `json:"chip_count"`
	PreferredCash   int64  `json:"preferred_cash"`
	PreferredCredit int64  `json:"preferred_credit"`
}

type PoolResponse struct {
	Pool *Pool `json:"pool"`
}

type DistributionsResponse struct {
	Distributions map[string]*Distribution `json:"distributions"`
}

type OverrideDistributionRequest struct {
	Distributions map[string]*Distribution `json:"distributions"`
}

type CheckoutAllRequest struct {
	ChipCounts map[string]int64 `json:"chip_counts"`
}
