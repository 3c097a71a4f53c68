package models

// GameStatus is the lifecycle phase of a game.
type GameStatus string

const (
	GameOpen     GameStatus = "OPEN"
	GameSettling GameStatus = "SETTLING"
	GameClosed   GameStatus = "CLOSED"
)

// Game is one poker night run by a single manager.
type Game struct {
	// ID is the unique identifier for the game (UUID format).
	ID string

	// Code is the 6-character join code shown to players.
	Code string

	Status GameStatus

	// ManagerID is the player ID of the manager. The manager is also a Player.
	ManagerID string

	// PasscodeHash is the bcrypt hash of the optional join passcode.
	// Empty means anyone with the code may join.
	PasscodeHash string

	// Unix timestamps. SettlingAt and ClosedAt are zero until reached.
	CreatedAt  int64
	SettlingAt int64
	ClosedAt   int64

	// Players in join order.
	Players []*Player

	// Requests in submission order.
	Requests []*ChipRequest

	// Ledger is append-only.
	Ledger []LedgerEntry

	// Pool is meaningful only once the game is SETTLING.
	Pool Pool

	// Version increments on every committed mutation.
	Version int64
}

// Pool is the bank's settlement state.
type Pool struct {
	// CashPool is cash bought in and not yet paid back out.
	CashPool int64

	// CreditPool is the outstanding debt still claimable by players whose
	// payout the cash cannot cover. It always equals the sum of credits_owed.
	CreditPool int64

	// ReservedCash is cash promised by committed distributions that have not
	// been confirmed yet.
	ReservedCash int64
}

// AvailableCash is the cash a new distribution may still draw on.
func (p Pool) AvailableCash() int64 {
	return p.CashPool - p.ReservedCash
}

// Player returns the player with the given ID, or nil.
func (g *Game) Player(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Request returns the chip request with the given ID, or nil.
func (g *Game) Request(id string) *ChipRequest {
	for _, r := range g.Requests {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// ActivePlayers returns active players in join order.
func (g *Game) ActivePlayers() []*Player {
	active := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active
}

// SettlingPlayers returns the players taking part in checkout, in join order.
func (g *Game) SettlingPlayers() []*Player {
	var out []*Player
	for _, p := range g.Players {
		if p.CheckoutStatus != CheckoutNone {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy of the game.
func (g *Game) Clone() *Game {
	c := *g
	c.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		c.Players[i] = p.Clone()
	}
	c.Requests = make([]*ChipRequest, len(g.Requests))
	for i, r := range g.Requests {
		c.Requests[i] = r.Clone()
	}
	c.Ledger = append([]LedgerEntry(nil), g.Ledger...)
	return &c
}
