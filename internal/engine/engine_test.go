package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/pokerbank/internal/models"
	"github.com/mmynk/pokerbank/internal/notify"
	"github.com/mmynk/pokerbank/internal/storage"
	"github.com/mmynk/pokerbank/internal/storage/memory"
	"github.com/mmynk/pokerbank/internal/storage/sqlite"
)

// flakyStore fails SaveGame while fail is set.
type flakyStore struct {
	storage.Store
	mu   sync.Mutex
	fail bool
}

func (s *flakyStore) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

func (s *flakyStore) SaveGame(ctx context.Context, g *models.Game) error {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return s.Store.SaveGame(ctx, g)
}

func testOptions(store storage.Store) Options {
	var mu sync.Mutex
	n := 0
	return Options{
		Store: store,
		Now:   func() time.Time { return time.Unix(1700000000, 0) },
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%03d", n)
		},
		AutoDeductCredit: true,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(testOptions(memory.New()))
}

// table is a game with a manager and named players.
type table struct {
	t       *testing.T
	e       *Engine
	gameID  string
	manager string
	players map[string]string
}

func newTable(t *testing.T, e *Engine, names ...string) *table {
	t.Helper()
	ctx := context.Background()
	g, err := e.CreateGame(ctx, "Manager", "")
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	tb := &table{t: t, e: e, gameID: g.ID, manager: g.ManagerID, players: map[string]string{}}
	for _, name := range names {
		_, p, err := e.JoinGame(ctx, g.ID, name)
		if err != nil {
			t.Fatalf("JoinGame(%s) failed: %v", name, err)
		}
		tb.players[name] = p.ID
	}
	return tb
}

func (tb *table) id(name string) string {
	if name == "Manager" {
		return tb.manager
	}
	id, ok := tb.players[name]
	if !ok {
		tb.t.Fatalf("unknown player %s", name)
	}
	return id
}

func (tb *table) buyIn(name string, typ models.BuyInType, amount int64) {
	tb.t.Helper()
	ctx := context.Background()
	_, req, err := tb.e.SubmitRequest(ctx, tb.gameID, tb.id(name), tb.id(name), typ, amount)
	if err != nil {
		tb.t.Fatalf("SubmitRequest failed: %v", err)
	}
	if _, err := tb.e.ApproveRequest(ctx, tb.gameID, tb.manager, req.ID); err != nil {
		tb.t.Fatalf("ApproveRequest failed: %v", err)
	}
}

func (tb *table) settle() {
	tb.t.Helper()
	if _, err := tb.e.StartSettling(context.Background(), tb.gameID, tb.manager); err != nil {
		tb.t.Fatalf("StartSettling failed: %v", err)
	}
}

// cashOut submits an all-cash chip count and validates it.
func (tb *table) cashOut(name string, chips int64) {
	tb.t.Helper()
	ctx := context.Background()
	count := ChipCount{Chips: chips, PreferredCash: chips}
	if _, err := tb.e.SubmitChips(ctx, tb.gameID, tb.id(name), tb.id(name), count); err != nil {
		tb.t.Fatalf("SubmitChips(%s) failed: %v", name, err)
	}
	if _, err := tb.e.ValidateChips(ctx, tb.gameID, tb.manager, tb.id(name)); err != nil {
		tb.t.Fatalf("ValidateChips(%s) failed: %v", name, err)
	}
}

func (tb *table) player(name string) *models.Player {
	tb.t.Helper()
	g, err := tb.e.Game(context.Background(), tb.gameID)
	if err != nil {
		tb.t.Fatalf("Game failed: %v", err)
	}
	return g.Player(tb.id(name))
}

func (tb *table) game() *models.Game {
	tb.t.Helper()
	g, err := tb.e.Game(context.Background(), tb.gameID)
	if err != nil {
		tb.t.Fatalf("Game failed: %v", err)
	}
	return g
}

func (tb *table) audit() {
	tb.t.Helper()
	if err := tb.e.CheckInvariants(context.Background(), tb.gameID); err != nil {
		tb.t.Fatalf("CheckInvariants failed: %v", err)
	}
}

func ledgerKinds(g *models.Game, playerID string) map[models.LedgerKind]int64 {
	out := map[models.LedgerKind]int64{}
	for _, entry := range g.Ledger {
		if entry.PlayerID == playerID {
			out[entry.Kind] += entry.Amount
		}
	}
	return out
}

func TestScenarioAllCash(t *testing.T) {
	ctx := context.Background()
	tb := newTable(t, newTestEngine(t), "Alice")
	tb.buyIn("Alice", models.BuyInCash, 500)
	tb.settle()

	tb.cashOut("Manager", 0)
	tb.cashOut("Alice", 500)

	alice := tb.player("Alice")
	if alice.CheckoutStatus != models.CheckoutCreditDeducted {
		t.Fatalf("status = %s, want CREDIT_DEDUCTED", alice.CheckoutStatus)
	}
	if alice.CreditRepaid != 0 || alice.ChipsAfterCredit != 500 || alice.ProfitLoss != 0 {
		t.Errorf("repaid/after/pl = %d/%d/%d, want 0/500/0", alice.CreditRepaid, alice.ChipsAfterCredit, alice.ProfitLoss)
	}

	suggestion, err := tb.e.SuggestDistribution(ctx, tb.gameID)
	if err != nil {
		t.Fatalf("SuggestDistribution failed: %v", err)
	}
	if d := suggestion[alice.ID]; d == nil || d.Cash != 500 || len(d.Credit) != 0 {
		t.Fatalf("suggestion for Alice = %+v, want 500 cash", d)
	}

	if _, err := tb.e.AcceptDistribution(ctx, tb.gameID, tb.manager); err != nil {
		t.Fatalf("AcceptDistribution failed: %v", err)
	}
	if got := tb.game().Pool.ReservedCash; got != 500 {
		t.Errorf("reserved cash = %d, want 500", got)
	}
	if _, err := tb.e.ConfirmDistribution(ctx, tb.gameID, alice.ID, alice.ID); err != nil {
		t.Fatalf("ConfirmDistribution failed: %v", err)
	}

	g := tb.game()
	alice = g.Player(alice.ID)
	if alice.CheckoutStatus != models.CheckoutDone {
		t.Errorf("status = %s, want DONE", alice.CheckoutStatus)
	}
	if alice.Payout == nil || alice.Payout.Cash != 500 || alice.Payout.Credit != 0 {
		t.Errorf("payout = %+v, want 500 cash", alice.Payout)
	}
	if got := ledgerKinds(g, alice.ID)[models.LedgerPayoutCash]; got != 500 {
		t.Errorf("ledger cash payout = %d, want 500", got)
	}
	if g.Pool.CashPool != 0 || g.Pool.ReservedCash != 0 {
		t.Errorf("pool = %+v, want empty", g.Pool)
	}
	tb.audit()

	if _, err := tb.e.CloseGame(ctx, tb.gameID, tb.manager); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("CloseGame with manager unconfirmed = %v, want ErrInvalidState", err)
	}
	if _, err := tb.e.ConfirmAll(ctx, tb.gameID, tb.manager); err != nil {
		t.Fatalf("ConfirmAll failed: %v", err)
	}
	g, err = tb.e.CloseGame(ctx, tb.gameID, tb.manager)
	if err != nil {
		t.Fatalf("CloseGame failed: %v", err)
	}
	if g.Status != models.GameClosed || g.ClosedAt == 0 {
		t.Errorf("status = %s closedAt = %d, want CLOSED", g.Status, g.ClosedAt)
	}
}

func TestScenarioSelfRepaidCredit(t *testing.T) {
	ctx := context.Background()
	tb := newTable(t, newTestEngine(t), "A", "B")
	tb.buyIn("A", models.BuyInCredit, 300)
	tb.buyIn("B", models.BuyInCash, 300)
	tb.settle()

	if pool, err := tb.e.Pool(ctx, tb.gameID); err != nil || pool.CashPool != 300 || pool.CreditPool != 300 {
		t.Fatalf("Pool = %+v, %v; want cash 300 credit 300", pool, err)
	}

	tb.cashOut("Manager", 0)
	tb.cashOut("A", 300)
	tb.cashOut("B", 300)

	a := tb.player("A")
	if a.CreditsOwed != 0 || a.CreditRepaid != 300 || a.ChipsAfterCredit != 0 || a.ProfitLoss != 0 {
		t.Errorf("A owed/repaid/after/pl = %d/%d/%d/%d, want 0/300/0/0",
			a.CreditsOwed, a.CreditRepaid, a.ChipsAfterCredit, a.ProfitLoss)
	}
	b := tb.player("B")
	if b.ProfitLoss != 0 || b.ChipsAfterCredit != 300 {
		t.Errorf("B after/pl = %d/%d, want 300/0", b.ChipsAfterCredit, b.ProfitLoss)
	}
	pool := tb.game().Pool
	if pool.CashPool != 300 || pool.CreditPool != 0 {
		t.Errorf("pool = %+v, want cash 300 credit 0", pool)
	}

	suggestion, err := tb.e.SuggestDistribution(ctx, tb.gameID)
	if err != nil {
		t.Fatalf("SuggestDistribution failed: %v", err)
	}
	for id, d := range suggestion {
		if len(d.Credit) != 0 {
			t.Errorf("player %s got credit transfers %+v, want none", id, d.Credit)
		}
	}
	if got := suggestion[b.ID].Cash; got != 300 {
		t.Errorf("B cash = %d, want 300", got)
	}
	tb.audit()
}

func TestScenarioCreditAbsorbed(t *testing.T) {
	ctx := context.Background()
	tb := newTable(t, newTestEngine(t), "A", "B")
	tb.buyIn("A", models.BuyInCredit, 200)
	tb.buyIn("B", models.BuyInCash, 300)
	tb.settle()

	tb.cashOut("Manager", 0)
	tb.cashOut("A", 0)
	tb.cashOut("B", 500)

	b := tb.player("B")
	if b.ProfitLoss != 200 {
		t.Errorf("B profit = %d, want 200", b.ProfitLoss)
	}
	if b.CheckoutStatus != models.CheckoutAwaitingDistribution {
		t.Errorf("B status = %s, want AWAITING_DISTRIBUTION", b.CheckoutStatus)
	}

	g, err := tb.e.AcceptDistribution(ctx, tb.gameID, tb.manager)
	if err != nil {
		t.Fatalf("AcceptDistribution failed: %v", err)
	}
	a := g.Player(tb.id("A"))
	b = g.Player(tb.id("B"))
	if b.Distribution.Cash != 300 {
		t.Errorf("B cash = %d, want 300", b.Distribution.Cash)
	}
	want := []models.CreditAssignment{{From: a.ID, Amount: 200}}
	if len(b.Distribution.Credit) != 1 || b.Distribution.Credit[0] != want[0] {
		t.Errorf("B credit = %+v, want %+v", b.Distribution.Credit, want)
	}
	if a.CreditsOwed != 0 {
		t.Errorf("A owed = %d, want 0", a.CreditsOwed)
	}
	if g.Pool.CreditPool != 0 {
		t.Errorf("credit pool = %d, want 0", g.Pool.CreditPool)
	}

	g, err = tb.e.ConfirmAll(ctx, tb.gameID, tb.manager)
	if err != nil {
		t.Fatalf("ConfirmAll failed: %v", err)
	}
	b = g.Player(b.ID)
	if b.Payout.Cash != 300 || b.Payout.Credit != 200 {
		t.Errorf("B payout = %+v, want 300 cash 200 credit", b.Payout)
	}
	kinds := ledgerKinds(g, b.ID)
	if kinds[models.LedgerPayoutCash] != 300 || kinds[models.LedgerPayoutCredit] != 200 {
		t.Errorf("B ledger payouts = %v", kinds)
	}
	if got := ledgerKinds(g, a.ID)[models.LedgerCreditAbsorbed]; got != 200 {
		t.Errorf("A absorbed = %d, want 200", got)
	}
	tb.audit()

	if _, err := tb.e.CloseGame(ctx, tb.gameID, tb.manager); err != nil {
		t.Fatalf("CloseGame failed: %v", err)
	}
}

func TestRequestWorkflow(t *testing.T) {
	ctx := context.Background()

	t.Run("edit and approve twice", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		_, req, err := tb.e.SubmitRequest(ctx, tb.gameID, tb.id("Alice"), tb.id("Alice"), models.BuyInCash, 500)
		if err != nil {
			t.Fatalf("SubmitRequest failed: %v", err)
		}
		if _, err := tb.e.EditAndApproveRequest(ctx, tb.gameID, tb.manager, req.ID, 400); err != nil {
			t.Fatalf("EditAndApproveRequest failed: %v", err)
		}
		_, err = tb.e.EditAndApproveRequest(ctx, tb.gameID, tb.manager, req.ID, 300)
		if !errors.Is(err, ErrAlreadyResolved) {
			t.Fatalf("second edit = %v, want ErrAlreadyResolved", err)
		}

		g := tb.game()
		r := g.Request(req.ID)
		if r.Status != models.RequestEdited || r.Amount != 500 || *r.EditedAmount != 400 {
			t.Errorf("request = %+v, want EDITED 500->400", r)
		}
		if got := g.Player(tb.id("Alice")).TotalCashIn; got != 400 {
			t.Errorf("cash in = %d, want 400", got)
		}
		if len(g.Ledger) != 1 || g.Ledger[0].Amount != 400 {
			t.Errorf("ledger = %+v, want one entry of 400", g.Ledger)
		}
	})

	t.Run("credit buy-in owes credit", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		tb.buyIn("Alice", models.BuyInCredit, 250)
		p := tb.player("Alice")
		if p.TotalCreditIn != 250 || p.CreditsOwed != 250 || p.CurrentChips != 250 {
			t.Errorf("credit in/owed/chips = %d/%d/%d, want 250 each", p.TotalCreditIn, p.CreditsOwed, p.CurrentChips)
		}
	})

	t.Run("decline records nothing", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		_, req, _ := tb.e.SubmitRequest(ctx, tb.gameID, tb.id("Alice"), tb.id("Alice"), models.BuyInCash, 100)
		g, err := tb.e.DeclineRequest(ctx, tb.gameID, tb.manager, req.ID)
		if err != nil {
			t.Fatalf("DeclineRequest failed: %v", err)
		}
		if len(g.Ledger) != 0 || g.Player(tb.id("Alice")).TotalCashIn != 0 {
			t.Errorf("decline changed balances")
		}
		if _, err := tb.e.ApproveRequest(ctx, tb.gameID, tb.manager, req.ID); !errors.Is(err, ErrAlreadyResolved) {
			t.Errorf("approve after decline = %v, want ErrAlreadyResolved", err)
		}
	})

	tests := []struct {
		name    string
		actor   func(tb *table) string
		typ     models.BuyInType
		amount  int64
		wantErr error
	}{
		{"zero amount", func(tb *table) string { return tb.id("Alice") }, models.BuyInCash, 0, ErrValidation},
		{"negative amount", func(tb *table) string { return tb.id("Alice") }, models.BuyInCash, -5, ErrValidation},
		{"unknown type", func(tb *table) string { return tb.id("Alice") }, models.BuyInType("CHECK"), 10, ErrValidation},
		{"other player", func(tb *table) string { return tb.id("Bob") }, models.BuyInCash, 10, ErrForbidden},
		{"manager on behalf", func(tb *table) string { return tb.manager }, models.BuyInCash, 10, nil},
		{"amount at limit", func(tb *table) string { return tb.id("Alice") }, models.BuyInCredit, MaxAmount, nil},
		{"amount above limit", func(tb *table) string { return tb.id("Alice") }, models.BuyInCash, MaxAmount + 1, ErrValidation},
		{"max int64 amount", func(tb *table) string { return tb.id("Alice") }, models.BuyInCash, math.MaxInt64, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTable(t, newTestEngine(t), "Alice", "Bob")
			_, _, err := tb.e.SubmitRequest(ctx, tb.gameID, tt.actor(tb), tb.id("Alice"), tt.typ, tt.amount)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("SubmitRequest failed: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("SubmitRequest error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("buy-in total is bounded", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		tb.buyIn("Alice", models.BuyInCash, MaxAmount)

		_, req, err := tb.e.SubmitRequest(ctx, tb.gameID, tb.id("Alice"), tb.id("Alice"), models.BuyInCredit, 1)
		if err != nil {
			t.Fatalf("SubmitRequest failed: %v", err)
		}
		if _, err := tb.e.ApproveRequest(ctx, tb.gameID, tb.manager, req.ID); !errors.Is(err, ErrValidation) {
			t.Fatalf("ApproveRequest past limit = %v, want ErrValidation", err)
		}
		if _, err := tb.e.EditAndApproveRequest(ctx, tb.gameID, tb.manager, req.ID, math.MaxInt64); !errors.Is(err, ErrValidation) {
			t.Fatalf("EditAndApproveRequest(MaxInt64) = %v, want ErrValidation", err)
		}

		g := tb.game()
		alice := g.Player(tb.id("Alice"))
		if alice.TotalCashIn != MaxAmount || alice.TotalCreditIn != 0 || alice.CurrentChips != MaxAmount {
			t.Errorf("cash/credit/chips = %d/%d/%d, want %d/0/%d",
				alice.TotalCashIn, alice.TotalCreditIn, alice.CurrentChips, MaxAmount, MaxAmount)
		}
		if r := g.Request(req.ID); r.Status != models.RequestPending {
			t.Errorf("rejected approval resolved the request: %s", r.Status)
		}
		if len(g.Ledger) != 1 {
			t.Errorf("ledger entries = %d, want 1", len(g.Ledger))
		}
		tb.audit()
	})

	t.Run("unknown request", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t))
		if _, err := tb.e.ApproveRequest(ctx, tb.gameID, tb.manager, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("ApproveRequest = %v, want ErrNotFound", err)
		}
	})

	t.Run("only manager resolves", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		_, req, _ := tb.e.SubmitRequest(ctx, tb.gameID, tb.id("Alice"), tb.id("Alice"), models.BuyInCash, 100)
		if _, err := tb.e.ApproveRequest(ctx, tb.gameID, tb.id("Alice"), req.ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("self approve = %v, want ErrForbidden", err)
		}
	})

	t.Run("submit after settling", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		tb.settle()
		_, _, err := tb.e.SubmitRequest(ctx, tb.gameID, tb.id("Alice"), tb.id("Alice"), models.BuyInCash, 100)
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("SubmitRequest = %v, want ErrInvalidState", err)
		}
	})

	t.Run("pending request blocks settling", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		tb.e.SubmitRequest(ctx, tb.gameID, tb.id("Alice"), tb.id("Alice"), models.BuyInCash, 100)
		if _, err := tb.e.StartSettling(ctx, tb.gameID, tb.manager); !errors.Is(err, ErrInvalidState) {
			t.Errorf("StartSettling = %v, want ErrInvalidState", err)
		}
	})
}

func TestConcurrentResolution(t *testing.T) {
	ctx := context.Background()
	tb := newTable(t, newTestEngine(t), "Alice")
	_, req, err := tb.e.SubmitRequest(ctx, tb.gameID, tb.id("Alice"), tb.id("Alice"), models.BuyInCash, 100)
	if err != nil {
		t.Fatalf("SubmitRequest failed: %v", err)
	}

	const callers = 32
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				_, errs[i] = tb.e.ApproveRequest(ctx, tb.gameID, tb.manager, req.ID)
			case 1:
				_, errs[i] = tb.e.DeclineRequest(ctx, tb.gameID, tb.manager, req.ID)
			default:
				_, errs[i] = tb.e.EditAndApproveRequest(ctx, tb.gameID, tb.manager, req.ID, 50)
			}
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case !errors.Is(err, ErrAlreadyResolved):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("%d resolutions succeeded, want exactly 1", wins)
	}

	g := tb.game()
	if len(g.Ledger) > 1 {
		t.Errorf("ledger has %d entries, want at most 1", len(g.Ledger))
	}
	tb.audit()
}

func TestConcurrentGamesIndependent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := e.CreateGame(ctx, "Manager", "")
			if err != nil {
				t.Errorf("CreateGame failed: %v", err)
				return
			}
			for range 5 {
				_, req, err := e.SubmitRequest(ctx, g.ID, g.ManagerID, g.ManagerID, models.BuyInCash, 10)
				if err != nil {
					t.Errorf("SubmitRequest failed: %v", err)
					return
				}
				if _, err := e.ApproveRequest(ctx, g.ID, g.ManagerID, req.ID); err != nil {
					t.Errorf("ApproveRequest failed: %v", err)
					return
				}
			}
			got, _ := e.Game(ctx, g.ID)
			if cash := got.Player(g.ManagerID).TotalCashIn; cash != 50 {
				t.Errorf("cash in = %d, want 50", cash)
			}
		}()
	}
	wg.Wait()
}

func TestCheckoutStateMachine(t *testing.T) {
	ctx := context.Background()

	t.Run("transitions cannot be skipped", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		tb.settle()
		alice := tb.id("Alice")
		if _, err := tb.e.ValidateChips(ctx, tb.gameID, tb.manager, alice); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("validate from PENDING = %v, want ErrInvalidTransition", err)
		}
		if _, err := tb.e.ConfirmDistribution(ctx, tb.gameID, alice, alice); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("confirm from PENDING = %v, want ErrInvalidTransition", err)
		}
		if _, err := tb.e.RejectChips(ctx, tb.gameID, tb.manager, alice); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("reject from PENDING = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("reject returns to pending", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		tb.buyIn("Alice", models.BuyInCash, 100)
		tb.settle()
		alice := tb.id("Alice")
		if _, err := tb.e.SubmitChips(ctx, tb.gameID, alice, alice, ChipCount{Chips: 900, PreferredCash: 900}); err != nil {
			t.Fatalf("SubmitChips failed: %v", err)
		}
		g, err := tb.e.RejectChips(ctx, tb.gameID, tb.manager, alice)
		if err != nil {
			t.Fatalf("RejectChips failed: %v", err)
		}
		p := g.Player(alice)
		if p.CheckoutStatus != models.CheckoutPending || p.SubmittedChipCount != nil {
			t.Errorf("after reject: status %s submitted %v", p.CheckoutStatus, p.SubmittedChipCount)
		}
		tb.cashOut("Alice", 100)
		if got := tb.player("Alice").ChipsAfterCredit; got != 100 {
			t.Errorf("chips after credit = %d, want 100", got)
		}
	})

	t.Run("split must sum to chip count", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		tb.settle()
		alice := tb.id("Alice")
		_, err := tb.e.SubmitChips(ctx, tb.gameID, alice, alice, ChipCount{Chips: 100, PreferredCash: 60, PreferredCredit: 30})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("SubmitChips = %v, want ErrValidation", err)
		}
	})

	t.Run("input lock", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		tb.settle()
		alice := tb.id("Alice")
		if _, err := tb.e.LockInput(ctx, tb.gameID, tb.manager, alice); err != nil {
			t.Fatalf("LockInput failed: %v", err)
		}
		_, err := tb.e.SubmitChips(ctx, tb.gameID, alice, alice, ChipCount{Chips: 10, PreferredCash: 10})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("SubmitChips while locked = %v, want ErrInvalidState", err)
		}
		g, err := tb.e.ManagerInput(ctx, tb.gameID, tb.manager, alice, ChipCount{Chips: 10, PreferredCash: 4, PreferredCredit: 6})
		if err != nil {
			t.Fatalf("ManagerInput failed: %v", err)
		}
		p := g.Player(alice)
		if p.CheckoutStatus != models.CheckoutSubmitted || p.InputLocked {
			t.Errorf("status %s locked %t, want SUBMITTED unlocked", p.CheckoutStatus, p.InputLocked)
		}
		if p.PreferredCash != 4 || p.PreferredCredit != 6 {
			t.Errorf("preferences = %d/%d, want 4/6", p.PreferredCash, p.PreferredCredit)
		}
	})

	t.Run("manual credit deduction", func(t *testing.T) {
		opts := testOptions(memory.New())
		opts.AutoDeductCredit = false
		tb := newTable(t, New(opts), "Alice")
		tb.buyIn("Alice", models.BuyInCredit, 100)
		tb.settle()
		tb.cashOut("Manager", 0)
		tb.cashOut("Alice", 40)

		if got := tb.player("Alice").CheckoutStatus; got != models.CheckoutValidated {
			t.Fatalf("status = %s, want VALIDATED", got)
		}
		if _, err := tb.e.SuggestDistribution(ctx, tb.gameID); !errors.Is(err, ErrInvalidState) {
			t.Errorf("SuggestDistribution before deduction = %v, want ErrInvalidState", err)
		}
		for _, name := range []string{"Manager", "Alice"} {
			if _, err := tb.e.DeductCredit(ctx, tb.gameID, tb.manager, tb.id(name)); err != nil {
				t.Fatalf("DeductCredit(%s) failed: %v", name, err)
			}
		}
		p := tb.player("Alice")
		if p.CreditRepaid != 40 || p.CreditsOwed != 60 || p.ChipsAfterCredit != 0 || p.ProfitLoss != 0 {
			t.Errorf("repaid/owed/after/pl = %d/%d/%d/%d, want 40/60/0/0",
				p.CreditRepaid, p.CreditsOwed, p.ChipsAfterCredit, p.ProfitLoss)
		}
		tb.audit()
	})

	t.Run("confirm twice", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		tb.buyIn("Alice", models.BuyInCash, 100)
		tb.settle()
		tb.cashOut("Manager", 0)
		tb.cashOut("Alice", 100)
		if _, err := tb.e.AcceptDistribution(ctx, tb.gameID, tb.manager); err != nil {
			t.Fatalf("AcceptDistribution failed: %v", err)
		}
		alice := tb.id("Alice")
		if _, err := tb.e.ConfirmDistribution(ctx, tb.gameID, alice, alice); err != nil {
			t.Fatalf("ConfirmDistribution failed: %v", err)
		}
		if _, err := tb.e.ConfirmDistribution(ctx, tb.gameID, alice, alice); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("second confirm = %v, want ErrInvalidTransition", err)
		}
		payouts := 0
		for _, entry := range tb.game().Ledger {
			if entry.Kind == models.LedgerPayoutCash {
				payouts++
			}
		}
		if payouts != 1 {
			t.Errorf("%d cash payouts in ledger, want 1", payouts)
		}
	})
}

func TestCheckoutProgressionIsMonotonic(t *testing.T) {
	ctx := context.Background()
	hub := notify.NewHub(256)
	opts := testOptions(memory.New())
	opts.Publisher = hub
	tb := newTable(t, New(opts), "A", "B")
	events, cancel := hub.Subscribe(tb.gameID)
	defer cancel()

	tb.buyIn("A", models.BuyInCredit, 200)
	tb.buyIn("B", models.BuyInCash, 300)
	tb.settle()
	b := tb.id("B")
	tb.e.SubmitChips(ctx, tb.gameID, b, b, ChipCount{Chips: 1, PreferredCash: 1})
	tb.e.RejectChips(ctx, tb.gameID, tb.manager, b)
	if _, err := tb.e.CheckoutAll(ctx, tb.gameID, tb.manager, map[string]int64{tb.manager: 0, tb.id("A"): 0, b: 500}); err != nil {
		t.Fatalf("CheckoutAll failed: %v", err)
	}

	last := map[string]models.CheckoutStatus{}
	var version int64
	for {
		select {
		case ev := <-events:
			if ev.Version < version {
				t.Errorf("event version went back from %d to %d", version, ev.Version)
			}
			version = ev.Version
			if ev.Type != notify.EventCheckoutChanged {
				continue
			}
			to := models.CheckoutStatus(ev.Status)
			from := last[ev.PlayerID]
			rejected := from == models.CheckoutSubmitted && to == models.CheckoutPending
			if to.Rank() <= from.Rank() && !rejected {
				t.Errorf("player %s went from %s to %s", ev.PlayerID, from, to)
			}
			last[ev.PlayerID] = to
		default:
			for id, s := range last {
				if s != models.CheckoutDone {
					t.Errorf("player %s ended at %s, want DONE", id, s)
				}
			}
			return
		}
	}
}

func TestCheckoutAll(t *testing.T) {
	ctx := context.Background()
	tb := newTable(t, newTestEngine(t), "A", "B", "C")
	tb.buyIn("A", models.BuyInCash, 100)
	tb.buyIn("B", models.BuyInCredit, 300)
	tb.buyIn("C", models.BuyInCash, 200)

	counts := map[string]int64{tb.manager: 0, tb.id("A"): 250, tb.id("B"): 100, tb.id("C"): 250}
	g, err := tb.e.CheckoutAll(ctx, tb.gameID, tb.manager, counts)
	if err != nil {
		t.Fatalf("CheckoutAll failed: %v", err)
	}
	if g.Status != models.GameSettling {
		t.Fatalf("status = %s, want SETTLING", g.Status)
	}
	var paid int64
	for _, p := range g.SettlingPlayers() {
		if p.CheckoutStatus != models.CheckoutDone {
			t.Errorf("player %s is %s, want DONE", p.Name, p.CheckoutStatus)
		}
		paid += p.Payout.Cash + p.Payout.Credit
	}
	// B repays 100 of 300 and A and C absorb the remaining 200.
	if paid != 500 {
		t.Errorf("total paid = %d, want 500", paid)
	}
	if g.Pool.CashPool != 0 || g.Pool.CreditPool != 0 {
		t.Errorf("pool = %+v, want empty", g.Pool)
	}
	tb.audit()

	if _, err := tb.e.CloseGame(ctx, tb.gameID, tb.manager); err != nil {
		t.Fatalf("CloseGame failed: %v", err)
	}
}

func TestOverrideDistribution(t *testing.T) {
	ctx := context.Background()
	setup := func(t *testing.T) *table {
		tb := newTable(t, newTestEngine(t), "A", "B")
		tb.buyIn("A", models.BuyInCredit, 200)
		tb.buyIn("B", models.BuyInCash, 300)
		tb.settle()
		tb.cashOut("Manager", 0)
		tb.cashOut("A", 0)
		tb.cashOut("B", 500)
		return tb
	}

	tests := []struct {
		name    string
		dists   func(tb *table) map[string]*models.Distribution
		wantErr error
	}{
		{
			name: "sum mismatch",
			dists: func(tb *table) map[string]*models.Distribution {
				return map[string]*models.Distribution{
					tb.manager: {}, tb.id("A"): {},
					tb.id("B"): {Cash: 300, Credit: []models.CreditAssignment{{From: tb.id("A"), Amount: 100}}},
				}
			},
			wantErr: ErrValidation,
		},
		{
			name: "cash beyond pool",
			dists: func(tb *table) map[string]*models.Distribution {
				return map[string]*models.Distribution{tb.manager: {}, tb.id("A"): {}, tb.id("B"): {Cash: 500}}
			},
			wantErr: ErrValidation,
		},
		{
			name: "missing player",
			dists: func(tb *table) map[string]*models.Distribution {
				return map[string]*models.Distribution{
					tb.id("B"): {Cash: 300, Credit: []models.CreditAssignment{{From: tb.id("A"), Amount: 200}}},
				}
			},
			wantErr: ErrValidation,
		},
		{
			name: "self absorption",
			dists: func(tb *table) map[string]*models.Distribution {
				return map[string]*models.Distribution{
					tb.manager: {}, tb.id("A"): {},
					tb.id("B"): {Cash: 300, Credit: []models.CreditAssignment{{From: tb.id("B"), Amount: 200}}},
				}
			},
			wantErr: ErrValidation,
		},
		{
			name: "cash above limit",
			dists: func(tb *table) map[string]*models.Distribution {
				return map[string]*models.Distribution{tb.manager: {}, tb.id("A"): {}, tb.id("B"): {Cash: math.MaxInt64}}
			},
			wantErr: ErrValidation,
		},
		{
			// 300 + 2*MaxInt64 + 202 wraps to exactly the 500 payout.
			name: "credit total that wraps",
			dists: func(tb *table) map[string]*models.Distribution {
				return map[string]*models.Distribution{
					tb.manager: {}, tb.id("A"): {},
					tb.id("B"): {Cash: 300, Credit: []models.CreditAssignment{
						{From: tb.id("A"), Amount: math.MaxInt64},
						{From: tb.id("A"), Amount: math.MaxInt64},
						{From: tb.id("A"), Amount: 202},
					}},
				}
			},
			wantErr: ErrValidation,
		},
		{
			name: "cash beyond pool with credit",
			dists: func(tb *table) map[string]*models.Distribution {
				return map[string]*models.Distribution{
					tb.manager: {}, tb.id("A"): {},
					tb.id("B"): {Cash: 400, Credit: []models.CreditAssignment{{From: tb.id("A"), Amount: 100}}},
				}
			},
			wantErr: ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := setup(t)
			_, err := tb.e.OverrideDistribution(ctx, tb.gameID, tb.manager, tt.dists(tb))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("OverrideDistribution = %v, want %v", err, tt.wantErr)
			}
			if tb.player("B").Distribution != nil {
				t.Error("rejected override left a distribution behind")
			}
		})
	}

	t.Run("over-absorption floors debt", func(t *testing.T) {
		tb := setup(t)
		dists := map[string]*models.Distribution{
			tb.manager: {}, tb.id("A"): {},
			tb.id("B"): {Cash: 200, Credit: []models.CreditAssignment{{From: tb.id("A"), Amount: 300}}},
		}
		g, err := tb.e.OverrideDistribution(ctx, tb.gameID, tb.manager, dists)
		if err != nil {
			t.Fatalf("OverrideDistribution failed: %v", err)
		}
		a := g.Player(tb.id("A"))
		if a.CreditsOwed != 0 || a.ExcessAbsorbed != 100 {
			t.Errorf("A owed/excess = %d/%d, want 0/100", a.CreditsOwed, a.ExcessAbsorbed)
		}
		b := g.Player(tb.id("B"))
		if b.Distribution.Source != models.DistributionOverride {
			t.Errorf("source = %s, want OVERRIDE", b.Distribution.Source)
		}
		if g.Pool.ReservedCash != 200 || g.Pool.AvailableCash() != 100 {
			t.Errorf("pool = %+v, want 200 reserved", g.Pool)
		}
		tb.audit()
	})
}

func TestAmountLimits(t *testing.T) {
	ctx := context.Background()

	t.Run("chip counts", func(t *testing.T) {
		tests := []struct {
			name  string
			count ChipCount
		}{
			{"chips above limit", ChipCount{Chips: MaxAmount + 1, PreferredCash: MaxAmount + 1}},
			{"max int64 chips", ChipCount{Chips: math.MaxInt64, PreferredCash: math.MaxInt64}},
			{"split that wraps", ChipCount{Chips: 0, PreferredCash: math.MaxInt64, PreferredCredit: math.MaxInt64}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tb := newTable(t, newTestEngine(t), "Alice", "Bob")
				tb.buyIn("Alice", models.BuyInCash, 100)
				tb.settle()

				_, err := tb.e.SubmitChips(ctx, tb.gameID, tb.id("Alice"), tb.id("Alice"), tt.count)
				if !errors.Is(err, ErrValidation) {
					t.Errorf("SubmitChips = %v, want ErrValidation", err)
				}
				_, err = tb.e.ManagerInput(ctx, tb.gameID, tb.manager, tb.id("Bob"), tt.count)
				if !errors.Is(err, ErrValidation) {
					t.Errorf("ManagerInput = %v, want ErrValidation", err)
				}
				for _, name := range []string{"Alice", "Bob"} {
					if s := tb.player(name).CheckoutStatus; s != models.CheckoutPending {
						t.Errorf("%s status = %s, want PENDING", name, s)
					}
				}
			})
		}
	})

	t.Run("huge counts cannot overdraw the pool", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice", "Bob")
		tb.buyIn("Alice", models.BuyInCash, 100)
		tb.settle()
		tb.cashOut("Manager", 0)
		for _, name := range []string{"Alice", "Bob"} {
			count := ChipCount{Chips: math.MaxInt64, PreferredCash: math.MaxInt64}
			if _, err := tb.e.SubmitChips(ctx, tb.gameID, tb.id(name), tb.id(name), count); !errors.Is(err, ErrValidation) {
				t.Fatalf("SubmitChips(%s) = %v, want ErrValidation", name, err)
			}
		}
		tb.cashOut("Alice", 100)
		tb.cashOut("Bob", 0)
		if _, err := tb.e.AcceptDistribution(ctx, tb.gameID, tb.manager); err != nil {
			t.Fatalf("AcceptDistribution failed: %v", err)
		}
		g := tb.game()
		if g.Pool.ReservedCash != 100 || g.Pool.AvailableCash() != 0 {
			t.Errorf("pool = %+v, want 100 reserved", g.Pool)
		}
		tb.audit()
	})

	t.Run("checkout all", func(t *testing.T) {
		tb := newTable(t, newTestEngine(t), "Alice")
		tb.buyIn("Alice", models.BuyInCash, 100)
		counts := map[string]int64{tb.manager: 0, tb.id("Alice"): math.MaxInt64}
		if _, err := tb.e.CheckoutAll(ctx, tb.gameID, tb.manager, counts); !errors.Is(err, ErrValidation) {
			t.Fatalf("CheckoutAll = %v, want ErrValidation", err)
		}
		if g := tb.game(); g.Status != models.GameOpen {
			t.Errorf("status = %s, want OPEN", g.Status)
		}
	})
}

func TestInsufficientPool(t *testing.T) {
	ctx := context.Background()
	tb := newTable(t, newTestEngine(t), "Alice")
	tb.buyIn("Alice", models.BuyInCash, 100)
	tb.settle()
	tb.cashOut("Manager", 0)
	tb.cashOut("Alice", 500)

	_, err := tb.e.SuggestDistribution(ctx, tb.gameID)
	if !errors.Is(err, ErrInsufficientPool) {
		t.Fatalf("SuggestDistribution = %v, want ErrInsufficientPool", err)
	}
	if !IsInternal(err) {
		t.Error("ErrInsufficientPool should be internal")
	}
	if _, err := tb.e.AcceptDistribution(ctx, tb.gameID, tb.manager); !errors.Is(err, ErrInsufficientPool) {
		t.Fatalf("AcceptDistribution = %v, want ErrInsufficientPool", err)
	}
	if tb.player("Alice").Distribution != nil {
		t.Error("failed accept left a distribution behind")
	}
}

func TestPersistenceFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.New()}
	tb := newTable(t, New(testOptions(store)), "Alice")
	_, req, err := tb.e.SubmitRequest(ctx, tb.gameID, tb.id("Alice"), tb.id("Alice"), models.BuyInCash, 100)
	if err != nil {
		t.Fatalf("SubmitRequest failed: %v", err)
	}

	store.setFail(true)
	if _, err := tb.e.ApproveRequest(ctx, tb.gameID, tb.manager, req.ID); err == nil {
		t.Fatal("ApproveRequest succeeded with failing store")
	}
	g := tb.game()
	if g.Request(req.ID).Status != models.RequestPending || len(g.Ledger) != 0 {
		t.Fatalf("failed approve leaked into committed state")
	}

	store.setFail(false)
	if _, err := tb.e.ApproveRequest(ctx, tb.gameID, tb.manager, req.ID); err != nil {
		t.Fatalf("ApproveRequest retry failed: %v", err)
	}
	tb.audit()
}

func TestGameLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	g, err := e.CreateGame(ctx, "  Manager ", "")
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	if len(g.Code) != CodeLength {
		t.Errorf("code %q has length %d", g.Code, len(g.Code))
	}
	if got, err := e.GameByCode(ctx, g.Code); err != nil || got.ID != g.ID {
		t.Fatalf("GameByCode = %v, %v", got, err)
	}
	if _, _, err := e.JoinGame(ctx, g.ID, "manager"); !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate name = %v, want ErrValidation", err)
	}
	_, bob, err := e.JoinGame(ctx, g.ID, "Bob")
	if err != nil {
		t.Fatalf("JoinGame failed: %v", err)
	}
	if bob.JoinOrder != 1 {
		t.Errorf("join order = %d, want 1", bob.JoinOrder)
	}
	if _, err := e.RequestCheckout(ctx, g.ID, bob.ID, bob.ID); err != nil {
		t.Fatalf("RequestCheckout failed: %v", err)
	}
	g, err = e.DeactivatePlayer(ctx, g.ID, g.ManagerID, bob.ID)
	if err != nil {
		t.Fatalf("DeactivatePlayer failed: %v", err)
	}
	if !g.Player(bob.ID).CheckoutRequested || g.Player(bob.ID).IsActive {
		t.Errorf("bob = %+v", g.Player(bob.ID))
	}

	g, err = e.StartSettling(ctx, g.ID, g.ManagerID)
	if err != nil {
		t.Fatalf("StartSettling failed: %v", err)
	}
	if got := g.Player(bob.ID).CheckoutStatus; got != models.CheckoutNone {
		t.Errorf("inactive player status = %q, want none", got)
	}
	if _, _, err := e.JoinGame(ctx, g.ID, "Late"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("join while settling = %v, want ErrInvalidState", err)
	}

	g, err = e.CheckoutAll(ctx, g.ID, g.ManagerID, map[string]int64{g.ManagerID: 0})
	if err != nil {
		t.Fatalf("CheckoutAll failed: %v", err)
	}
	if _, err := e.CloseGame(ctx, g.ID, g.ManagerID); err != nil {
		t.Fatalf("CloseGame failed: %v", err)
	}
	if _, err := e.Pool(ctx, g.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Pool after close = %v, want ErrInvalidState", err)
	}
	if _, err := e.Game(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Game(missing) = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "engine.db"))
	if err != nil {
		t.Fatalf("sqlite.New failed: %v", err)
	}
	defer store.Close()

	opts := testOptions(store)
	tb := newTable(t, New(opts), "A", "B")
	tb.buyIn("A", models.BuyInCredit, 200)
	tb.buyIn("B", models.BuyInCash, 300)
	tb.settle()
	tb.cashOut("Manager", 0)
	tb.cashOut("A", 0)
	tb.cashOut("B", 500)
	if _, err := tb.e.AcceptDistribution(ctx, tb.gameID, tb.manager); err != nil {
		t.Fatalf("AcceptDistribution failed: %v", err)
	}

	// A fresh engine sees exactly what was committed.
	fresh := New(opts)
	if err := fresh.CheckInvariants(ctx, tb.gameID); err != nil {
		t.Fatalf("CheckInvariants after reload failed: %v", err)
	}
	g, err := fresh.ConfirmAll(ctx, tb.gameID, tb.manager)
	if err != nil {
		t.Fatalf("ConfirmAll after reload failed: %v", err)
	}
	if p := g.Player(tb.id("B")).Payout; p == nil || p.Cash != 300 || p.Credit != 200 {
		t.Errorf("B payout = %+v, want 300/200", p)
	}
}
