// Package engine is the game ledger and settlement engine.
//
// Each game is an aggregate guarded by its own mutex. A mutation runs against
// a clone of the committed game, is audited, persisted, and only then swapped
// in, so a failed operation leaves no trace. Committed *models.Game values are
// never modified afterwards and callers must treat them as read-only.
// Different games never share a lock.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/pokerbank/internal/metrics"
	"github.com/mmynk/pokerbank/internal/models"
	"github.com/mmynk/pokerbank/internal/notify"
	"github.com/mmynk/pokerbank/internal/storage"
)

// Options configures an Engine. Store is required.
type Options struct {
	Store     storage.Store
	Publisher notify.Publisher
	Metrics   *metrics.Collector

	// Now defaults to time.Now.
	Now func() time.Time

	// NewID defaults to random UUIDs.
	NewID func() string

	// AutoDeductCredit runs credit deduction as part of validation.
	AutoDeductCredit bool
}

// Engine serializes all mutations per game.
type Engine struct {
	store      storage.Store
	pub        notify.Publisher
	metrics    *metrics.Collector
	now        func() time.Time
	newID      func() string
	autoDeduct bool

	mu    sync.Mutex
	games map[string]*gameActor
}

// gameActor owns one game. game is nil until first loaded.
type gameActor struct {
	mu   sync.Mutex
	game *models.Game
}

// New creates an Engine.
func New(opts Options) *Engine {
	e := &Engine{
		store:      opts.Store,
		pub:        opts.Publisher,
		metrics:    opts.Metrics,
		now:        opts.Now,
		newID:      opts.NewID,
		autoDeduct: opts.AutoDeductCredit,
		games:      make(map[string]*gameActor),
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

func (e *Engine) actor(gameID string) *gameActor {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.games[gameID]
	if !ok {
		a = &gameActor{}
		e.games[gameID] = a
	}
	return a
}

func (e *Engine) evict(gameID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.games, gameID)
}

// load returns the committed game. Must be called with a.mu held.
func (e *Engine) load(ctx context.Context, a *gameActor, gameID string) (*models.Game, error) {
	if a.game != nil {
		return a.game, nil
	}
	g, err := e.store.GetGame(ctx, gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	a.game = g
	return g, nil
}

// Game returns the committed state of a game.
func (e *Engine) Game(ctx context.Context, gameID string) (*models.Game, error) {
	a := e.actor(gameID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return e.load(ctx, a, gameID)
}

// GameByCode resolves a join code to the committed game.
func (e *Engine) GameByCode(ctx context.Context, code string) (*models.Game, error) {
	stored, err := e.store.GetGameByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: game code %s", ErrNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up game code: %w", err)
	}
	return e.Game(ctx, stored.ID)
}

// mutate applies fn to a clone of the game under the game's lock and commits
// the clone if fn, the invariant audit and persistence all succeed.
func (e *Engine) mutate(ctx context.Context, gameID, op string, fn func(tx *txn) error) (*models.Game, error) {
	a := e.actor(gameID)
	a.mu.Lock()
	defer a.mu.Unlock()

	committed, err := e.load(ctx, a, gameID)
	if err != nil {
		return nil, err
	}

	tx := e.begin(committed.Clone())
	if err := fn(tx); err != nil {
		e.fault(op, gameID, err)
		return nil, err
	}
	if err := checkInvariants(tx.g); err != nil {
		e.fault(op, gameID, err)
		return nil, err
	}

	tx.g.Version++
	if err := e.store.SaveGame(ctx, tx.g); err != nil {
		slog.Error("Failed to persist game", "op", op, "game_id", gameID, "error", err)
		return nil, fmt.Errorf("failed to persist game: %w", err)
	}
	a.game = tx.g

	e.afterCommit(tx)
	if tx.g.Status == models.GameClosed {
		e.evict(gameID)
	}
	return tx.g, nil
}

func (e *Engine) begin(g *models.Game) *txn {
	return &txn{
		g:          g,
		now:        e.now().Unix(),
		newID:      e.newID,
		autoDeduct: e.autoDeduct,
	}
}

// fault logs and counts internal consistency failures. Ordinary user errors
// pass through silently.
func (e *Engine) fault(op, gameID string, err error) {
	if !IsInternal(err) {
		return
	}
	kind := "invariant"
	if errors.Is(err, ErrInsufficientPool) {
		kind = "insufficient_pool"
	}
	slog.Error("Internal consistency fault",
		"op", op,
		"game_id", gameID,
		"kind", kind,
		"error", err,
	)
	e.metrics.InvariantViolation(kind)
}

func (e *Engine) afterCommit(tx *txn) {
	for _, to := range tx.transitions {
		e.metrics.CheckoutTransition(string(to))
	}
	for _, outcome := range tx.resolutions {
		e.metrics.RequestResolved(outcome)
	}
	for source, n := range tx.distributed {
		e.metrics.DistributionCommitted(string(source), n)
	}
	switch tx.g.Status {
	case models.GameSettling:
		e.metrics.SetPool(tx.g.ID, tx.g.Pool.CashPool, tx.g.Pool.CreditPool)
	case models.GameClosed:
		e.metrics.ForgetGame(tx.g.ID)
	}

	if e.pub == nil {
		return
	}
	for _, ev := range tx.events {
		ev.GameID = tx.g.ID
		ev.Version = tx.g.Version
		ev.At = tx.now
		e.pub.Publish(ev)
	}
}

// txn is one in-flight mutation of a cloned game.
type txn struct {
	g          *models.Game
	now        int64
	newID      func() string
	autoDeduct bool

	events      []notify.Event
	transitions []models.CheckoutStatus
	resolutions []string
	distributed map[models.DistributionSource]int
}

func (tx *txn) emit(typ notify.EventType, playerID, requestID, status string) {
	tx.events = append(tx.events, notify.Event{
		Type:      typ,
		PlayerID:  playerID,
		RequestID: requestID,
		Status:    status,
	})
}

func (tx *txn) player(id string) (*models.Player, error) {
	p := tx.g.Player(id)
	if p == nil {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, id)
	}
	return p, nil
}

func (tx *txn) requireStatus(want models.GameStatus) error {
	if tx.g.Status != want {
		return fmt.Errorf("%w: game is %s, want %s", ErrInvalidState, tx.g.Status, want)
	}
	return nil
}

func (tx *txn) requireManager(actorID string) error {
	if actorID == "" || actorID != tx.g.ManagerID {
		return fmt.Errorf("%w: only the manager may do this", ErrForbidden)
	}
	return nil
}

func (tx *txn) requireSelfOrManager(actorID, playerID string) error {
	if actorID != "" && (actorID == playerID || actorID == tx.g.ManagerID) {
		return nil
	}
	return fmt.Errorf("%w: acting for another player", ErrForbidden)
}
