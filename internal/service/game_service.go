package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/pokerbank/internal/auth"
	"github.com/mmynk/pokerbank/internal/engine"
	"github.com/mmynk/pokerbank/internal/middleware"
	"github.com/mmynk/pokerbank/internal/models"
	"github.com/mmynk/pokerbank/internal/notify"
	"github.com/mmynk/pokerbank/pkg/api"
)

// Subscriber hands out per-game event subscriptions.
type Subscriber interface {
	Subscribe(gameID string) (<-chan notify.Event, func())
}

// GameService implements the Connect GameService on top of the engine.
// The game and acting player always come from the session token.
type GameService struct {
	api.UnimplementedGameServiceHandler
	engine *engine.Engine
	tokens *auth.JWTManager
	authn  auth.Authenticator
	events Subscriber
}

// NewGameService creates a GameService.
func NewGameService(eng *engine.Engine, tokens *auth.JWTManager, authn auth.Authenticator, events Subscriber) *GameService {
	return &GameService{
		engine: eng,
		tokens: tokens,
		authn:  authn,
		events: events,
	}
}

// session returns the caller's game and player.
func session(ctx context.Context) (gameID, playerID string, err error) {
	gameID, playerID = middleware.GetGameID(ctx), middleware.GetPlayerID(ctx)
	if gameID == "" || playerID == "" {
		return "", "", connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}
	return gameID, playerID, nil
}

// target is the player an action applies to: the named one, or the caller.
func target(requested, caller string) string {
	if requested == "" {
		return caller
	}
	return requested
}

func gameResponse(g *models.Game) *connect.Response[api.GameResponse] {
	return connect.NewResponse(&api.GameResponse{Game: toAPIGame(g)})
}

func (s *GameService) issue(op string, g *models.Game, p *models.Player) (*connect.Response[api.SessionResponse], error) {
	token, err := s.tokens.Generate(p)
	if err != nil {
		return nil, connectError(op, err)
	}
	return connect.NewResponse(&api.SessionResponse{
		Game:     toAPIGame(g),
		PlayerID: p.ID,
		Token:    token,
	}), nil
}

// CreateGame creates a game and returns the manager's session.
func (s *GameService) CreateGame(ctx context.Context, req *connect.Request[api.CreateGameRequest]) (*connect.Response[api.SessionResponse], error) {
	slog.Info("CreateGame request received", "manager_name", req.Msg.ManagerName)

	hash, err := s.authn.Protect(req.Msg.Passcode)
	if err != nil {
		return nil, connectError("CreateGame", err)
	}
	g, err := s.engine.CreateGame(ctx, req.Msg.ManagerName, hash)
	if err != nil {
		return nil, connectError("CreateGame", err)
	}
	return s.issue("CreateGame", g, g.Player(g.ManagerID))
}

// JoinGame seats a new player and returns their session.
func (s *GameService) JoinGame(ctx context.Context, req *connect.Request[api.JoinGameRequest]) (*connect.Response[api.SessionResponse], error) {
	code := strings.ToUpper(strings.TrimSpace(req.Msg.Code))
	slog.Info("JoinGame request received", "code", code, "name", req.Msg.Name)

	g, err := s.engine.GameByCode(ctx, code)
	if err != nil {
		return nil, connectError("JoinGame", err)
	}
	if err := s.authn.Admit(g, req.Msg.Passcode); err != nil {
		return nil, connectError("JoinGame", err)
	}
	g, p, err := s.engine.JoinGame(ctx, g.ID, req.Msg.Name)
	if err != nil {
		return nil, connectError("JoinGame", err)
	}
	return s.issue("JoinGame", g, p)
}

// GetGame returns the caller's game.
func (s *GameService) GetGame(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.GameResponse], error) {
	gameID, _, err := session(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.engine.Game(ctx, gameID)
	if err != nil {
		return nil, connectError("GetGame", err)
	}
	return gameResponse(g), nil
}

// ListRequests lists chip requests, optionally filtered by status.
func (s *GameService) ListRequests(ctx context.Context, req *connect.Request[api.ListRequestsRequest]) (*connect.Response[api.ListRequestsResponse], error) {
	gameID, _, err := session(ctx)
	if err != nil {
		return nil, err
	}
	status := models.RequestStatus(strings.ToUpper(req.Msg.Status))
	switch status {
	case "", models.RequestPending, models.RequestApproved, models.RequestDeclined, models.RequestEdited:
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown request status %q", req.Msg.Status))
	}

	g, err := s.engine.Game(ctx, gameID)
	if err != nil {
		return nil, connectError("ListRequests", err)
	}
	out := make([]*api.ChipRequest, 0, len(g.Requests))
	for _, r := range g.Requests {
		if status == "" || r.Status == status {
			out = append(out, toAPIRequest(r))
		}
	}
	return connect.NewResponse(&api.ListRequestsResponse{Requests: out}), nil
}

// GetLedger returns every ledger entry in order.
func (s *GameService) GetLedger(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.LedgerResponse], error) {
	gameID, _, err := session(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.engine.Game(ctx, gameID)
	if err != nil {
		return nil, connectError("GetLedger", err)
	}
	return connect.NewResponse(&api.LedgerResponse{Entries: toAPILedger(g.Ledger)}), nil
}

// SubmitRequest asks the manager for a buy-in.
func (s *GameService) SubmitRequest(ctx context.Context, req *connect.Request[api.SubmitRequestRequest]) (*connect.Response[api.SubmitRequestResponse], error) {
	gameID, playerID, err := session(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SubmitRequest request received",
		"game_id", gameID,
		"player_id", target(req.Msg.PlayerID, playerID),
		"type", req.Msg.Type,
		"amount", req.Msg.Amount,
	)

	typ := models.BuyInType(strings.ToUpper(req.Msg.Type))
	g, r, err := s.engine.SubmitRequest(ctx, gameID, playerID, target(req.Msg.PlayerID, playerID), typ, req.Msg.Amount)
	if err != nil {
		return nil, connectError("SubmitRequest", err)
	}
	return connect.NewResponse(&api.SubmitRequestResponse{
		Request: toAPIRequest(r),
		Game:    toAPIGame(g),
	}), nil
}

// ApproveRequest approves a pending request.
func (s *GameService) ApproveRequest(ctx context.Context, req *connect.Request[api.ResolveRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "ApproveRequest", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.ApproveRequest(ctx, gameID, actorID, req.Msg.RequestID)
	})
}

// DeclineRequest declines a pending request.
func (s *GameService) DeclineRequest(ctx context.Context, req *connect.Request[api.ResolveRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "DeclineRequest", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.DeclineRequest(ctx, gameID, actorID, req.Msg.RequestID)
	})
}

// EditApproveRequest approves a pending request for req.Msg.Amount.
func (s *GameService) EditApproveRequest(ctx context.Context, req *connect.Request[api.ResolveRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "EditApproveRequest", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.EditAndApproveRequest(ctx, gameID, actorID, req.Msg.RequestID, req.Msg.Amount)
	})
}

// DeactivatePlayer removes a player who never bought in.
func (s *GameService) DeactivatePlayer(ctx context.Context, req *connect.Request[api.PlayerRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "DeactivatePlayer", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.DeactivatePlayer(ctx, gameID, actorID, req.Msg.PlayerID)
	})
}

// RequestCheckout flags a player's intent to leave.
func (s *GameService) RequestCheckout(ctx context.Context, req *connect.Request[api.PlayerRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "RequestCheckout", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.RequestCheckout(ctx, gameID, actorID, target(req.Msg.PlayerID, actorID))
	})
}

// StartSettling moves the game to SETTLING.
func (s *GameService) StartSettling(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "StartSettling", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.StartSettling(ctx, gameID, actorID)
	})
}

func chipCount(msg *api.ChipCountRequest) engine.ChipCount {
	return engine.ChipCount{
		Chips:           msg.ChipCount,
		PreferredCash:   msg.PreferredCash,
		PreferredCredit: msg.PreferredCredit,
	}
}

// SubmitChips submits a final chip count.
func (s *GameService) SubmitChips(ctx context.Context, req *connect.Request[api.ChipCountRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "SubmitChips", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.SubmitChips(ctx, gameID, actorID, target(req.Msg.PlayerID, actorID), chipCount(req.Msg))
	})
}

// ManagerInput submits a chip count on a player's behalf.
func (s *GameService) ManagerInput(ctx context.Context, req *connect.Request[api.ChipCountRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "ManagerInput", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.ManagerInput(ctx, gameID, actorID, req.Msg.PlayerID, chipCount(req.Msg))
	})
}

// LockInput blocks a player's own submission.
func (s *GameService) LockInput(ctx context.Context, req *connect.Request[api.PlayerRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "LockInput", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.LockInput(ctx, gameID, actorID, req.Msg.PlayerID)
	})
}

// UnlockInput releases a player's input lock.
func (s *GameService) UnlockInput(ctx context.Context, req *connect.Request[api.PlayerRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "UnlockInput", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.UnlockInput(ctx, gameID, actorID, req.Msg.PlayerID)
	})
}

// ValidateChips accepts a submitted chip count.
func (s *GameService) ValidateChips(ctx context.Context, req *connect.Request[api.PlayerRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "ValidateChips", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.ValidateChips(ctx, gameID, actorID, req.Msg.PlayerID)
	})
}

// RejectChips sends a submitted chip count back.
func (s *GameService) RejectChips(ctx context.Context, req *connect.Request[api.PlayerRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "RejectChips", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.RejectChips(ctx, gameID, actorID, req.Msg.PlayerID)
	})
}

// DeductCredit runs credit deduction for a validated player.
func (s *GameService) DeductCredit(ctx context.Context, req *connect.Request[api.PlayerRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "DeductCredit", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.DeductCredit(ctx, gameID, actorID, req.Msg.PlayerID)
	})
}

// GetPool returns the settlement pool.
func (s *GameService) GetPool(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.PoolResponse], error) {
	gameID, _, err := session(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := s.engine.Pool(ctx, gameID)
	if err != nil {
		return nil, connectError("GetPool", err)
	}
	return connect.NewResponse(&api.PoolResponse{Pool: toAPIPool(pool)}), nil
}

// GetDistributionSuggestion runs netting without committing anything.
func (s *GameService) GetDistributionSuggestion(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.DistributionsResponse], error) {
	gameID, _, err := session(ctx)
	if err != nil {
		return nil, err
	}
	suggestion, err := s.engine.SuggestDistribution(ctx, gameID)
	if err != nil {
		return nil, connectError("GetDistributionSuggestion", err)
	}
	out := make(map[string]*api.Distribution, len(suggestion))
	for id, d := range suggestion {
		out[id] = toAPIDistribution(d)
	}
	return connect.NewResponse(&api.DistributionsResponse{Distributions: out}), nil
}

// AcceptDistribution commits the current suggestion.
func (s *GameService) AcceptDistribution(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "AcceptDistribution", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.AcceptDistribution(ctx, gameID, actorID)
	})
}

// OverrideDistribution commits a manager-chosen distribution.
func (s *GameService) OverrideDistribution(ctx context.Context, req *connect.Request[api.OverrideDistributionRequest]) (*connect.Response[api.GameResponse], error) {
	dists := make(map[string]*models.Distribution, len(req.Msg.Distributions))
	for id, d := range req.Msg.Distributions {
		dists[id] = fromAPIDistribution(d)
	}
	return s.mutate(ctx, "OverrideDistribution", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.OverrideDistribution(ctx, gameID, actorID, dists)
	})
}

// ConfirmDistribution completes a distributed player's checkout.
func (s *GameService) ConfirmDistribution(ctx context.Context, req *connect.Request[api.PlayerRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "ConfirmDistribution", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.ConfirmDistribution(ctx, gameID, actorID, target(req.Msg.PlayerID, actorID))
	})
}

// ConfirmAll completes every distributed checkout.
func (s *GameService) ConfirmAll(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "ConfirmAll", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.ConfirmAll(ctx, gameID, actorID)
	})
}

// CheckoutAll settles every listed player in one step.
func (s *GameService) CheckoutAll(ctx context.Context, req *connect.Request[api.CheckoutAllRequest]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "CheckoutAll", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.CheckoutAll(ctx, gameID, actorID, req.Msg.ChipCounts)
	})
}

// CloseGame closes a fully settled game.
func (s *GameService) CloseGame(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.GameResponse], error) {
	return s.mutate(ctx, "CloseGame", func(gameID, actorID string) (*models.Game, error) {
		return s.engine.CloseGame(ctx, gameID, actorID)
	})
}

// CheckInvariants audits the game against its ledger.
func (s *GameService) CheckInvariants(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.Empty], error) {
	gameID, _, err := session(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.engine.CheckInvariants(ctx, gameID); err != nil {
		return nil, connectError("CheckInvariants", err)
	}
	return connect.NewResponse(&api.Empty{}), nil
}

// mutate runs one engine command for the session's game and player.
func (s *GameService) mutate(ctx context.Context, op string, fn func(gameID, actorID string) (*models.Game, error)) (*connect.Response[api.GameResponse], error) {
	gameID, actorID, err := session(ctx)
	if err != nil {
		return nil, err
	}
	slog.Debug(op+" request received", "game_id", gameID, "player_id", actorID)

	g, err := fn(gameID, actorID)
	if err != nil {
		return nil, connectError(op, err)
	}
	return gameResponse(g), nil
}

// WatchGame streams the session game's events until the client goes away.
func (s *GameService) WatchGame(ctx context.Context, req *connect.Request[api.Empty], stream *connect.ServerStream[api.Event]) error {
	gameID, playerID, err := session(ctx)
	if err != nil {
		return err
	}
	if _, err := s.engine.Game(ctx, gameID); err != nil {
		return connectError("WatchGame", err)
	}

	events, cancel := s.events.Subscribe(gameID)
	defer cancel()
	slog.Info("WatchGame subscribed", "game_id", gameID, "player_id", playerID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := stream.Send(toAPIEvent(ev)); err != nil {
				return err
			}
		}
	}
}
