package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// ServiceName is the fully-qualified name of the GameService.
const ServiceName = "pokerbank.v1.GameService"

// Procedure paths, one per RPC.
const (
	CreateGameProcedure                = "/" + ServiceName + "/CreateGame"
	JoinGameProcedure                  = "/" + ServiceName + "/JoinGame"
	GetGameProcedure                   = "/" + ServiceName + "/GetGame"
	ListRequestsProcedure              = "/" + ServiceName + "/ListRequests"
	GetLedgerProcedure                 = "/" + ServiceName + "/GetLedger"
	SubmitRequestProcedure             = "/" + ServiceName + "/SubmitRequest"
	ApproveRequestProcedure            = "/" + ServiceName + "/ApproveRequest"
	DeclineRequestProcedure            = "/" + ServiceName + "/DeclineRequest"
	EditApproveRequestProcedure        = "/" + ServiceName + "/EditApproveRequest"
	DeactivatePlayerProcedure          = "/" + ServiceName + "/DeactivatePlayer"
	RequestCheckoutProcedure           = "/" + ServiceName + "/RequestCheckout"
	StartSettlingProcedure             = "/" + ServiceName + "/StartSettling"
	SubmitChipsProcedure               = "/" + ServiceName + "/SubmitChips"
	ManagerInputProcedure              = "/" + ServiceName + "/ManagerInput"
	LockInputProcedure                 = "/" + ServiceName + "/LockInput"
	UnlockInputProcedure               = "/" + ServiceName + "/UnlockInput"
	ValidateChipsProcedure             = "/" + ServiceName + "/ValidateChips"
	RejectChipsProcedure               = "/" + ServiceName + "/RejectChips"
	DeductCreditProcedure              = "/" + ServiceName + "/DeductCredit"
	GetPoolProcedure                   = "/" + ServiceName + "/GetPool"
	GetDistributionSuggestionProcedure = "/" + ServiceName + "/GetDistributionSuggestion"
	AcceptDistributionProcedure        = "/" + ServiceName + "/AcceptDistribution"
	OverrideDistributionProcedure      = "/" + ServiceName + "/OverrideDistribution"
	ConfirmDistributionProcedure       = "/" + ServiceName + "/ConfirmDistribution"
	ConfirmAllProcedure                = "/" + ServiceName + "/ConfirmAll"
	CheckoutAllProcedure               = "/" + ServiceName + "/CheckoutAll"
	CloseGameProcedure                 = "/" + ServiceName + "/CloseGame"
	CheckInvariantsProcedure           = "/" + ServiceName + "/CheckInvariants"
	WatchGameProcedure                 = "/" + ServiceName + "/WatchGame"
)

// PublicProcedures may be called without a session token.
var PublicProcedures = map[string]bool{
	CreateGameProcedure: true,
	JoinGameProcedure:   true,
}

// GameServiceHandler is implemented by the server.
type GameServiceHandler interface {
	// CreateGame creates a game and seats the caller as its manager.
	CreateGame(context.Context, *connect.Request[CreateGameRequest]) (*connect.Response[SessionResponse], error)
	// JoinGame seats the caller in an OPEN game by join code.
	JoinGame(context.Context, *connect.Request[JoinGameRequest]) (*connect.Response[SessionResponse], error)
	// GetGame returns the caller's game.
	GetGame(context.Context, *connect.Request[Empty]) (*connect.Response[GameResponse], error)
	// ListRequests lists chip requests, optionally by status.
	ListRequests(context.Context, *connect.Request[ListRequestsRequest]) (*connect.Response[ListRequestsResponse], error)
	// GetLedger returns the append-only ledger.
	GetLedger(context.Context, *connect.Request[Empty]) (*connect.Response[LedgerResponse], error)
	// SubmitRequest asks for a cash or credit buy-in.
	SubmitRequest(context.Context, *connect.Request[SubmitRequestRequest]) (*connect.Response[SubmitRequestResponse], error)
	// ApproveRequest approves a pending request.
	ApproveRequest(context.Context, *connect.Request[ResolveRequest]) (*connect.Response[GameResponse], error)
	// DeclineRequest declines a pending request.
	DeclineRequest(context.Context, *connect.Request[ResolveRequest]) (*connect.Response[GameResponse], error)
	// EditApproveRequest approves a pending request for a different amount.
	EditApproveRequest(context.Context, *connect.Request[ResolveRequest]) (*connect.Response[GameResponse], error)
	// DeactivatePlayer removes a player who never bought in.
	DeactivatePlayer(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error)
	// RequestCheckout flags a player's intent to leave.
	RequestCheckout(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error)
	// StartSettling moves the game to SETTLING.
	StartSettling(context.Context, *connect.Request[Empty]) (*connect.Response[GameResponse], error)
	// SubmitChips submits the caller's final chip count.
	SubmitChips(context.Context, *connect.Request[ChipCountRequest]) (*connect.Response[GameResponse], error)
	// ManagerInput submits a chip count on a player's behalf.
	ManagerInput(context.Context, *connect.Request[ChipCountRequest]) (*connect.Response[GameResponse], error)
	// LockInput blocks a player's own chip submission.
	LockInput(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error)
	// UnlockInput releases a player's input lock.
	UnlockInput(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error)
	// ValidateChips accepts a submitted chip count.
	ValidateChips(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error)
	// RejectChips sends a submitted chip count back.
	RejectChips(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error)
	// DeductCredit repays a validated player's credit from their chips.
	DeductCredit(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error)
	// GetPool returns the settlement pool.
	GetPool(context.Context, *connect.Request[Empty]) (*connect.Response[PoolResponse], error)
	// GetDistributionSuggestion computes a distribution without committing it.
	GetDistributionSuggestion(context.Context, *connect.Request[Empty]) (*connect.Response[DistributionsResponse], error)
	// AcceptDistribution commits the suggested distribution.
	AcceptDistribution(context.Context, *connect.Request[Empty]) (*connect.Response[GameResponse], error)
	// OverrideDistribution commits a manager-chosen distribution.
	OverrideDistribution(context.Context, *connect.Request[OverrideDistributionRequest]) (*connect.Response[GameResponse], error)
	// ConfirmDistribution completes a distributed player's checkout.
	ConfirmDistribution(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error)
	// ConfirmAll completes every distributed checkout.
	ConfirmAll(context.Context, *connect.Request[Empty]) (*connect.Response[GameResponse], error)
	// CheckoutAll settles every listed player in one step.
	CheckoutAll(context.Context, *connect.Request[CheckoutAllRequest]) (*connect.Response[GameResponse], error)
	// CloseGame closes a fully settled game.
	CloseGame(context.Context, *connect.Request[Empty]) (*connect.Response[GameResponse], error)
	// CheckInvariants audits the game's running totals against its ledger.
	CheckInvariants(context.Context, *connect.Request[Empty]) (*connect.Response[Empty], error)
	// WatchGame streams change notifications for the caller's game.
	WatchGame(context.Context, *connect.Request[Empty], *connect.ServerStream[Event]) error
}

// NewGameServiceHandler builds an HTTP handler serving every GameService
// procedure. It returns the path prefix to mount it on.
func NewGameServiceHandler(svc GameServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(CreateGameProcedure, connect.NewUnaryHandler(CreateGameProcedure, svc.CreateGame, opts...))
	mux.Handle(JoinGameProcedure, connect.NewUnaryHandler(JoinGameProcedure, svc.JoinGame, opts...))
	mux.Handle(GetGameProcedure, connect.NewUnaryHandler(GetGameProcedure, svc.GetGame, opts...))
	mux.Handle(ListRequestsProcedure, connect.NewUnaryHandler(ListRequestsProcedure, svc.ListRequests, opts...))
	mux.Handle(GetLedgerProcedure, connect.NewUnaryHandler(GetLedgerProcedure, svc.GetLedger, opts...))
	mux.Handle(SubmitRequestProcedure, connect.NewUnaryHandler(SubmitRequestProcedure, svc.SubmitRequest, opts...))
	mux.Handle(ApproveRequestProcedure, connect.NewUnaryHandler(ApproveRequestProcedure, svc.ApproveRequest, opts...))
	mux.Handle(DeclineRequestProcedure, connect.NewUnaryHandler(DeclineRequestProcedure, svc.DeclineRequest, opts...))
	mux.Handle(EditApproveRequestProcedure, connect.NewUnaryHandler(EditApproveRequestProcedure, svc.EditApproveRequest, opts...))
	mux.Handle(DeactivatePlayerProcedure, connect.NewUnaryHandler(DeactivatePlayerProcedure, svc.DeactivatePlayer, opts...))
	mux.Handle(RequestCheckoutProcedure, connect.NewUnaryHandler(RequestCheckoutProcedure, svc.RequestCheckout, opts...))
	mux.Handle(StartSettlingProcedure, connect.NewUnaryHandler(StartSettlingProcedure, svc.StartSettling, opts...))
	mux.Handle(SubmitChipsProcedure, connect.NewUnaryHandler(SubmitChipsProcedure, svc.SubmitChips, opts...))
	mux.Handle(ManagerInputProcedure, connect.NewUnaryHandler(ManagerInputProcedure, svc.ManagerInput, opts...))
	mux.Handle(LockInputProcedure, connect.NewUnaryHandler(LockInputProcedure, svc.LockInput, opts...))
	mux.Handle(UnlockInputProcedure, connect.NewUnaryHandler(UnlockInputProcedure, svc.UnlockInput, opts...))
	mux.Handle(ValidateChipsProcedure, connect.NewUnaryHandler(ValidateChipsProcedure, svc.ValidateChips, opts...))
	mux.Handle(RejectChipsProcedure, connect.NewUnaryHandler(RejectChipsProcedure, svc.RejectChips, opts...))
	mux.Handle(DeductCreditProcedure, connect.NewUnaryHandler(DeductCreditProcedure, svc.DeductCredit, opts...))
	mux.Handle(GetPoolProcedure, connect.NewUnaryHandler(GetPoolProcedure, svc.GetPool, opts...))
	mux.Handle(GetDistributionSuggestionProcedure, connect.NewUnaryHandler(GetDistributionSuggestionProcedure, svc.GetDistributionSuggestion, opts...))
	mux.Handle(AcceptDistributionProcedure, connect.NewUnaryHandler(AcceptDistributionProcedure, svc.AcceptDistribution, opts...))
	mux.Handle(OverrideDistributionProcedure, connect.NewUnaryHandler(OverrideDistributionProcedure, svc.OverrideDistribution, opts...))
	mux.Handle(ConfirmDistributionProcedure, connect.NewUnaryHandler(ConfirmDistributionProcedure, svc.ConfirmDistribution, opts...))
	mux.Handle(ConfirmAllProcedure, connect.NewUnaryHandler(ConfirmAllProcedure, svc.ConfirmAll, opts...))
	mux.Handle(CheckoutAllProcedure, connect.NewUnaryHandler(CheckoutAllProcedure, svc.CheckoutAll, opts...))
	mux.Handle(CloseGameProcedure, connect.NewUnaryHandler(CloseGameProcedure, svc.CloseGame, opts...))
	mux.Handle(CheckInvariantsProcedure, connect.NewUnaryHandler(CheckInvariantsProcedure, svc.CheckInvariants, opts...))
	mux.Handle(WatchGameProcedure, connect.NewServerStreamHandler(WatchGameProcedure, svc.WatchGame, opts...))
	return "/" + ServiceName + "/", mux
}

// UnimplementedGameServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedGameServiceHandler struct{}

func (UnimplementedGameServiceHandler) CreateGame(context.Context, *connect.Request[CreateGameRequest]) (*connect.Response[SessionResponse], error) {
	return nil, unimplemented(CreateGameProcedure)
}

func (UnimplementedGameServiceHandler) JoinGame(context.Context, *connect.Request[JoinGameRequest]) (*connect.Response[SessionResponse], error) {
	return nil, unimplemented(JoinGameProcedure)
}

func (UnimplementedGameServiceHandler) GetGame(context.Context, *connect.Request[Empty]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(GetGameProcedure)
}

func (UnimplementedGameServiceHandler) ListRequests(context.Context, *connect.Request[ListRequestsRequest]) (*connect.Response[ListRequestsResponse], error) {
	return nil, unimplemented(ListRequestsProcedure)
}

func (UnimplementedGameServiceHandler) GetLedger(context.Context, *connect.Request[Empty]) (*connect.Response[LedgerResponse], error) {
	return nil, unimplemented(GetLedgerProcedure)
}

func (UnimplementedGameServiceHandler) SubmitRequest(context.Context, *connect.Request[SubmitRequestRequest]) (*connect.Response[SubmitRequestResponse], error) {
	return nil, unimplemented(SubmitRequestProcedure)
}

func (UnimplementedGameServiceHandler) ApproveRequest(context.Context, *connect.Request[ResolveRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(ApproveRequestProcedure)
}

func (UnimplementedGameServiceHandler) DeclineRequest(context.Context, *connect.Request[ResolveRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(DeclineRequestProcedure)
}

func (UnimplementedGameServiceHandler) EditApproveRequest(context.Context, *connect.Request[ResolveRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(EditApproveRequestProcedure)
}

func (UnimplementedGameServiceHandler) DeactivatePlayer(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(DeactivatePlayerProcedure)
}

func (UnimplementedGameServiceHandler) RequestCheckout(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(RequestCheckoutProcedure)
}

func (UnimplementedGameServiceHandler) StartSettling(context.Context, *connect.Request[Empty]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(StartSettlingProcedure)
}

func (UnimplementedGameServiceHandler) SubmitChips(context.Context, *connect.Request[ChipCountRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(SubmitChipsProcedure)
}

func (UnimplementedGameServiceHandler) ManagerInput(context.Context, *connect.Request[ChipCountRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(ManagerInputProcedure)
}

func (UnimplementedGameServiceHandler) LockInput(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(LockInputProcedure)
}

func (UnimplementedGameServiceHandler) UnlockInput(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(UnlockInputProcedure)
}

func (UnimplementedGameServiceHandler) ValidateChips(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(ValidateChipsProcedure)
}

func (UnimplementedGameServiceHandler) RejectChips(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(RejectChipsProcedure)
}

func (UnimplementedGameServiceHandler) DeductCredit(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(DeductCreditProcedure)
}

func (UnimplementedGameServiceHandler) GetPool(context.Context, *connect.Request[Empty]) (*connect.Response[PoolResponse], error) {
	return nil, unimplemented(GetPoolProcedure)
}

func (UnimplementedGameServiceHandler) GetDistributionSuggestion(context.Context, *connect.Request[Empty]) (*connect.Response[DistributionsResponse], error) {
	return nil, unimplemented(GetDistributionSuggestionProcedure)
}

func (UnimplementedGameServiceHandler) AcceptDistribution(context.Context, *connect.Request[Empty]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(AcceptDistributionProcedure)
}

func (UnimplementedGameServiceHandler) OverrideDistribution(context.Context, *connect.Request[OverrideDistributionRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(OverrideDistributionProcedure)
}

func (UnimplementedGameServiceHandler) ConfirmDistribution(context.Context, *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(ConfirmDistributionProcedure)
}

func (UnimplementedGameServiceHandler) ConfirmAll(context.Context, *connect.Request[Empty]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(ConfirmAllProcedure)
}

func (UnimplementedGameServiceHandler) CheckoutAll(context.Context, *connect.Request[CheckoutAllRequest]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(CheckoutAllProcedure)
}

func (UnimplementedGameServiceHandler) CloseGame(context.Context, *connect.Request[Empty]) (*connect.Response[GameResponse], error) {
	return nil, unimplemented(CloseGameProcedure)
}

func (UnimplementedGameServiceHandler) CheckInvariants(context.Context, *connect.Request[Empty]) (*connect.Response[Empty], error) {
	return nil, unimplemented(CheckInvariantsProcedure)
}

func (UnimplementedGameServiceHandler) WatchGame(context.Context, *connect.Request[Empty], *connect.ServerStream[Event]) error {
	return unimplemented(WatchGameProcedure)
}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(procedure+" is not implemented"))
}

// GameServiceClient calls GameService procedures.
type GameServiceClient struct {
	createGame                *connect.Client[CreateGameRequest, SessionResponse]
	joinGame                  *connect.Client[JoinGameRequest, SessionResponse]
	getGame                   *connect.Client[Empty, GameResponse]
	listRequests              *connect.Client[ListRequestsRequest, ListRequestsResponse]
	getLedger                 *connect.Client[Empty, LedgerResponse]
	submitRequest             *connect.Client[SubmitRequestRequest, SubmitRequestResponse]
	approveRequest            *connect.Client[ResolveRequest, GameResponse]
	declineRequest            *connect.Client[ResolveRequest, GameResponse]
	editApproveRequest        *connect.Client[ResolveRequest, GameResponse]
	deactivatePlayer          *connect.Client[PlayerRequest, GameResponse]
	requestCheckout           *connect.Client[PlayerRequest, GameResponse]
	startSettling             *connect.Client[Empty, GameResponse]
	submitChips               *connect.Client[ChipCountRequest, GameResponse]
	managerInput              *connect.Client[ChipCountRequest, GameResponse]
	lockInput                 *connect.Client[PlayerRequest, GameResponse]
	unlockInput               *connect.Client[PlayerRequest, GameResponse]
	validateChips             *connect.Client[PlayerRequest, GameResponse]
	rejectChips               *connect.Client[PlayerRequest, GameResponse]
	deductCredit              *connect.Client[PlayerRequest, GameResponse]
	getPool                   *connect.Client[Empty, PoolResponse]
	getDistributionSuggestion *connect.Client[Empty, DistributionsResponse]
	acceptDistribution        *connect.Client[Empty, GameResponse]
	overrideDistribution      *connect.Client[OverrideDistributionRequest, GameResponse]
	confirmDistribution       *connect.Client[PlayerRequest, GameResponse]
	confirmAll                *connect.Client[Empty, GameResponse]
	checkoutAll               *connect.Client[CheckoutAllRequest, GameResponse]
	closeGame                 *connect.Client[Empty, GameResponse]
	checkInvariants           *connect.Client[Empty, Empty]
	watchGame                 *connect.Client[Empty, Event]
}

// NewGameServiceClient creates a client for the service at baseURL.
func NewGameServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GameServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &GameServiceClient{
		createGame:                connect.NewClient[CreateGameRequest, SessionResponse](httpClient, baseURL+CreateGameProcedure, opts...),
		joinGame:                  connect.NewClient[JoinGameRequest, SessionResponse](httpClient, baseURL+JoinGameProcedure, opts...),
		getGame:                   connect.NewClient[Empty, GameResponse](httpClient, baseURL+GetGameProcedure, opts...),
		listRequests:              connect.NewClient[ListRequestsRequest, ListRequestsResponse](httpClient, baseURL+ListRequestsProcedure, opts...),
		getLedger:                 connect.NewClient[Empty, LedgerResponse](httpClient, baseURL+GetLedgerProcedure, opts...),
		submitRequest:             connect.NewClient[SubmitRequestRequest, SubmitRequestResponse](httpClient, baseURL+SubmitRequestProcedure, opts...),
		approveRequest:            connect.NewClient[ResolveRequest, GameResponse](httpClient, baseURL+ApproveRequestProcedure, opts...),
		declineRequest:            connect.NewClient[ResolveRequest, GameResponse](httpClient, baseURL+DeclineRequestProcedure, opts...),
		editApproveRequest:        connect.NewClient[ResolveRequest, GameResponse](httpClient, baseURL+EditApproveRequestProcedure, opts...),
		deactivatePlayer:          connect.NewClient[PlayerRequest, GameResponse](httpClient, baseURL+DeactivatePlayerProcedure, opts...),
		requestCheckout:           connect.NewClient[PlayerRequest, GameResponse](httpClient, baseURL+RequestCheckoutProcedure, opts...),
		startSettling:             connect.NewClient[Empty, GameResponse](httpClient, baseURL+StartSettlingProcedure, opts...),
		submitChips:               connect.NewClient[ChipCountRequest, GameResponse](httpClient, baseURL+SubmitChipsProcedure, opts...),
		managerInput:              connect.NewClient[ChipCountRequest, GameResponse](httpClient, baseURL+ManagerInputProcedure, opts...),
		lockInput:                 connect.NewClient[PlayerRequest, GameResponse](httpClient, baseURL+LockInputProcedure, opts...),
		unlockInput:               connect.NewClient[PlayerRequest, GameResponse](httpClient, baseURL+UnlockInputProcedure, opts...),
		validateChips:             connect.NewClient[PlayerRequest, GameResponse](httpClient, baseURL+ValidateChipsProcedure, opts...),
		rejectChips:               connect.NewClient[PlayerRequest, GameResponse](httpClient, baseURL+RejectChipsProcedure, opts...),
		deductCredit:              connect.NewClient[PlayerRequest, GameResponse](httpClient, baseURL+DeductCreditProcedure, opts...),
		getPool:                   connect.NewClient[Empty, PoolResponse](httpClient, baseURL+GetPoolProcedure, opts...),
		getDistributionSuggestion: connect.NewClient[Empty, DistributionsResponse](httpClient, baseURL+GetDistributionSuggestionProcedure, opts...),
		acceptDistribution:        connect.NewClient[Empty, GameResponse](httpClient, baseURL+AcceptDistributionProcedure, opts...),
		overrideDistribution:      connect.NewClient[OverrideDistributionRequest, GameResponse](httpClient, baseURL+OverrideDistributionProcedure, opts...),
		confirmDistribution:       connect.NewClient[PlayerRequest, GameResponse](httpClient, baseURL+ConfirmDistributionProcedure, opts...),
		confirmAll:                connect.NewClient[Empty, GameResponse](httpClient, baseURL+ConfirmAllProcedure, opts...),
		checkoutAll:               connect.NewClient[CheckoutAllRequest, GameResponse](httpClient, baseURL+CheckoutAllProcedure, opts...),
		closeGame:                 connect.NewClient[Empty, GameResponse](httpClient, baseURL+CloseGameProcedure, opts...),
		checkInvariants:           connect.NewClient[Empty, Empty](httpClient, baseURL+CheckInvariantsProcedure, opts...),
		watchGame:                 connect.NewClient[Empty, Event](httpClient, baseURL+WatchGameProcedure, opts...),
	}
}

// CreateGame calls pokerbank.v1.GameService.CreateGame.
func (c *GameServiceClient) CreateGame(ctx context.Context, req *connect.Request[CreateGameRequest]) (*connect.Response[SessionResponse], error) {
	return c.createGame.CallUnary(ctx, req)
}

// JoinGame calls pokerbank.v1.GameService.JoinGame.
func (c *GameServiceClient) JoinGame(ctx context.Context, req *connect.Request[JoinGameRequest]) (*connect.Response[SessionResponse], error) {
	return c.joinGame.CallUnary(ctx, req)
}

// GetGame calls pokerbank.v1.GameService.GetGame.
func (c *GameServiceClient) GetGame(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[GameResponse], error) {
	return c.getGame.CallUnary(ctx, req)
}

// ListRequests calls pokerbank.v1.GameService.ListRequests.
func (c *GameServiceClient) ListRequests(ctx context.Context, req *connect.Request[ListRequestsRequest]) (*connect.Response[ListRequestsResponse], error) {
	return c.listRequests.CallUnary(ctx, req)
}

// GetLedger calls pokerbank.v1.GameService.GetLedger.
func (c *GameServiceClient) GetLedger(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[LedgerResponse], error) {
	return c.getLedger.CallUnary(ctx, req)
}

// SubmitRequest calls pokerbank.v1.GameService.SubmitRequest.
func (c *GameServiceClient) SubmitRequest(ctx context.Context, req *connect.Request[SubmitRequestRequest]) (*connect.Response[SubmitRequestResponse], error) {
	return c.submitRequest.CallUnary(ctx, req)
}

// ApproveRequest calls pokerbank.v1.GameService.ApproveRequest.
func (c *GameServiceClient) ApproveRequest(ctx context.Context, req *connect.Request[ResolveRequest]) (*connect.Response[GameResponse], error) {
	return c.approveRequest.CallUnary(ctx, req)
}

// DeclineRequest calls pokerbank.v1.GameService.DeclineRequest.
func (c *GameServiceClient) DeclineRequest(ctx context.Context, req *connect.Request[ResolveRequest]) (*connect.Response[GameResponse], error) {
	return c.declineRequest.CallUnary(ctx, req)
}

// EditApproveRequest calls pokerbank.v1.GameService.EditApproveRequest.
func (c *GameServiceClient) EditApproveRequest(ctx context.Context, req *connect.Request[ResolveRequest]) (*connect.Response[GameResponse], error) {
	return c.editApproveRequest.CallUnary(ctx, req)
}

// DeactivatePlayer calls pokerbank.v1.GameService.DeactivatePlayer.
func (c *GameServiceClient) DeactivatePlayer(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return c.deactivatePlayer.CallUnary(ctx, req)
}

// RequestCheckout calls pokerbank.v1.GameService.RequestCheckout.
func (c *GameServiceClient) RequestCheckout(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return c.requestCheckout.CallUnary(ctx, req)
}

// StartSettling calls pokerbank.v1.GameService.StartSettling.
func (c *GameServiceClient) StartSettling(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[GameResponse], error) {
	return c.startSettling.CallUnary(ctx, req)
}

// SubmitChips calls pokerbank.v1.GameService.SubmitChips.
func (c *GameServiceClient) SubmitChips(ctx context.Context, req *connect.Request[ChipCountRequest]) (*connect.Response[GameResponse], error) {
	return c.submitChips.CallUnary(ctx, req)
}

// ManagerInput calls pokerbank.v1.GameService.ManagerInput.
func (c *GameServiceClient) ManagerInput(ctx context.Context, req *connect.Request[ChipCountRequest]) (*connect.Response[GameResponse], error) {
	return c.managerInput.CallUnary(ctx, req)
}

// LockInput calls pokerbank.v1.GameService.LockInput.
func (c *GameServiceClient) LockInput(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return c.lockInput.CallUnary(ctx, req)
}

// UnlockInput calls pokerbank.v1.GameService.UnlockInput.
func (c *GameServiceClient) UnlockInput(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return c.unlockInput.CallUnary(ctx, req)
}

// ValidateChips calls pokerbank.v1.GameService.ValidateChips.
func (c *GameServiceClient) ValidateChips(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return c.validateChips.CallUnary(ctx, req)
}

// RejectChips calls pokerbank.v1.GameService.RejectChips.
func (c *GameServiceClient) RejectChips(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return c.rejectChips.CallUnary(ctx, req)
}

// DeductCredit calls pokerbank.v1.GameService.DeductCredit.
func (c *GameServiceClient) DeductCredit(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return c.deductCredit.CallUnary(ctx, req)
}

// GetPool calls pokerbank.v1.GameService.GetPool.
func (c *GameServiceClient) GetPool(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[PoolResponse], error) {
	return c.getPool.CallUnary(ctx, req)
}

// GetDistributionSuggestion calls pokerbank.v1.GameService.GetDistributionSuggestion.
func (c *GameServiceClient) GetDistributionSuggestion(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[DistributionsResponse], error) {
	return c.getDistributionSuggestion.CallUnary(ctx, req)
}

// AcceptDistribution calls pokerbank.v1.GameService.AcceptDistribution.
func (c *GameServiceClient) AcceptDistribution(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[GameResponse], error) {
	return c.acceptDistribution.CallUnary(ctx, req)
}

// OverrideDistribution calls pokerbank.v1.GameService.OverrideDistribution.
func (c *GameServiceClient) OverrideDistribution(ctx context.Context, req *connect.Request[OverrideDistributionRequest]) (*connect.Response[GameResponse], error) {
	return c.overrideDistribution.CallUnary(ctx, req)
}

// ConfirmDistribution calls pokerbank.v1.GameService.ConfirmDistribution.
func (c *GameServiceClient) ConfirmDistribution(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[GameResponse], error) {
	return c.confirmDistribution.CallUnary(ctx, req)
}

// ConfirmAll calls pokerbank.v1.GameService.ConfirmAll.
func (c *GameServiceClient) ConfirmAll(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[GameResponse], error) {
	return c.confirmAll.CallUnary(ctx, req)
}

// CheckoutAll calls pokerbank.v1.GameService.CheckoutAll.
func (c *GameServiceClient) CheckoutAll(ctx context.Context, req *connect.Request[CheckoutAllRequest]) (*connect.Response[GameResponse], error) {
	return c.checkoutAll.CallUnary(ctx, req)
}

// CloseGame calls pokerbank.v1.GameService.CloseGame.
func (c *GameServiceClient) CloseGame(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[GameResponse], error) {
	return c.closeGame.CallUnary(ctx, req)
}

// CheckInvariants calls pokerbank.v1.GameService.CheckInvariants.
func (c *GameServiceClient) CheckInvariants(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[Empty], error) {
	return c.checkInvariants.CallUnary(ctx, req)
}

// WatchGame calls pokerbank.v1.GameService.WatchGame.
func (c *GameServiceClient) WatchGame(ctx context.Context, req *connect.Request[Empty]) (*connect.ServerStreamForClient[Event], error) {
	return c.watchGame.CallServerStream(ctx, req)
}
