package middleware

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/pokerbank/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// PlayerIDKey is the context key for the authenticated player ID.
	PlayerIDKey contextKey = "player_id"
	// GameIDKey is the context key for the game the session belongs to.
	GameIDKey contextKey = "game_id"
	// ManagerKey is the context key marking the game's manager.
	ManagerKey contextKey = "manager"
)

// GetPlayerID extracts the player ID from the context.
// Returns empty string if not found.
func GetPlayerID(ctx context.Context) string {
	playerID, _ := ctx.Value(PlayerIDKey).(string)
	return playerID
}

// GetGameID extracts the session's game ID from the context.
// Returns empty string if not found.
func GetGameID(ctx context.Context) string {
	gameID, _ := ctx.Value(GameIDKey).(string)
	return gameID
}

// IsManager reports whether the session belongs to the game's manager.
func IsManager(ctx context.Context) bool {
	manager, _ := ctx.Value(ManagerKey).(bool)
	return manager
}

// WithSession adds the claims' identity to ctx.
func WithSession(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, PlayerIDKey, claims.PlayerID)
	ctx = context.WithValue(ctx, GameIDKey, claims.GameID)
	ctx = context.WithValue(ctx, ManagerKey, claims.Manager)
	return ctx
}

// authInterceptor validates session tokens on unary and server-streaming
// calls. Procedures in public are let through without a token.
type authInterceptor struct {
	jwtManager *auth.JWTManager
	public     map[string]bool
}

// RequireAuth returns an interceptor that validates the bearer token from the
// Authorization header and adds the session to the request context.
func RequireAuth(jwtManager *auth.JWTManager, public map[string]bool) connect.Interceptor {
	return &authInterceptor{jwtManager: jwtManager, public: public}
}

func (i *authInterceptor) authenticate(ctx context.Context, procedure string, header http.Header) (context.Context, error) {
	if i.public[procedure] {
		return ctx, nil
	}

	authHeader := header.Get("Authorization")
	if authHeader == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	// Parse Bearer token
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}

	claims, err := i.jwtManager.Validate(parts[1])
	if err != nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}
	return WithSession(ctx, claims), nil
}

func (i *authInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		ctx, err := i.authenticate(ctx, req.Spec().Procedure, req.Header())
		if err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func (i *authInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *authInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		ctx, err := i.authenticate(ctx, conn.Spec().Procedure, conn.RequestHeader())
		if err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

// BearerToken returns a client interceptor that sends token on every call.
func BearerToken(token string) connect.Interceptor {
	return &bearerInterceptor{header: "Bearer " + token}
}

type bearerInterceptor struct {
	header string
}

func (b *bearerInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			req.Header().Set("Authorization", b.header)
		}
		return next(ctx, req)
	}
}

func (b *bearerInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return func(ctx context.Context, spec connect.Spec) connect.StreamingClientConn {
		conn := next(ctx, spec)
		conn.RequestHeader().Set("Authorization", b.header)
		return conn
	}
}

func (b *bearerInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
