package engine

import (
	"errors"

	"github.com/mmynk/pokerbank/internal/calculator"
)

// Errors returned by engine operations. They are wrapped with context, so
// callers match them with errors.Is.
var (
	// ErrInvalidState means the game or player is in the wrong phase.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidTransition means a checkout transition's source state did not match.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrAlreadyResolved means another caller already resolved the request.
	ErrAlreadyResolved = errors.New("already resolved")

	// ErrValidation means the input was malformed.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means an unknown game, player or request.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the acting player may not perform the operation.
	ErrForbidden = errors.New("not permitted")

	// ErrInsufficientPool means cash plus claimable credit cannot cover the
	// payouts. It implies a ledger bug upstream.
	ErrInsufficientPool = calculator.ErrInsufficientPool

	// ErrInvariant means an internal consistency check failed.
	ErrInvariant = errors.New("invariant violation")
)

// IsInternal reports whether err is a consistency fault that should alert.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInvariant) || errors.Is(err, ErrInsufficientPool)
}
