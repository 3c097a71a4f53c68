package auth

import (
	"errors"
	"fmt"

	"github.com/mmynk/pokerbank/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWrongPasscode = errors.New("wrong game passcode")
	ErrWeakPasscode  = errors.New("passcode must be 4 to 64 characters")
)

// Authenticator decides whether a caller may take a seat in a game.
// This abstraction allows swapping the join check (passcode, invite links, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Protect turns a credential chosen by the manager into the value stored
	// on the game. An empty credential leaves the game open.
	Protect(credential string) (string, error)

	// Admit verifies a joining caller's credential against the game.
	Admit(game *models.Game, credential string) error
}

// PasscodeAuthenticator guards games with an optional bcrypt-hashed passcode.
type PasscodeAuthenticator struct {
	cost int
}

// NewPasscodeAuthenticator creates a passcode authenticator. cost is the
// bcrypt cost; zero means bcrypt.DefaultCost.
func NewPasscodeAuthenticator(cost int) *PasscodeAuthenticator {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasscodeAuthenticator{cost: cost}
}

// ValidateCredential checks passcode length.
func (a *PasscodeAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 4 || len(credential) > 64 {
		return ErrWeakPasscode
	}
	return nil
}

// Protect hashes the passcode.
func (a *PasscodeAuthenticator) Protect(credential string) (string, error) {
	if credential == "" {
		return "", nil
	}
	if err := a.ValidateCredential(credential); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passcode: %w", err)
	}
	return string(hash), nil
}

// Admit compares the passcode with the game's hash. Open games admit anyone.
func (a *PasscodeAuthenticator) Admit(game *models.Game, credential string) error {
	if game.PasscodeHash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(game.PasscodeHash), []byte(credential)); err != nil {
		return ErrWrongPasscode
	}
	return nil
}
