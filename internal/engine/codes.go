package engine

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// CodeLength is the length of generated join codes.
	CodeLength = 6

	// CodeChars excludes ambiguous characters (0/O, 1/I).
	CodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxCodeAttempts = 32
)

// generateCode creates a random join code.
func generateCode() (string, error) {
	code := make([]byte, CodeLength)
	for i := range CodeLength {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(CodeChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		code[i] = CodeChars[n.Int64()]
	}
	return string(code), nil
}

// uniqueCode generates join codes until one is not taken.
func (e *Engine) uniqueCode(ctx context.Context) (string, error) {
	for range maxCodeAttempts {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		taken, err := e.store.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free join code after %d attempts", maxCodeAttempts)
}
