package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/pokerbank/internal/auth"
	"github.com/mmynk/pokerbank/internal/engine"
)

// connectError maps engine and auth errors to Connect codes. Anything
// unrecognized is Internal.
func connectError(op string, err error) error {
	code := connect.CodeInternal
	switch {
	case errors.Is(err, engine.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, engine.ErrValidation), errors.Is(err, auth.ErrWeakPasscode):
		code = connect.CodeInvalidArgument
	case errors.Is(err, engine.ErrAlreadyResolved):
		code = connect.CodeAborted
	case errors.Is(err, engine.ErrInvalidState), errors.Is(err, engine.ErrInvalidTransition):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, engine.ErrForbidden), errors.Is(err, auth.ErrWrongPasscode):
		code = connect.CodePermissionDenied
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	}

	if code == connect.CodeInternal {
		slog.Error(op+" failed", "error", err, "internal", engine.IsInternal(err))
	} else {
		slog.Warn(op+" rejected", "code", code, "error", err)
	}
	return connect.NewError(code, err)
}
