package fraud

import (
	"context"
	"errors"

	"github.com/richxcame/gear-rental/pkg/common"
)

// Errors returned by the engine. Both wrap common.ErrNotFound.
var (
	ErrUserNotFound    = common.NewNotFoundError("user not found", nil)
	ErrListingNotFound = common.NewNotFoundError("listing not found", nil)
)

// ErrInvalidActionType is returned for an action outside the gated set
var ErrInvalidActionType = common.NewBadRequestError("invalid action type", nil)

// IsNotFound reports whether err means the referenced user or listing is absent
func IsNotFound(err error) bool {
	return common.IsNotFound(err)
}

// IsTransient reports whether err is a store, cache or deadline failure the
// caller may retry
func IsTransient(err error) bool {
	return common.IsTransient(err)
}

// transient wraps err as a TransientError unless it already carries a
// NotFound, Transient or BadRequest classification.
func transient(message string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return common.NewTransientError(message, err)
}

// deadlineError maps context expiry or cancellation to a TransientError
func deadlineError(ctx context.Context, err error) error {
	if err == nil || common.IsNotFound(err) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return common.NewTransientError("fraud assessment timed out", ctxErr)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return common.NewTransientError("fraud assessment timed out", err)
	}
	return err
}
