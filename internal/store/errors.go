package store

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
)

// MapError converts a store failure into the API error taxonomy. entity names
// the addressed row for NotFound; conflict is the message used for
// uniqueness violations.
func MapError(err error, entity, conflict string) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.As(err) != nil:
		return err
	case errors.Is(err, ErrNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	case errors.Is(err, ErrConflict):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, conflict)
	case errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store timed out")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable")
	}
}

// Bound applies the per-call store timeout. A non-positive timeout only adds
// cancellation.
func Bound(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
