package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
)

func TestMapError(t *testing.T) {
	require.NoError(t, MapError(nil, "asset", ""))

	notFound := MapError(ErrNotFound, "asset", "")
	require.True(t, pkgerrors.IsCode(notFound, pkgerrors.CodeNotFound))
	require.Equal(t, "asset not found", pkgerrors.As(notFound).Message())

	conflict := MapError(fmt.Errorf("%w: dup", ErrConflict), "asset", "serial taken")
	require.True(t, pkgerrors.IsCode(conflict, pkgerrors.CodeConflict))
	require.Equal(t, "serial taken", pkgerrors.As(conflict).Message())

	timeout := MapError(context.DeadlineExceeded, "asset", "")
	require.True(t, pkgerrors.IsCode(timeout, pkgerrors.CodeDependency))
	require.Equal(t, "store timed out", pkgerrors.As(timeout).Message())

	require.True(t, pkgerrors.IsCode(MapError(errors.New("io"), "asset", ""), pkgerrors.CodeDependency))

	typed := pkgerrors.New(pkgerrors.CodeStateConflict, "nope")
	require.Same(t, typed, MapError(typed, "asset", ""))
}

func TestBound(t *testing.T) {
	ctx, cancel := Bound(context.Background(), time.Millisecond)
	defer cancel()
	_, ok := ctx.Deadline()
	require.True(t, ok)

	ctx, cancel = Bound(context.Background(), 0)
	defer cancel()
	_, ok = ctx.Deadline()
	require.False(t, ok)
}
