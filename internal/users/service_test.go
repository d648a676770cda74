package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockpile-ims/stockpile/internal/shared"
)

func TestAddAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil)

	require.NoError(t, svc.Add(ctx, "alice", "s3cret", "Staff"))

	err := svc.Add(ctx, "alice", "other", "Staff")
	require.ErrorIs(t, err, shared.ErrDuplicateKey)

	err = svc.Add(ctx, "", "pw", "Staff")
	require.ErrorIs(t, err, shared.ErrValidation)

	user, err := svc.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "Staff", user.Role)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "pw")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestEnsureDefaultAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil)

	require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin", "admin"))
	require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin", "different"))

	// First password wins; the second call must not rehash.
	_, err := svc.Authenticate(ctx, "admin", "admin")
	require.NoError(t, err)
}

func TestUsersRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := NewService(nil)
	require.NoError(t, svc.Add(ctx, "admin", "admin", "Admin"))
	require.NoError(t, svc.Add(ctx, "bob", "hunter2", "Staff"))
	require.NoError(t, svc.Save(ctx, dir))

	reloaded := NewService(nil)
	require.NoError(t, reloaded.Load(ctx, dir))
	require.Len(t, reloaded.All(ctx), 2)

	// Hashes survive the round trip and still verify.
	_, err := reloaded.Authenticate(ctx, "bob", "hunter2")
	require.NoError(t, err)
}
