// Package sessiontest holds the behaviour every session.Storage backend must
// share, so the memory, redis and postgres repos run the same cases.
package sessiontest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/expromedia/Marx/internal/domain/user"
	"github.com/expromedia/Marx/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Run exercises backend directly and through a session.Store. Client ids are
// random so the cases can run against a shared server.
func Run(t *testing.T, backend session.Storage) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := session.NewStore(backend, "lmnts", log)
	admin := user.User{Username: "info@expromedia.com.ng", DisplayName: "John Smith", Role: user.RoleAdmin}

	tests := []struct {
		name string
		run  func(t *testing.T, ctx context.Context, clientID string)
	}{
		{
			name: "missing key",
			run: func(t *testing.T, ctx context.Context, clientID string) {
				_, err := backend.Get(ctx, clientID, store.UserKey())
				require.ErrorIs(t, err, session.ErrKeyNotFound)

				require.NoError(t, backend.Delete(ctx, clientID, store.UserKey()), "deleting a missing key is a no-op")
			},
		},
		{
			name: "set overwrites",
			run: func(t *testing.T, ctx context.Context, clientID string) {
				require.NoError(t, backend.Set(ctx, clientID, "k", "one"))
				require.NoError(t, backend.Set(ctx, clientID, "k", "two"))

				v, err := backend.Get(ctx, clientID, "k")
				require.NoError(t, err)
				require.Equal(t, "two", v)
			},
		},
		{
			name: "save load clear",
			run: func(t *testing.T, ctx context.Context, clientID string) {
				got, err := store.Load(ctx, clientID)
				require.NoError(t, err)
				require.Nil(t, got)

				require.NoError(t, store.Save(ctx, clientID, admin))

				got, err = store.Load(ctx, clientID)
				require.NoError(t, err)
				require.NotNil(t, got)
				require.Equal(t, admin, *got)

				require.NoError(t, store.Clear(ctx, clientID))

				got, err = store.Load(ctx, clientID)
				require.NoError(t, err)
				require.Nil(t, got)
			},
		},
		{
			name: "clear keeps theme",
			run: func(t *testing.T, ctx context.Context, clientID string) {
				require.NoError(t, store.SetTheme(ctx, clientID, session.ThemeDark))
				require.NoError(t, store.Save(ctx, clientID, admin))
				require.NoError(t, store.Clear(ctx, clientID))

				theme, err := store.Theme(ctx, clientID)
				require.NoError(t, err)
				require.Equal(t, session.ThemeDark, theme)

				raw, err := backend.Get(ctx, clientID, store.ThemeKey())
				require.NoError(t, err)
				require.Equal(t, "dark", raw)
			},
		},
		{
			name: "clients are isolated",
			run: func(t *testing.T, ctx context.Context, clientID string) {
				require.NoError(t, store.Save(ctx, clientID, admin))

				got, err := store.Load(ctx, uuid.NewString())
				require.NoError(t, err)
				require.Nil(t, got)

				require.NoError(t, store.Clear(ctx, clientID))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			clientID := uuid.NewString()
			t.Cleanup(func() {
				_ = backend.Delete(context.Background(), clientID, store.UserKey())
				_ = backend.Delete(context.Background(), clientID, store.ThemeKey())
				_ = backend.Delete(context.Background(), clientID, "k")
			})

			tt.run(t, ctx, clientID)
		})
	}
}
