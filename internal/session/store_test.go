package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/expromedia/Marx/internal/domain/user"
	"github.com/expromedia/Marx/internal/repo/memory"
	"github.com/expromedia/Marx/internal/session"
	"github.com/stretchr/testify/require"
)

func newStore() (*session.Store, *memory.StorageRepo) {
	backend := memory.NewStorageRepo()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return session.NewStore(backend, "lmnts", log), backend
}

func TestStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()

	u := user.User{Username: "info@expromedia.com.ng", DisplayName: "John Smith", Role: user.RoleAdmin}

	got, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	require.Nil(t, got, "fresh client has no session")

	require.NoError(t, store.Save(ctx, "c1", u))

	got, err = store.Load(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, u, *got)

	require.NoError(t, store.Clear(ctx, "c1"))

	got, err = store.Load(ctx, "c1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestStore_ClearKeepsTheme(t *testing.T) {
	ctx := context.Background()
	store, backend := newStore()

	require.NoError(t, store.SetTheme(ctx, "c1", session.ThemeDark))
	require.NoError(t, store.Save(ctx, "c1", user.User{Username: "s", DisplayName: "S", Role: user.RoleStaff}))
	require.NoError(t, store.Clear(ctx, "c1"))

	theme, err := store.Theme(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, session.ThemeDark, theme)

	raw, err := backend.Get(ctx, "c1", "lmnts_theme")
	require.NoError(t, err)
	require.Equal(t, "dark", raw)
}

func TestStore_SaveRecordsDefaultTheme(t *testing.T) {
	ctx := context.Background()
	store, backend := newStore()

	require.NoError(t, store.Save(ctx, "c1", user.User{Username: "s", DisplayName: "S", Role: user.RoleStaff}))

	raw, err := backend.Get(ctx, "c1", store.ThemeKey())
	require.NoError(t, err)
	require.Equal(t, "light", raw)
}

func TestStore_CorruptRecordDegradesToLoggedOut(t *testing.T) {
	ctx := context.Background()
	store, backend := newStore()

	for _, raw := range []string{"{not json", `{"username":"x","role":"OWNER"}`, `null`} {
		require.NoError(t, backend.Set(ctx, "c1", store.UserKey(), raw))

		got, err := store.Load(ctx, "c1")
		require.NoError(t, err, "raw %q", raw)
		require.Nil(t, got, "raw %q", raw)

		_, err = backend.Get(ctx, "c1", store.UserKey())
		require.ErrorIs(t, err, session.ErrKeyNotFound, "corrupt record should be removed")
	}
}

func TestStore_ClientsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore()

	require.NoError(t, store.Save(ctx, "c1", user.User{Username: "a", DisplayName: "A", Role: user.RoleAdmin}))

	got, err := store.Load(ctx, "c2")
	require.NoError(t, err)
	require.Nil(t, got)
}

type failingStorage struct{ err error }

func (f failingStorage) Get(context.Context, string, string) (string, error) { return "", f.err }
func (f failingStorage) Set(context.Context, string, string, string) error  { return f.err }
func (f failingStorage) Delete(context.Context, string, string) error       { return f.err }

func TestStore_BackendErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend down")
	store := session.NewStore(failingStorage{err: boom}, "", nil)

	_, err := store.Load(ctx, "c1")
	require.ErrorIs(t, err, boom)

	err = store.Save(ctx, "c1", user.User{Username: "a", Role: user.RoleAdmin})
	require.ErrorIs(t, err, boom)

	require.ErrorIs(t, store.Clear(ctx, "c1"), boom)
}

func TestParseTheme(t *testing.T) {
	_, err := session.ParseTheme("sepia")
	require.ErrorIs(t, err, session.ErrInvalidTheme)

	th, err := session.ParseTheme("dark")
	require.NoError(t, err)
	require.Equal(t, session.ThemeDark, th)
}
