package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/expromedia/Marx/internal/redisclient"
	"github.com/expromedia/Marx/internal/session"
	"github.com/expromedia/Marx/internal/session/sessiontest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStorageRepo_KeysAreSeparated(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "", want: "portal:storage:c1"},
		{prefix: "lmnts", want: "lmnts:c1"},
		{prefix: "lmnts:storage:", want: "lmnts:storage:c1"},
	}

	for _, tt := range tests {
		r := NewStorageRepo(nil, tt.prefix, 0)
		require.Equal(t, tt.want, r.hashKey("c1"), "prefix %q", tt.prefix)
	}
}

func newLiveRepo(t *testing.T) *StorageRepo {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rdb, err := redisclient.New(context.Background(), redisclient.Config{Addr: addr})
	if err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStorageRepo(rdb, "lmnts-test:"+uuid.NewString()+":", time.Minute)
}

func TestStorageRepo_Redis(t *testing.T) {
	sessiontest.Run(t, newLiveRepo(t))
}

func TestStorageRepo_RedisNilIsKeyNotFound(t *testing.T) {
	r := newLiveRepo(t)
	ctx := context.Background()

	_, err := r.Get(ctx, "nobody", "lmnts_user")
	require.ErrorIs(t, err, session.ErrKeyNotFound)

	require.NoError(t, r.Set(ctx, "somebody", "lmnts_theme", "dark"))
	t.Cleanup(func() { _ = r.rdb.Del(context.Background(), r.hashKey("somebody")).Err() })

	ttl, err := r.rdb.TTL(ctx, r.hashKey("somebody")).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0), "writes refresh the namespace expiry")

	_, err = r.Get(ctx, "somebody", "lmnts_user")
	require.ErrorIs(t, err, session.ErrKeyNotFound, "missing field of an existing hash")
}
