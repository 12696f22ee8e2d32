package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/expromedia/Marx/internal/session"
	goredis "github.com/redis/go-redis/v9"
)

// StorageRepo maps a client namespace onto a redis hash keyed by client id.
// Idle namespaces expire after ttl; every write refreshes it.
type StorageRepo struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewStorageRepo(rdb *goredis.Client, prefix string, ttl time.Duration) *StorageRepo {
	if prefix == "" {
		prefix = "portal:storage:"
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}

	return &StorageRepo{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *StorageRepo) hashKey(clientID string) string {
	return r.prefix + clientID
}

func (r *StorageRepo) Get(ctx context.Context, clientID, key string) (string, error) {
	v, err := r.rdb.HGet(ctx, r.hashKey(clientID), key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", session.ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}

	return v, nil
}

func (r *StorageRepo) Set(ctx context.Context, clientID, key, value string) error {
	hk := r.hashKey(clientID)

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, hk, key, value)
	if r.ttl > 0 {
		pipe.Expire(ctx, hk, r.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (r *StorageRepo) Delete(ctx context.Context, clientID, key string) error {
	return r.rdb.HDel(ctx, r.hashKey(clientID), key).Err()
}

func (r *StorageRepo) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
