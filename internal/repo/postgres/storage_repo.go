package postgres

import (
	"context"
	"errors"

	"github.com/expromedia/Marx/internal/session"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const storageSchema = `
CREATE TABLE IF NOT EXISTS client_storage (
	client_id  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (client_id, key)
)`

// ObserveFunc wraps a logical DB operation, e.g. to record latency metrics.
type ObserveFunc func(op string, fn func() error) error

type StorageRepo struct {
	pool    *pgxpool.Pool
	observe ObserveFunc
}

func NewStorageRepo(pool *pgxpool.Pool, observe ObserveFunc) *StorageRepo {
	if observe == nil {
		observe = func(_ string, fn func() error) error { return fn() }
	}

	return &StorageRepo{pool: pool, observe: observe}
}

// EnsureSchema creates the key/value table when it does not exist yet.
func (r *StorageRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, storageSchema)
	return err
}

func (r *StorageRepo) Get(ctx context.Context, clientID, key string) (string, error) {
	var value string

	err := r.observe("storage_get", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT value FROM client_storage WHERE client_id = $1 AND key = $2`,
			clientID, key,
		).Scan(&value)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", session.ErrKeyNotFound
		}
		return "", err
	}

	return value, nil
}

func (r *StorageRepo) Set(ctx context.Context, clientID, key, value string) error {
	return r.observe("storage_set", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO client_storage (client_id, key, value, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (client_id, key)
			DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		`, clientID, key, value)
		return err
	})
}

func (r *StorageRepo) Delete(ctx context.Context, clientID, key string) error {
	return r.observe("storage_delete", func() error {
		_, err := r.pool.Exec(ctx,
			`DELETE FROM client_storage WHERE client_id = $1 AND key = $2`,
			clientID, key,
		)
		return err
	})
}

func (r *StorageRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
