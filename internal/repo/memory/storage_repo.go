package memory

import (
	"context"
	"sync"

	"github.com/expromedia/Marx/internal/session"
)

// StorageRepo keeps client namespaces in process memory.
type StorageRepo struct {
	mu    sync.RWMutex
	items map[string]map[string]string // client -> key -> value
}

func NewStorageRepo() *StorageRepo {
	return &StorageRepo{
		items: make(map[string]map[string]string),
	}
}

func (r *StorageRepo) Get(_ context.Context, clientID, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.items[clientID][key]
	if !ok {
		return "", session.ErrKeyNotFound
	}

	return v, nil
}

func (r *StorageRepo) Set(_ context.Context, clientID, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.items[clientID]
	if !ok {
		ns = make(map[string]string)
		r.items[clientID] = ns
	}
	ns[key] = value

	return nil
}

func (r *StorageRepo) Delete(_ context.Context, clientID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.items[clientID]
	if !ok {
		return nil
	}

	delete(ns, key)
	if len(ns) == 0 {
		delete(r.items, clientID)
	}

	return nil
}

func (r *StorageRepo) Ping(context.Context) error {
	return nil
}
