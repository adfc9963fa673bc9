package memstore

import (
	"context"
	"time"
)

// asyncStore implements storage.AsyncStorage as a thin adapter over the
// synchronous Store. Both views share one engine.
//
// Cancellation contract: the context is observed before the engine is
// touched; once an operation reaches the engine it applies atomically. An
// abandoned call therefore either takes full effect or none.
type asyncStore struct {
	store *Store
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (a *asyncStore) StoreString(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.store.StoreString(key, value)
}

func (a *asyncStore) StoreStringWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.store.StoreStringWithExpiry(key, value, ttl)
}

func (a *asyncStore) LoadString(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return a.store.LoadString(key)
}

func (a *asyncStore) StoreRaw(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.store.StoreRaw(key, value)
}

func (a *asyncStore) StoreRawWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.store.StoreRawWithExpiry(key, value, ttl)
}

func (a *asyncStore) LoadRaw(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.store.LoadRaw(key)
}

func (a *asyncStore) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return a.store.Increment(key, delta)
}

func (a *asyncStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.store.Delete(key)
}

func (a *asyncStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return a.store.Exists(key)
}
