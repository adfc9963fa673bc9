package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ukvlib/ukv/lib/storage"
)

// asyncStore implements storage.AsyncStorage backed by a Redis client.
// go-redis observes the context on every round trip, which gives the
// all-or-nothing cancellation contract for free: a command either reaches
// the server and applies atomically or never leaves the client.
type asyncStore struct {
	client    redis.UniversalClient
	namespace string
	base      int64
}

// textKey/rawKey/counterKey build the namespaced Redis key for each kind.
func (a *asyncStore) textKey(key string) string    { return a.namespace + prefixText + key }
func (a *asyncStore) rawKey(key string) string     { return a.namespace + prefixRaw + key }
func (a *asyncStore) counterKey(key string) string { return a.namespace + prefixCounter + key }

// otherKinds returns the Redis keys of the two kinds the operation is not
// targeting. Used to detect TypeMismatch and to clear stale kinds on writes.
func (a *asyncStore) otherKinds(key, targetPrefix string) []string {
	others := make([]string, 0, 2)
	for _, prefix := range []string{prefixText, prefixRaw, prefixCounter} {
		if prefix != targetPrefix {
			others = append(others, a.namespace+prefix+key)
		}
	}
	return others
}

// store installs value under the target kind and clears the other kinds in
// one transaction, so an overwrite changes kind and content together.
// A ttl of zero means no expiry; callers handle non-positive ttls before
// reaching here, because redis reads an expiration of 0 as "keep forever".
func (a *asyncStore) store(ctx context.Context, key, targetPrefix string, value interface{}, ttl time.Duration) error {
	_, err := a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, a.namespace+targetPrefix+key, value, ttl)
		pipe.Del(ctx, a.otherKinds(key, targetPrefix)...)
		return nil
	})
	return mapError(err, key)
}

// load fetches the value under the target kind. A miss is a TypeMismatch
// when another kind holds the key, otherwise NotFound.
func (a *asyncStore) load(ctx context.Context, key, targetPrefix string) (string, error) {
	value, err := a.client.Get(ctx, a.namespace+targetPrefix+key).Result()
	if err == nil {
		return value, nil
	}

	mapped := mapError(err, key)
	if !storage.IsNotFound(mapped) {
		return "", mapped
	}

	n, err := a.client.Exists(ctx, a.otherKinds(key, targetPrefix)...).Result()
	if err != nil {
		return "", mapError(err, key)
	}
	if n > 0 {
		return "", storage.NewError(storage.CodeTypeMismatch,
			"key "+key+" holds a value of another kind")
	}
	return "", mapped
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (a *asyncStore) StoreString(ctx context.Context, key, value string) error {
	opCounter("store_string").Inc()
	return a.store(ctx, key, prefixText, value, 0)
}

func (a *asyncStore) StoreStringWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	opCounter("store_string").Inc()

	// a non-positive ttl stores an already-expired entry, which is
	// indistinguishable from no entry at all
	if ttl <= 0 {
		return a.Delete(ctx, key)
	}
	return a.store(ctx, key, prefixText, value, ttl)
}

func (a *asyncStore) LoadString(ctx context.Context, key string) (string, error) {
	opCounter("load_string").Inc()
	return a.load(ctx, key, prefixText)
}

func (a *asyncStore) StoreRaw(ctx context.Context, key string, value []byte) error {
	opCounter("store_raw").Inc()
	return a.store(ctx, key, prefixRaw, value, 0)
}

func (a *asyncStore) StoreRawWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	opCounter("store_raw").Inc()

	// a non-positive ttl stores an already-expired entry, which is
	// indistinguishable from no entry at all
	if ttl <= 0 {
		return a.Delete(ctx, key)
	}
	return a.store(ctx, key, prefixRaw, value, ttl)
}

func (a *asyncStore) LoadRaw(ctx context.Context, key string) ([]byte, error) {
	opCounter("load_raw").Inc()
	value, err := a.load(ctx, key, prefixRaw)
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (a *asyncStore) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	opCounter("increment").Inc()

	// a live entry of another kind fails the adjust without touching it.
	// The kind check and the IncrBy below are separate round trips, so a
	// concurrent write of another kind can land in between and leave two
	// kinds populated until the next store or delete; see the consistency
	// caveat in the package doc.
	n, err := a.client.Exists(ctx, a.otherKinds(key, prefixCounter)...).Result()
	if err != nil {
		return 0, mapError(err, key)
	}
	if n > 0 {
		return 0, storage.NewError(storage.CodeTypeMismatch,
			"key "+key+" does not hold an integer counter")
	}

	// seed a fresh counter with the configured base before adding the delta
	if a.base != 0 {
		if err := a.client.SetNX(ctx, a.counterKey(key), a.base, 0).Err(); err != nil {
			return 0, mapError(err, key)
		}
	}

	value, err := a.client.IncrBy(ctx, a.counterKey(key), delta).Result()
	if err != nil {
		return 0, mapError(err, key)
	}
	return value, nil
}

func (a *asyncStore) Delete(ctx context.Context, key string) error {
	opCounter("delete").Inc()

	// absence is not an error, DEL of missing keys is a no-op
	keys := []string{a.textKey(key), a.rawKey(key), a.counterKey(key)}
	return mapError(a.client.Del(ctx, keys...).Err(), key)
}

func (a *asyncStore) Exists(ctx context.Context, key string) (bool, error) {
	opCounter("exists").Inc()

	keys := []string{a.textKey(key), a.rawKey(key), a.counterKey(key)}
	n, err := a.client.Exists(ctx, keys...).Result()
	if err != nil {
		return false, mapError(err, key)
	}
	return n > 0, nil
}
