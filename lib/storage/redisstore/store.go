package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/ukvlib/ukv/lib/storage"
)

// Kind prefixes separate the typed namespaces inside Redis. A key written as
// a string lives under a different Redis key than the same key written as
// raw bytes, which is what lets typed reads distinguish TypeMismatch from
// NotFound on a backend without a native kind tag.
const (
	prefixText    = "t:"
	prefixRaw     = "r:"
	prefixCounter = "c:"
)

// Options configures the store behavior during initialization
type Options struct {
	// Namespace is prepended to every Redis key (default "ukv:"). It keeps
	// the store's keys apart from other users of the same Redis database.
	Namespace string
	// DefaultIntegerBase is the starting value applied when Increment
	// touches a key with no live counter.
	DefaultIntegerBase int64
}

// DefaultOptions returns the default store options
func DefaultOptions() *Options {
	return &Options{
		Namespace:          "ukv:",
		DefaultIntegerBase: 0,
	}
}

// Store implements storage.Storage backed by a Redis server. The async view
// returned by Async() shares the same client; the sync methods delegate to
// it with context.Background().
type Store struct {
	async *asyncStore
}

// New creates a new Redis-backed store instance using the provided client.
// The caller keeps ownership of the client, Close() does not shut it down.
// Options are optional (nil = defaults).
func New(client redis.UniversalClient, opts *Options) *Store {
	if opts == nil {
		opts = DefaultOptions()
	}

	return &Store{
		async: &asyncStore{
			client:    client,
			namespace: opts.Namespace,
			base:      opts.DefaultIntegerBase,
		},
	}
}

// Async returns the non-blocking view over the same client.
func (s *Store) Async() storage.AsyncStorage {
	return s.async
}

// --------------------------------------------------------------------------
// Error Mapping
// --------------------------------------------------------------------------

// mapError translates a go-redis failure onto the storage error taxonomy.
// Context errors pass through unchanged so callers can detect their own
// cancellation; everything else that is not a reply error means the backend
// could not be reached.
func mapError(err error, key string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return storage.NewError(storage.CodeNotFound, fmt.Sprintf("no value stored for key %q", key))
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return err
	case isIntegerReplyError(err):
		return storage.NewError(storage.CodeTypeMismatch,
			fmt.Sprintf("key %q does not hold an integer counter", key))
	default:
		return storage.NewError(storage.CodeBackendUnavailable,
			fmt.Sprintf("redis backend failed for key %q: %v", key, err))
	}
}

// isIntegerReplyError matches the Redis reply for INCRBY on a value that
// cannot be parsed as a 64-bit integer.
func isIntegerReplyError(err error) bool {
	return strings.Contains(err.Error(), "not an integer")
}

// opCounter returns the operation counter for this backend.
func opCounter(op string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`ukv_storage_ops_total{backend="redis",op=%q}`, op))
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (s *Store) StoreString(key, value string) error {
	return s.async.StoreString(context.Background(), key, value)
}

func (s *Store) StoreStringWithExpiry(key, value string, ttl time.Duration) error {
	return s.async.StoreStringWithExpiry(context.Background(), key, value, ttl)
}

func (s *Store) LoadString(key string) (string, error) {
	return s.async.LoadString(context.Background(), key)
}

func (s *Store) StoreRaw(key string, value []byte) error {
	return s.async.StoreRaw(context.Background(), key, value)
}

func (s *Store) StoreRawWithExpiry(key string, value []byte, ttl time.Duration) error {
	return s.async.StoreRawWithExpiry(context.Background(), key, value, ttl)
}

func (s *Store) LoadRaw(key string) ([]byte, error) {
	return s.async.LoadRaw(context.Background(), key)
}

func (s *Store) Increment(key string, delta int64) (int64, error) {
	return s.async.Increment(context.Background(), key, delta)
}

func (s *Store) Delete(key string) error {
	return s.async.Delete(context.Background(), key)
}

func (s *Store) Exists(key string) (bool, error) {
	return s.async.Exists(context.Background(), key)
}
