package memstore

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/ukvlib/ukv/lib/engine"
	"github.com/ukvlib/ukv/lib/storage"
)

// Options configures the store behavior during initialization
type Options struct {
	// DefaultIntegerBase is the starting value applied when Increment touches
	// a key with no live counter (0 = counters start at the delta itself).
	DefaultIntegerBase int64
	// Clock is the time source used to turn TTLs into absolute deadlines
	// (nil = time.Now). Pair it with the engine's clock for deterministic
	// expiry tests.
	Clock func() time.Time
}

// DefaultOptions returns the default store options
func DefaultOptions() *Options {
	return &Options{
		DefaultIntegerBase: 0,
		Clock:              time.Now,
	}
}

// Store implements storage.Storage on top of an in-process engine.KVEngine.
// The async view returned by Async() shares the same engine, so data stored
// through one view is visible through the other.
type Store struct {
	engine engine.KVEngine
	base   int64
	clock  func() time.Time
}

// New creates a new in-memory store instance backed by the engine produced
// by the factory. The store owns the engine: Close() shuts it down.
// Options are optional (nil = defaults).
func New(factory storage.EngineFactory, opts *Options) *Store {
	if opts == nil {
		opts = DefaultOptions()
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Store{
		engine: factory(),
		base:   opts.DefaultIntegerBase,
		clock:  clock,
	}
}

// Async returns the non-blocking view over the same engine.
func (s *Store) Async() storage.AsyncStorage {
	return &asyncStore{store: s}
}

// Close shuts down the underlying engine. Neither view may be used afterwards.
func (s *Store) Close() error {
	return s.engine.Close()
}

// deadlineFor converts a ttl into an absolute expiry deadline.
// A ttl of zero or less yields a deadline that has already passed, it never
// maps onto the "no expiry" zero deadline.
func (s *Store) deadlineFor(ttl time.Duration) time.Time {
	return s.clock().Add(ttl)
}

// opCounter returns the operation counter for this backend.
// Counters are exported in Prometheus exposition format via metrics.WritePrometheus.
func opCounter(op string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`ukv_storage_ops_total{backend="memory",op=%q}`, op))
}

// --------------------------------------------------------------------------
// Interface Methods (docu see storage/interface.go)
// --------------------------------------------------------------------------

func (s *Store) StoreString(key, value string) error {
	if !s.engine.SupportsFeature(engine.FeaturePut) {
		return storage.NewError(storage.CodeUnsupportedOperation, "Put operation is not supported")
	}
	opCounter("store_string").Inc()
	s.engine.Put(key, engine.TextValue(value), time.Time{})
	return nil
}

func (s *Store) StoreStringWithExpiry(key, value string, ttl time.Duration) error {
	if !s.engine.SupportsFeature(engine.FeaturePut) {
		return storage.NewError(storage.CodeUnsupportedOperation, "Put operation is not supported")
	}
	opCounter("store_string").Inc()
	s.engine.Put(key, engine.TextValue(value), s.deadlineFor(ttl))
	return nil
}

func (s *Store) LoadString(key string) (string, error) {
	if !s.engine.SupportsFeature(engine.FeatureGet) {
		return "", storage.NewError(storage.CodeUnsupportedOperation, "Get operation is not supported")
	}
	opCounter("load_string").Inc()

	entry, ok := s.engine.Get(key)
	if !ok {
		return "", storage.NewError(storage.CodeNotFound, fmt.Sprintf("no value stored for key %q", key))
	}

	text, ok := entry.Value.Text()
	if !ok {
		return "", storage.NewError(storage.CodeTypeMismatch,
			fmt.Sprintf("key %q holds a %s value, not a string", key, entry.Value.Kind()))
	}
	return text, nil
}

func (s *Store) StoreRaw(key string, value []byte) error {
	if !s.engine.SupportsFeature(engine.FeaturePut) {
		return storage.NewError(storage.CodeUnsupportedOperation, "Put operation is not supported")
	}
	opCounter("store_raw").Inc()
	s.engine.Put(key, engine.BytesValue(value), time.Time{})
	return nil
}

func (s *Store) StoreRawWithExpiry(key string, value []byte, ttl time.Duration) error {
	if !s.engine.SupportsFeature(engine.FeaturePut) {
		return storage.NewError(storage.CodeUnsupportedOperation, "Put operation is not supported")
	}
	opCounter("store_raw").Inc()
	s.engine.Put(key, engine.BytesValue(value), s.deadlineFor(ttl))
	return nil
}

func (s *Store) LoadRaw(key string) ([]byte, error) {
	if !s.engine.SupportsFeature(engine.FeatureGet) {
		return nil, storage.NewError(storage.CodeUnsupportedOperation, "Get operation is not supported")
	}
	opCounter("load_raw").Inc()

	entry, ok := s.engine.Get(key)
	if !ok {
		return nil, storage.NewError(storage.CodeNotFound, fmt.Sprintf("no value stored for key %q", key))
	}

	raw, ok := entry.Value.Bytes()
	if !ok {
		return nil, storage.NewError(storage.CodeTypeMismatch,
			fmt.Sprintf("key %q holds a %s value, not raw bytes", key, entry.Value.Kind()))
	}
	return raw, nil
}

func (s *Store) Increment(key string, delta int64) (int64, error) {
	if !s.engine.SupportsFeature(engine.FeatureAdjust) {
		return 0, storage.NewError(storage.CodeUnsupportedOperation, "Adjust operation is not supported")
	}
	opCounter("increment").Inc()

	value, err := s.engine.AdjustInteger(key, delta, s.base)
	if err != nil {
		// the only engine failure mode is a live entry of another kind
		return 0, storage.NewError(storage.CodeTypeMismatch,
			fmt.Sprintf("key %q does not hold an integer counter", key))
	}
	return value, nil
}

func (s *Store) Delete(key string) error {
	if !s.engine.SupportsFeature(engine.FeatureRemove) {
		return storage.NewError(storage.CodeUnsupportedOperation, "Remove operation is not supported")
	}
	opCounter("delete").Inc()

	// absence is not an error
	s.engine.Remove(key)
	return nil
}

func (s *Store) Exists(key string) (bool, error) {
	if !s.engine.SupportsFeature(engine.FeatureGet) {
		return false, storage.NewError(storage.CodeUnsupportedOperation, "Get operation is not supported")
	}
	opCounter("exists").Inc()

	_, ok := s.engine.Get(key)
	return ok, nil
}

// GetEngineInfo returns metadata about the engine underlying the store.
// It is not guaranteed that all fields are filled in or that the information
// is up-to-date!
func (s *Store) GetEngineInfo() (engine.EngineInfo, error) {
	return s.engine.GetInfo(), nil
}
