package engine

import (
	"errors"
	"time"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplSharded Implementation = "sharded"
)

// Feature represents engine features as bit flags
type Feature uint64

const (
	FeatureGet    Feature = 1 << iota // Support for Get operations
	FeaturePut                        // Support for Put operations
	FeatureRemove                     // Support for Remove operations
	FeatureAdjust                     // Support for atomic integer adjustment
	FeatureSweep                      // Support for active background expiry
)

func (f Feature) String() string {
	switch f {
	case FeatureGet:
		return "Get"
	case FeaturePut:
		return "Put"
	case FeatureRemove:
		return "Remove"
	case FeatureAdjust:
		return "Adjust"
	case FeatureSweep:
		return "Sweep"
	default:
		return "Unknown"
	}
}

type EngineInfo struct {
	Entries           int            `json:"entries"`
	SizeBytes         int            `json:"size_bytes"`
	EngineType        Implementation `json:"engine_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// ErrKindMismatch is returned by AdjustInteger when a live entry of a
// non-integer kind is stored under the key.
var ErrKindMismatch = errors.New("engine: stored value kind mismatch")

// --------------------------------------------------------------------------
// Entry Type
// --------------------------------------------------------------------------

// Entry pairs a Value with an optional absolute expiry deadline.
// A zero deadline means the entry never expires.
type Entry struct {
	Value    Value
	Deadline time.Time
}

// Expired reports whether the entry's deadline has passed at the given
// instant. A deadline exactly equal to now counts as expired.
func (e Entry) Expired(now time.Time) bool {
	return !e.Deadline.IsZero() && !now.Before(e.Deadline)
}

// --------------------------------------------------------------------------
// Engine Interface
// --------------------------------------------------------------------------

// KVEngine defines the contract of an entry store: a concurrent mapping
// from keys to entries with typed values and optional expiry deadlines.
// All methods are safe for concurrent use, and every operation on a single
// key is atomic with respect to every other operation on that key.
//
// Implementations can vary in their feature support, which can be queried
// with SupportsFeature.
type KVEngine interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Put unconditionally installs a new entry for the key, replacing any
	// prior entry regardless of its kind. A zero deadline means the entry
	// never expires.
	Put(key string, value Value, deadline time.Time)

	// Remove deletes the entry for the key if one is present and reports
	// whether anything was removed. Absence is not an error.
	Remove(key string) (removed bool)

	// AdjustInteger atomically adds delta to the integer stored under key
	// and returns the new value. If no live entry exists, a new entry with
	// value base+delta and no deadline is created. If a live entry of a
	// non-integer kind exists, ErrKindMismatch is returned and the entry is
	// left untouched. The whole read-modify-write is atomic with respect to
	// all other operations on the same key.
	AdjustInteger(key string, delta, base int64) (int64, error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get returns the live entry for the key. An entry whose deadline has
	// passed is removed as a side effect and reported as absent. The boolean
	// return value indicates whether a live entry was found.
	Get(key string) (Entry, bool)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the engine implementation supports the
	// specified feature. Multiple features can be checked at once using the
	// bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the engine.
	GetInfo() (info EngineInfo)

	// Close stops background tasks owned by the engine. The engine must not
	// be used after Close.
	Close() (err error)
}
