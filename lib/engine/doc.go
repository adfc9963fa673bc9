// Package engine provides a standardized interface for entry store
// implementations. It defines the KVEngine interface that allows for
// consistent interaction with various engine backends while abstracting
// implementation details.
//
// The package focuses on:
//   - A unified interface for typed key-value operations
//   - Feature discovery through capability flags
//   - Time-based expiry with a single, well-defined boundary rule
//   - Comprehensive metadata reporting
//
// Key Components:
//
//   - KVEngine Interface: The core interface that all engine implementations
//     must satisfy. It provides methods for basic operations (Put, Get,
//     Remove), the atomic integer read-modify-write (AdjustInteger),
//     feature discovery (SupportsFeature) and metadata retrieval (GetInfo).
//
//   - Value: A typed value model with three kinds (text, bytes, integer).
//     Every stored value carries exactly one kind, and accessors report
//     whether the stored kind matches the requested one. Byte payloads are
//     copied on store and on access, so callers can never alias engine
//     memory.
//
//   - Entry: A Value paired with an optional absolute expiry deadline. The
//     boundary rule is uniform for all implementations: an entry whose
//     deadline is less than or equal to the current instant is expired, an
//     entry with a zero deadline never expires.
//
//   - Feature Flags: The Feature type defines capability flags that
//     implementations can advertise through the SupportsFeature method. This
//     allows clients to discover supported operations at runtime.
//
// Note on Expiry:
//   - External Consistency: Implementations must maintain strong external
//     consistency regardless of their internal collection state: Get() must
//     never return an entry whose deadline has passed, even if the entry
//     still exists internally pending collection. This separation between
//     logical expiry and physical removal allows implementations to use
//     efficient background collection strategies without compromising the
//     consistency guarantees of the interface.
//   - Per-Key Atomicity: Every operation on a single key, including the
//     expiry check it performs, is atomic with respect to every other
//     operation on that key. Concurrent AdjustInteger calls therefore never
//     lose an update.
//
// Related Packages:
//
// The sharded package (github.com/ukvlib/ukv/lib/engine/sharded) provides a
// high-performance implementation of the KVEngine interface using a sharded
// in-memory architecture with lock-free data structures and an optional
// background sweep for expired entries.
//
// The util package (github.com/ukvlib/ukv/lib/engine/util) provides
// complementary tools for engine implementations:
//   - SizeHistogram: Utilities for analyzing data size distributions
//   - SweepHeap: A priority queue for deadline-ordered expiry schedules
//   - LockFreeMPSC: A lock-free multi-producer single-consumer queue
//   - ... and more
//
// The testing package (github.com/ukvlib/ukv/lib/engine/testing) provides
// standardized tests and benchmarks for engine implementations:
//   - RunKVEngineTests: Runs a standardized test suite to validate implementations
//   - RunKVEngineBenchmarks: Provides performance benchmarks for comparing implementations
package engine
