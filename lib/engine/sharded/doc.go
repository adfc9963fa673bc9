// Package sharded implements a concurrent in-memory entry store satisfying
// the engine.KVEngine interface. It partitions the key space into independent
// shards to bound lock contention and provides atomic typed access,
// time-based expiration and safe concurrent mutation without data races or
// lost updates.
//
// The package focuses on:
//   - Optimized concurrent access through sharding and lock-free data structures
//   - Per-key atomicity: every operation, including the integer
//     read-modify-write, happens inside a single atomic per-key update
//   - Two complementary expiry mechanisms: lazy removal on access and an
//     optional background sweep that reclaims write-once/never-read keys
//
// Key Components:
//
//   - engineImpl: The central structure implementing engine.KVEngine. It
//     routes keys to shards via a seeded FNV-1a hash and owns the lifecycle
//     of the background sweep, which is stopped deterministically by Close().
//
//   - Shard: A partition of the key space. Each shard contains its own
//     concurrent entry map, a deadline-ordered sweep heap and a lock-free
//     event queue. Shards operate independently, so operations on keys in
//     different shards never contend and no global lock spans the store.
//
//   - Sweep: One goroutine per shard consumes schedule events pushed by
//     writers and folds them into the shard's heap. Each sweep cycle pops
//     entries whose deadline has passed and removes them under the same
//     per-key exclusion as regular operations, double-checking liveness so a
//     concurrent overwrite is never clobbered. A sweep interval of zero
//     disables the background task entirely; lazy expiry alone keeps all
//     consistency guarantees.
//
// Consistency: a read never returns an entry whose deadline has passed, even
// if the entry still exists internally pending collection. The separation
// between logical expiry and physical removal allows efficient background
// collection without weakening the interface guarantees.
package sharded
