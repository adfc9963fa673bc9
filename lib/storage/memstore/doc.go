// Package memstore implements an in-memory, single-node storage backend based
// on the storage.Storage and storage.AsyncStorage interfaces. It provides a
// thin wrapper around any engine.KVEngine implementation. Data is stored
// entirely in memory and is not persisted between process restarts.
//
// Key Features:
//   - Pure in-memory storage without persistence
//   - Direct integration with engine.KVEngine implementations
//   - Synchronous and context-aware asynchronous views over one shared engine
//   - Feature detection to handle unsupported operations gracefully
//   - Thread-safe operations for concurrent access
//
// Implementation Details:
//
//   - Shared Core: New() returns the synchronous view; Async() returns the
//     non-blocking view. Both are thin adapters over the same engine
//     instance, so a value stored through one view is immediately visible
//     through the other and per-key atomicity spans both.
//
//   - Cancellation: The asynchronous view observes its context before
//     touching the engine. Once an operation reaches the engine it applies
//     atomically, so an abandoned call is either fully applied or has no
//     visible effect.
//
//   - Feature Detection: Before executing operations, the store checks if
//     the underlying engine.KVEngine implementation supports the requested
//     feature through the SupportsFeature method. Unsupported operations
//     return appropriate error codes rather than failing silently or
//     producing undefined behavior.
//
//   - Composition Architecture: The store follows a composition pattern
//     where the storage.EngineFactory factory function injects the
//     underlying engine.KVEngine implementation. This allows the store to
//     work with any engine.KVEngine-compatible engine without modification.
//
// Thread Safety:
//
//	All operations in the memory store are thread-safe. The underlying
//	engine.KVEngine implementation provides per-key atomicity for the actual
//	storage operations, including the Increment read-modify-write.
//
// Usage Example:
//
//	// Create a store with a sharded engine backend
//	factory := func() engine.KVEngine { return sharded.New(nil) }
//	store := memstore.New(factory, nil)
//	defer store.Close()
//
//	// Store a value with 5-minute expiration
//	err := store.StoreStringWithExpiry("session:123", sessionData, 5*time.Minute)
//
//	// Retrieve the value
//	value, err := store.LoadString("session:123")
//
//	// Use the async view with a request context
//	count, err := store.Async().Increment(ctx, "hits", 1)
//
// Suitable Use Cases:
//
//	The memory store is ideal for:
//	- Ephemeral data that doesn't need to survive process restarts
//	- Single-node applications where a shared backend is not required
//	- Testing and development environments
//	- Runtime caching, counters and session storage within a single process
//
// For scenarios where storage must be shared between processes, consider
// using the redisstore package instead, which provides a Redis-backed
// implementation of the same interfaces.
package memstore
