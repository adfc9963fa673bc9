// Package redisstore implements a Redis-backed storage backend based on the
// storage.Storage and storage.AsyncStorage interfaces. It maps the typed
// operation set onto plain Redis commands (SET, GET, DEL, EXISTS, INCRBY)
// through the go-redis client and translates backend replies onto the shared
// error taxonomy.
//
// Key Features:
//   - Storage shared between processes through a single Redis server
//   - TTL-based expiry handled natively by Redis
//   - Atomic counters via INCRBY
//   - The same error taxonomy as the in-memory backend
//
// Implementation Details:
//
//   - Kind Namespaces: Redis has no native kind tag, every value is a byte
//     string. The store therefore keeps each kind under its own key prefix
//     (text, raw, counter) inside a configurable namespace. A typed read
//     that misses its own prefix checks the other prefixes to distinguish
//     TypeMismatch from NotFound, and every write clears the other prefixes
//     in a transaction so an overwrite changes kind and content together.
//
//   - Error Mapping: redis.Nil maps to CodeNotFound, the "not an integer"
//     reply of INCRBY maps to CodeTypeMismatch, context errors pass through
//     unchanged and every other failure maps to CodeBackendUnavailable.
//
//   - Sync over Async: go-redis is context-based, so the asynchronous view
//     is the primary implementation. The synchronous methods delegate to it
//     with context.Background().
//
// Consistency Caveat:
//
//	Increment checks the other kind namespaces and then issues INCRBY as
//	separate commands. A racing write of another kind between the two can
//	slip past the check; the in-memory backend, which holds per-key
//	exclusion across the whole read-modify-write, does not have this window.
//
// Usage Example:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := redisstore.New(client, nil)
//
//	err := store.StoreStringWithExpiry("session:123", token, 5*time.Minute)
//	count, err := store.Async().Increment(ctx, "hits", 1)
package redisstore
