// Package testing provides standardised tests for storage implementations
// that satisfy the storage.Storage or storage.AsyncStorage interface.
//
// The suites validate the shared behavioral contract: typed round-trips,
// kind isolation, TTL-based expiry, atomic increments without lost updates,
// idempotent deletes and, for the asynchronous interface, the all-or-nothing
// cancellation contract.
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() (storage.Storage, func()) {
//		s := memstore.New(func() engine.KVEngine { return sharded.New(nil) }, nil)
//		return s, func() { s.Close() }
//	}
//
//	// Running the standard test suite
//	storagetesting.RunStorageTests(t, "MemStore", factory)
package testing
