package testing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ukvlib/ukv/lib/storage"
)

// StorageFactory is a function type that creates a new storage.Storage
// instance for testing, along with a teardown function releasing its
// resources. The teardown function may be nil.
type StorageFactory func() (storage.Storage, func())

// AsyncStorageFactory is the asynchronous counterpart of StorageFactory.
type AsyncStorageFactory func() (storage.AsyncStorage, func())

// RunStorageTests runs a comprehensive test suite for a storage.Storage
// implementation. The factory is called once per subtest, so each subtest
// starts with an empty store.
func RunStorageTests(t *testing.T, name string, factory StorageFactory) {
	t.Run(name, func(t *testing.T) {
		run := func(name string, test func(t *testing.T, s storage.Storage)) {
			t.Run(name, func(t *testing.T) {
				s, teardown := factory()
				if teardown != nil {
					t.Cleanup(teardown)
				}
				test(t, s)
			})
		}

		run("StringRoundTrip", testStringRoundTrip)
		run("RawRoundTrip", testRawRoundTrip)
		run("TypeIsolation", testTypeIsolation)
		run("OverwriteChangesKind", testOverwriteChangesKind)
		run("Expiry", testStorageExpiry)
		run("Increment", testIncrement)
		run("ConcurrentIncrement", testConcurrentIncrement)
		run("Delete", testDelete)
		run("Exists", testExists)
	})
}

// RunAsyncStorageTests runs a test suite for a storage.AsyncStorage
// implementation: the full operation set through a live context plus the
// cancellation contract.
func RunAsyncStorageTests(t *testing.T, name string, factory AsyncStorageFactory) {
	t.Run(name, func(t *testing.T) {
		run := func(name string, test func(t *testing.T, s storage.AsyncStorage)) {
			t.Run(name, func(t *testing.T) {
				s, teardown := factory()
				if teardown != nil {
					t.Cleanup(teardown)
				}
				test(t, s)
			})
		}

		run("Operations", testAsyncOperations)
		run("Cancellation", testAsyncCancellation)
	})
}

// --------------------------------------------------------------------------
// Synchronous test functions
// --------------------------------------------------------------------------

func testStringRoundTrip(t *testing.T, s storage.Storage) {
	if err := s.StoreString("greeting", "hello"); err != nil {
		t.Fatalf("Unexpected error on StoreString: %v", err)
	}

	value, err := s.LoadString("greeting")
	if err != nil {
		t.Fatalf("Unexpected error on LoadString: %v", err)
	}
	if value != "hello" {
		t.Errorf("Expected hello, got %q", value)
	}

	// overwrite
	if err := s.StoreString("greeting", "servus"); err != nil {
		t.Fatalf("Unexpected error on overwrite: %v", err)
	}
	if value, _ = s.LoadString("greeting"); value != "servus" {
		t.Errorf("Expected servus after overwrite, got %q", value)
	}

	// empty string values are valid
	if err := s.StoreString("empty", ""); err != nil {
		t.Fatalf("Unexpected error storing empty string: %v", err)
	}
	if value, err = s.LoadString("empty"); err != nil || value != "" {
		t.Errorf("Expected empty string, got %q (err=%v)", value, err)
	}

	// absent key
	_, err = s.LoadString("never-written")
	if !storage.IsNotFound(err) {
		t.Errorf("Expected NotFound for absent key, got %v", err)
	}
}

func testRawRoundTrip(t *testing.T, s storage.Storage) {
	payload := []byte{0x00, 0xff, 0x10, 0x20}

	if err := s.StoreRaw("blob", payload); err != nil {
		t.Fatalf("Unexpected error on StoreRaw: %v", err)
	}

	value, err := s.LoadRaw("blob")
	if err != nil {
		t.Fatalf("Unexpected error on LoadRaw: %v", err)
	}
	if !bytes.Equal(value, payload) {
		t.Errorf("Expected %v, got %v", payload, value)
	}

	// mutating the loaded slice must not change the stored value
	value[0] = 0xaa
	again, _ := s.LoadRaw("blob")
	if !bytes.Equal(again, payload) {
		t.Errorf("Stored bytes were aliased by a load")
	}

	// mutating the callers buffer after the store must not change it either
	payload[1] = 0xbb
	again, _ = s.LoadRaw("blob")
	if again[1] == 0xbb {
		t.Errorf("Stored bytes were aliased by the callers buffer")
	}

	_, err = s.LoadRaw("never-written")
	if !storage.IsNotFound(err) {
		t.Errorf("Expected NotFound for absent key, got %v", err)
	}
}

func testTypeIsolation(t *testing.T, s storage.Storage) {
	if err := s.StoreString("text-key", "not raw"); err != nil {
		t.Fatalf("Unexpected error on StoreString: %v", err)
	}
	if err := s.StoreRaw("raw-key", []byte("not text")); err != nil {
		t.Fatalf("Unexpected error on StoreRaw: %v", err)
	}
	if _, err := s.Increment("counter-key", 1); err != nil {
		t.Fatalf("Unexpected error on Increment: %v", err)
	}

	// every cross-kind access fails with TypeMismatch
	if _, err := s.LoadRaw("text-key"); !storage.IsTypeMismatch(err) {
		t.Errorf("Expected TypeMismatch loading string as raw, got %v", err)
	}
	if _, err := s.LoadString("raw-key"); !storage.IsTypeMismatch(err) {
		t.Errorf("Expected TypeMismatch loading raw as string, got %v", err)
	}
	if _, err := s.Increment("text-key", 1); !storage.IsTypeMismatch(err) {
		t.Errorf("Expected TypeMismatch incrementing a string, got %v", err)
	}
	if _, err := s.Increment("raw-key", 1); !storage.IsTypeMismatch(err) {
		t.Errorf("Expected TypeMismatch incrementing raw bytes, got %v", err)
	}

	// a failed typed access leaves the entry untouched
	if value, err := s.LoadString("text-key"); err != nil || value != "not raw" {
		t.Errorf("String value changed after failed accesses: %q (err=%v)", value, err)
	}
}

func testOverwriteChangesKind(t *testing.T, s storage.Storage) {
	key := "shape-shifter"

	if err := s.StoreString(key, "first"); err != nil {
		t.Fatalf("Unexpected error on StoreString: %v", err)
	}

	// a store of another kind replaces kind and content
	if err := s.StoreRaw(key, []byte{1, 2}); err != nil {
		t.Fatalf("Unexpected error on StoreRaw: %v", err)
	}

	if _, err := s.LoadString(key); !storage.IsTypeMismatch(err) {
		t.Errorf("Expected TypeMismatch after kind change, got %v", err)
	}
	if value, err := s.LoadRaw(key); err != nil || !bytes.Equal(value, []byte{1, 2}) {
		t.Errorf("Expected raw {1,2}, got %v (err=%v)", value, err)
	}

	// delete then increment turns the key into a counter
	if err := s.Delete(key); err != nil {
		t.Fatalf("Unexpected error on Delete: %v", err)
	}
	if n, err := s.Increment(key, 5); err != nil || n != 5 {
		t.Errorf("Expected counter 5 after delete, got %d (err=%v)", n, err)
	}
}

func testStorageExpiry(t *testing.T, s storage.Storage) {
	if err := s.StoreStringWithExpiry("short-lived", "v", 50*time.Millisecond); err != nil {
		t.Fatalf("Unexpected error on StoreStringWithExpiry: %v", err)
	}
	if err := s.StoreRawWithExpiry("short-lived-raw", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("Unexpected error on StoreRawWithExpiry: %v", err)
	}
	if err := s.StoreString("immortal", "v"); err != nil {
		t.Fatalf("Unexpected error on StoreString: %v", err)
	}

	// live before the deadline
	if _, err := s.LoadString("short-lived"); err != nil {
		t.Errorf("Expected value before expiry, got %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	// expired reads are indistinguishable from absent keys
	if _, err := s.LoadString("short-lived"); !storage.IsNotFound(err) {
		t.Errorf("Expected NotFound after expiry, got %v", err)
	}
	if _, err := s.LoadRaw("short-lived-raw"); !storage.IsNotFound(err) {
		t.Errorf("Expected NotFound after raw expiry, got %v", err)
	}
	if found, err := s.Exists("short-lived"); err != nil || found {
		t.Errorf("Expected expired key to not exist (found=%v, err=%v)", found, err)
	}

	// an entry without TTL survives
	if _, err := s.LoadString("immortal"); err != nil {
		t.Errorf("Entry without TTL expired: %v", err)
	}

	// overwriting an expired key works like writing a fresh one
	if err := s.StoreString("short-lived", "reborn"); err != nil {
		t.Fatalf("Unexpected error overwriting expired key: %v", err)
	}
	if value, err := s.LoadString("short-lived"); err != nil || value != "reborn" {
		t.Errorf("Expected reborn, got %q (err=%v)", value, err)
	}

	// a non-positive ttl stores an already-expired entry
	if err := s.StoreStringWithExpiry("born-dead", "v", 0); err != nil {
		t.Fatalf("Unexpected error storing with zero ttl: %v", err)
	}
	if _, err := s.LoadString("born-dead"); !storage.IsNotFound(err) {
		t.Errorf("Expected NotFound for zero ttl, got %v", err)
	}
	if err := s.StoreRawWithExpiry("born-dead-raw", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Unexpected error storing with negative ttl: %v", err)
	}
	if found, err := s.Exists("born-dead-raw"); err != nil || found {
		t.Errorf("Expected negative ttl key to not exist (found=%v, err=%v)", found, err)
	}

	// a zero ttl overwrite of a live key makes it absent, never immortal
	if err := s.StoreStringWithExpiry("immortal", "v", 0); err != nil {
		t.Fatalf("Unexpected error overwriting with zero ttl: %v", err)
	}
	if found, err := s.Exists("immortal"); err != nil || found {
		t.Errorf("Expected zero ttl overwrite to remove key (found=%v, err=%v)", found, err)
	}
}

func testIncrement(t *testing.T, s storage.Storage) {
	// fresh counter
	n, err := s.Increment("hits", 1)
	if err != nil {
		t.Fatalf("Unexpected error on Increment: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 on fresh counter, got %d", n)
	}

	// positive and negative deltas are symmetric
	if n, _ = s.Increment("hits", 10); n != 11 {
		t.Errorf("Expected 11, got %d", n)
	}
	if n, _ = s.Increment("hits", -15); n != -4 {
		t.Errorf("Expected -4, got %d", n)
	}

	// a zero delta reads the counter without changing it
	if n, _ = s.Increment("hits", 0); n != -4 {
		t.Errorf("Expected -4 on zero delta, got %d", n)
	}
}

func testConcurrentIncrement(t *testing.T, s storage.Storage) {
	key := "contended-counter"
	numWorkers := 100

	results := make([]int64, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			n, err := s.Increment(key, 1)
			if err != nil {
				t.Errorf("Worker %d: unexpected error: %v", workerId, err)
				return
			}
			results[workerId] = n
		}(w)
	}

	wg.Wait()

	// final value equals the number of workers
	if n, err := s.Increment(key, 0); err != nil || n != int64(numWorkers) {
		t.Errorf("Expected final value %d, got %d (err=%v)", numWorkers, n, err)
	}

	// every observed intermediate value is distinct and in [1,numWorkers]
	sorted := make([]int64, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for i, n := range sorted {
		if n != int64(i+1) {
			t.Fatalf("Lost update detected: expected intermediate value %d, got %d", i+1, n)
		}
	}
}

func testDelete(t *testing.T, s storage.Storage) {
	if err := s.StoreString("doomed", "v"); err != nil {
		t.Fatalf("Unexpected error on StoreString: %v", err)
	}

	if err := s.Delete("doomed"); err != nil {
		t.Fatalf("Unexpected error on Delete: %v", err)
	}
	if _, err := s.LoadString("doomed"); !storage.IsNotFound(err) {
		t.Errorf("Expected NotFound after delete, got %v", err)
	}

	// deleting again (or deleting an absent key) is not an error
	if err := s.Delete("doomed"); err != nil {
		t.Errorf("Expected idempotent delete, got %v", err)
	}
	if err := s.Delete("never-written"); err != nil {
		t.Errorf("Expected nil deleting absent key, got %v", err)
	}

	// delete works across kinds
	if _, err := s.Increment("doomed-counter", 1); err != nil {
		t.Fatalf("Unexpected error on Increment: %v", err)
	}
	if err := s.Delete("doomed-counter"); err != nil {
		t.Fatalf("Unexpected error deleting counter: %v", err)
	}
	if n, err := s.Increment("doomed-counter", 1); err != nil || n != 1 {
		t.Errorf("Expected fresh counter 1 after delete, got %d (err=%v)", n, err)
	}
}

func testExists(t *testing.T, s storage.Storage) {
	if found, err := s.Exists("missing"); err != nil || found {
		t.Errorf("Expected false for absent key (found=%v, err=%v)", found, err)
	}

	// Exists is kind-agnostic
	keys := []string{"a-string", "a-blob", "a-counter"}
	if err := s.StoreString("a-string", "v"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := s.StoreRaw("a-blob", []byte("v")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := s.Increment("a-counter", 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, key := range keys {
		if found, err := s.Exists(key); err != nil || !found {
			t.Errorf("Expected key %s to exist (found=%v, err=%v)", key, found, err)
		}
	}
}

// --------------------------------------------------------------------------
// Asynchronous test functions
// --------------------------------------------------------------------------

func testAsyncOperations(t *testing.T, s storage.AsyncStorage) {
	ctx := context.Background()

	if err := s.StoreString(ctx, "greeting", "hello"); err != nil {
		t.Fatalf("Unexpected error on StoreString: %v", err)
	}
	if value, err := s.LoadString(ctx, "greeting"); err != nil || value != "hello" {
		t.Errorf("Expected hello, got %q (err=%v)", value, err)
	}

	if err := s.StoreRaw(ctx, "blob", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Unexpected error on StoreRaw: %v", err)
	}
	if value, err := s.LoadRaw(ctx, "blob"); err != nil || !bytes.Equal(value, []byte{1, 2, 3}) {
		t.Errorf("Expected {1,2,3}, got %v (err=%v)", value, err)
	}

	if n, err := s.Increment(ctx, "hits", 2); err != nil || n != 2 {
		t.Errorf("Expected 2, got %d (err=%v)", n, err)
	}

	if found, err := s.Exists(ctx, "greeting"); err != nil || !found {
		t.Errorf("Expected greeting to exist (found=%v, err=%v)", found, err)
	}

	if err := s.Delete(ctx, "greeting"); err != nil {
		t.Fatalf("Unexpected error on Delete: %v", err)
	}
	if _, err := s.LoadString(ctx, "greeting"); !storage.IsNotFound(err) {
		t.Errorf("Expected NotFound after delete, got %v", err)
	}

	// error taxonomy carries over unchanged
	if _, err := s.Increment(ctx, "blob", 1); !storage.IsTypeMismatch(err) {
		t.Errorf("Expected TypeMismatch, got %v", err)
	}

	if err := s.StoreStringWithExpiry(ctx, "short-lived", "v", 50*time.Millisecond); err != nil {
		t.Fatalf("Unexpected error on StoreStringWithExpiry: %v", err)
	}
	if err := s.StoreRawWithExpiry(ctx, "short-lived-raw", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("Unexpected error on StoreRawWithExpiry: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if _, err := s.LoadString(ctx, "short-lived"); !storage.IsNotFound(err) {
		t.Errorf("Expected NotFound after expiry, got %v", err)
	}
	if _, err := s.LoadRaw(ctx, "short-lived-raw"); !storage.IsNotFound(err) {
		t.Errorf("Expected NotFound after raw expiry, got %v", err)
	}

	// sequential issue order on one key is preserved
	for i := 0; i < 10; i++ {
		if err := s.StoreString(ctx, "ordered", fmt.Sprintf("v%d", i)); err != nil {
			t.Fatalf("Unexpected error on StoreString: %v", err)
		}
	}
	if value, err := s.LoadString(ctx, "ordered"); err != nil || value != "v9" {
		t.Errorf("Expected v9, got %q (err=%v)", value, err)
	}
}

func testAsyncCancellation(t *testing.T, s storage.AsyncStorage) {
	live := context.Background()

	if err := s.StoreString(live, "stable", "before"); err != nil {
		t.Fatalf("Unexpected error on StoreString: %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	// an abandoned call must have no visible effect
	if err := s.StoreString(cancelled, "stable", "after"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if value, err := s.LoadString(live, "stable"); err != nil || value != "before" {
		t.Errorf("Cancelled write took effect: %q (err=%v)", value, err)
	}

	if _, err := s.Increment(cancelled, "stable-counter", 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if found, err := s.Exists(live, "stable-counter"); err != nil || found {
		t.Errorf("Cancelled increment created a counter (found=%v, err=%v)", found, err)
	}

	if err := s.Delete(cancelled, "stable"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if _, err := s.LoadString(live, "stable"); err != nil {
		t.Errorf("Cancelled delete took effect: %v", err)
	}

	// reads fail fast on a dead context as well
	if _, err := s.LoadString(cancelled, "stable"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	// an expired deadline behaves like an explicit cancel
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	if err := s.StoreString(expired, "stable", "late"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}
