package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ukvlib/ukv/lib/engine"
	"github.com/ukvlib/ukv/lib/engine/sharded"
	"github.com/ukvlib/ukv/lib/storage"
	storagetesting "github.com/ukvlib/ukv/lib/storage/testing"
)

func newTestStore() *Store {
	return New(func() engine.KVEngine {
		return sharded.New(&sharded.Options{SweepInterval: 0})
	}, nil)
}

func Test(t *testing.T) {
	storagetesting.RunStorageTests(t, "MemStore", func() (storage.Storage, func()) {
		s := newTestStore()
		return s, func() { s.Close() }
	})
}

func TestAsync(t *testing.T) {
	storagetesting.RunAsyncStorageTests(t, "MemStore", func() (storage.AsyncStorage, func()) {
		s := newTestStore()
		return s.Async(), func() { s.Close() }
	})
}

// TestSharedEngine verifies that the sync and async views operate on the
// same engine instance.
func TestSharedEngine(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	async := s.Async()
	ctx := context.Background()

	if err := s.StoreString("via-sync", "v"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if value, err := async.LoadString(ctx, "via-sync"); err != nil || value != "v" {
		t.Errorf("Sync write not visible through async view: %q (err=%v)", value, err)
	}

	if err := async.StoreString(ctx, "via-async", "w"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if value, err := s.LoadString("via-async"); err != nil || value != "w" {
		t.Errorf("Async write not visible through sync view: %q (err=%v)", value, err)
	}

	// increments through both views hit the same counter
	if _, err := s.Increment("shared-counter", 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n, err := async.Increment(ctx, "shared-counter", 1); err != nil || n != 2 {
		t.Errorf("Expected shared counter 2, got %d (err=%v)", n, err)
	}
}

// TestDeterministicExpiry drives both the store and the engine from one fake
// clock and checks the exact deadline boundary.
func TestDeterministicExpiry(t *testing.T) {
	var mu sync.Mutex
	now := time.Unix(1_700_000_000, 0)

	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	s := New(func() engine.KVEngine {
		return sharded.New(&sharded.Options{SweepInterval: 0, Clock: clock})
	}, &Options{Clock: clock})
	defer s.Close()

	if err := s.StoreStringWithExpiry("session", "token", 10*time.Second); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	advance(9 * time.Second)
	if _, err := s.LoadString("session"); err != nil {
		t.Errorf("Expected value 1s before the deadline, got %v", err)
	}

	// the deadline itself counts as expired
	advance(time.Second)
	if _, err := s.LoadString("session"); !storage.IsNotFound(err) {
		t.Errorf("Expected NotFound at the exact deadline, got %v", err)
	}
}

// TestDefaultIntegerBase verifies that fresh counters start from the
// configured base.
func TestDefaultIntegerBase(t *testing.T) {
	s := New(func() engine.KVEngine {
		return sharded.New(&sharded.Options{SweepInterval: 0})
	}, &Options{DefaultIntegerBase: 1000})
	defer s.Close()

	if n, err := s.Increment("fresh", 1); err != nil || n != 1001 {
		t.Errorf("Expected 1001 with base 1000, got %d (err=%v)", n, err)
	}

	// the base is not reapplied on existing counters
	if n, err := s.Increment("fresh", 1); err != nil || n != 1002 {
		t.Errorf("Expected 1002, got %d (err=%v)", n, err)
	}
}
