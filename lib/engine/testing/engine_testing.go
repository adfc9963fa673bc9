package testing

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ukvlib/ukv/lib/engine"
)

// EngineFactory is a function that creates a new instance of a KVEngine
// implementation using the provided time source. Implementations without a
// configurable clock may ignore the argument, but the expiry tests of this
// suite will then be skipped by feature detection.
type EngineFactory func(clock func() time.Time) engine.KVEngine

// RunKVEngineTests runs a comprehensive test suite for a KVEngine implementation.
func RunKVEngineTests(t *testing.T, name string, factory EngineFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory(time.Now))
		})

		t.Run("OverwriteChangesKind", func(t *testing.T) {
			testOverwriteChangesKind(t, factory(time.Now))
		})

		t.Run("Remove", func(t *testing.T) {
			testRemove(t, factory(time.Now))
		})

		t.Run("AdjustInteger", func(t *testing.T) {
			testAdjustInteger(t, factory(time.Now))
		})

		t.Run("AdjustKindMismatch", func(t *testing.T) {
			testAdjustKindMismatch(t, factory(time.Now))
		})

		t.Run("Expiry", func(t *testing.T) {
			testExpiry(t, factory)
		})

		t.Run("ExpiryBoundary", func(t *testing.T) {
			testExpiryBoundary(t, factory)
		})

		t.Run("ConcurrentAdjust", func(t *testing.T) {
			testConcurrentAdjust(t, factory(time.Now))
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory(time.Now))
		})

		t.Run("CollisionHandling", func(t *testing.T) {
			testCollisionHandling(t, factory(time.Now))
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory(time.Now))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the engine supports the specified feature.
// Skip the test if it is not supported.
func requireFeature(t testing.TB, e engine.KVEngine, feature engine.Feature) {
	if !e.SupportsFeature(feature) {
		t.Skip()
	}
}

// fakeClock is a settable time source for deterministic expiry tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, e engine.KVEngine) {
	defer e.Close()

	requireFeature(t, e, engine.FeaturePut)
	requireFeature(t, e, engine.FeatureGet)

	testKey := "test-key"

	e.Put(testKey, engine.TextValue("test-value1"), time.Time{})

	entry, exists := e.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Put", testKey)
	}

	if text, ok := entry.Value.Text(); !ok || text != "test-value1" {
		t.Errorf("Expected value test-value1, got %v", entry.Value)
	}

	// overwrite with a new text value
	e.Put(testKey, engine.TextValue("test-value2"), time.Time{})

	entry, exists = e.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Put", testKey)
	}

	if text, ok := entry.Value.Text(); !ok || text != "test-value2" {
		t.Errorf("Expected value test-value2, got %v", entry.Value)
	}

	_, exists = e.Get("nonexistent-key")
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	// bytes must be copied on access, not aliased
	rawKey := "raw-key"
	e.Put(rawKey, engine.BytesValue([]byte("raw-value")), time.Time{})

	entry, _ = e.Get(rawKey)
	retrieved, _ := entry.Value.Bytes()
	retrieved[0] = 'X'

	entry, _ = e.Get(rawKey)
	original, _ := entry.Value.Bytes()
	if bytes.Equal(retrieved, original) {
		t.Errorf("Bytes should return a copy, not a reference to the stored value")
	}
}

func testOverwriteChangesKind(t *testing.T, e engine.KVEngine) {
	defer e.Close()

	requireFeature(t, e, engine.FeaturePut)
	requireFeature(t, e, engine.FeatureGet)

	testKey := "kind-change-key"

	e.Put(testKey, engine.TextValue("text"), time.Time{})

	entry, _ := e.Get(testKey)
	if entry.Value.Kind() != engine.KindText {
		t.Errorf("Expected kind Text, got %s", entry.Value.Kind())
	}

	// a write of another kind replaces both kind and content
	e.Put(testKey, engine.BytesValue([]byte{1, 2, 3}), time.Time{})

	entry, _ = e.Get(testKey)
	if entry.Value.Kind() != engine.KindBytes {
		t.Errorf("Expected kind Bytes after overwrite, got %s", entry.Value.Kind())
	}

	if raw, ok := entry.Value.Bytes(); !ok || !bytes.Equal(raw, []byte{1, 2, 3}) {
		t.Errorf("Expected bytes {1,2,3}, got %v", raw)
	}

	e.Put(testKey, engine.IntegerValue(42), time.Time{})

	entry, _ = e.Get(testKey)
	if n, ok := entry.Value.Integer(); !ok || n != 42 {
		t.Errorf("Expected integer 42 after overwrite, got %v", entry.Value)
	}
}

func testRemove(t *testing.T, e engine.KVEngine) {
	defer e.Close()

	requireFeature(t, e, engine.FeaturePut)
	requireFeature(t, e, engine.FeatureGet)
	requireFeature(t, e, engine.FeatureRemove)

	testKey := "remove-test-key"

	e.Put(testKey, engine.TextValue("remove-test-value"), time.Time{})

	if removed := e.Remove(testKey); !removed {
		t.Errorf("Expected Remove to report true for existing key")
	}

	if _, exists := e.Get(testKey); exists {
		t.Errorf("Expected key %s to not exist after Remove", testKey)
	}

	// removing an absent key is not an error
	if removed := e.Remove(testKey); removed {
		t.Errorf("Expected Remove to report false for absent key")
	}

	if removed := e.Remove("nonexistent-key"); removed {
		t.Errorf("Expected Remove to report false for nonexistent key")
	}
}

func testAdjustInteger(t *testing.T, e engine.KVEngine) {
	defer e.Close()

	requireFeature(t, e, engine.FeatureAdjust)
	requireFeature(t, e, engine.FeatureGet)

	testKey := "counter"

	// fresh key: created with base+delta
	n, err := e.AdjustInteger(testKey, 5, 0)
	if err != nil {
		t.Fatalf("Unexpected error on fresh adjust: %v", err)
	}
	if n != 5 {
		t.Errorf("Expected 5 after first adjust, got %d", n)
	}

	// existing integer: delta is added
	n, err = e.AdjustInteger(testKey, 3, 0)
	if err != nil {
		t.Fatalf("Unexpected error on adjust: %v", err)
	}
	if n != 8 {
		t.Errorf("Expected 8 after second adjust, got %d", n)
	}

	// negative delta decrements
	n, err = e.AdjustInteger(testKey, -10, 0)
	if err != nil {
		t.Fatalf("Unexpected error on negative adjust: %v", err)
	}
	if n != -2 {
		t.Errorf("Expected -2 after decrement, got %d", n)
	}

	// the stored entry reflects the running value
	entry, exists := e.Get(testKey)
	if !exists {
		t.Fatalf("Expected counter key to exist")
	}
	if stored, ok := entry.Value.Integer(); !ok || stored != -2 {
		t.Errorf("Expected stored integer -2, got %v", entry.Value)
	}

	// the base is only applied when the key is absent
	n, err = e.AdjustInteger("based-counter", 1, 100)
	if err != nil {
		t.Fatalf("Unexpected error on based adjust: %v", err)
	}
	if n != 101 {
		t.Errorf("Expected 101 for fresh key with base 100, got %d", n)
	}

	n, err = e.AdjustInteger("based-counter", 1, 100)
	if err != nil {
		t.Fatalf("Unexpected error on based adjust: %v", err)
	}
	if n != 102 {
		t.Errorf("Expected 102 on existing key (base ignored), got %d", n)
	}
}

func testAdjustKindMismatch(t *testing.T, e engine.KVEngine) {
	defer e.Close()

	requireFeature(t, e, engine.FeaturePut)
	requireFeature(t, e, engine.FeatureAdjust)

	testKey := "text-not-counter"

	e.Put(testKey, engine.TextValue("a"), time.Time{})

	_, err := e.AdjustInteger(testKey, 1, 0)
	if !errors.Is(err, engine.ErrKindMismatch) {
		t.Errorf("Expected ErrKindMismatch, got %v", err)
	}

	// the stored value must be untouched after the failed adjust
	entry, exists := e.Get(testKey)
	if !exists {
		t.Fatalf("Expected key to still exist after failed adjust")
	}
	if text, ok := entry.Value.Text(); !ok || text != "a" {
		t.Errorf("Expected stored text to be unchanged, got %v", entry.Value)
	}

	// same for bytes
	rawKey := "bytes-not-counter"
	e.Put(rawKey, engine.BytesValue([]byte("b")), time.Time{})

	if _, err := e.AdjustInteger(rawKey, 1, 0); !errors.Is(err, engine.ErrKindMismatch) {
		t.Errorf("Expected ErrKindMismatch for bytes entry, got %v", err)
	}
}

func testExpiry(t *testing.T, factory EngineFactory) {
	clock := newFakeClock()
	e := factory(clock.Now)
	defer e.Close()

	requireFeature(t, e, engine.FeaturePut)
	requireFeature(t, e, engine.FeatureGet)

	testKey := "expiring-key"

	e.Put(testKey, engine.TextValue("expiring-value"), clock.Now().Add(10*time.Second))

	// still live just before the deadline
	clock.Advance(9 * time.Second)
	entry, exists := e.Get(testKey)
	if !exists {
		t.Errorf("Key should still be live 1s before the deadline")
	}
	if text, _ := entry.Value.Text(); text != "expiring-value" {
		t.Errorf("Expected value expiring-value, got %v", entry.Value)
	}

	// gone once the deadline has passed
	clock.Advance(2 * time.Second)
	if _, exists = e.Get(testKey); exists {
		t.Errorf("Key should have expired after the deadline")
	}

	// an entry without deadline never expires
	foreverKey := "not-expiring-key"
	e.Put(foreverKey, engine.TextValue("not-expiring-value"), time.Time{})

	clock.Advance(1000 * time.Hour)
	if _, exists = e.Get(foreverKey); !exists {
		t.Errorf("Key without deadline should never expire")
	}

	// an adjust on an expired key behaves like a fresh create
	counterKey := "expiring-counter"
	e.Put(counterKey, engine.IntegerValue(50), clock.Now().Add(time.Second))
	clock.Advance(2 * time.Second)

	n, err := e.AdjustInteger(counterKey, 1, 0)
	if err != nil {
		t.Fatalf("Unexpected error on adjust after expiry: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected fresh counter 1 after expiry, got %d", n)
	}
}

func testExpiryBoundary(t *testing.T, factory EngineFactory) {
	clock := newFakeClock()
	e := factory(clock.Now)
	defer e.Close()

	requireFeature(t, e, engine.FeaturePut)
	requireFeature(t, e, engine.FeatureGet)

	testKey := "boundary-key"

	// deadline exactly equal to "now" at check time counts as expired
	e.Put(testKey, engine.TextValue("v"), clock.Now().Add(time.Second))

	clock.Advance(time.Second)
	if _, exists := e.Get(testKey); exists {
		t.Errorf("Entry with deadline == now must be treated as expired")
	}
}

func testConcurrentAdjust(t *testing.T, e engine.KVEngine) {
	defer e.Close()

	requireFeature(t, e, engine.FeatureAdjust)
	requireFeature(t, e, engine.FeatureGet)

	testKey := "contended-counter"
	numWorkers := 100

	results := make([]int64, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			n, err := e.AdjustInteger(testKey, 1, 0)
			if err != nil {
				t.Errorf("Worker %d: unexpected error: %v", workerId, err)
				return
			}
			results[workerId] = n
		}(w)
	}

	wg.Wait()

	// the final value equals the number of workers
	entry, exists := e.Get(testKey)
	if !exists {
		t.Fatalf("Expected counter key to exist after concurrent adjusts")
	}
	if n, _ := entry.Value.Integer(); n != int64(numWorkers) {
		t.Errorf("Expected final value %d, got %d", numWorkers, n)
	}

	// every intermediate return value is a distinct integer in [1,numWorkers]
	sorted := make([]int64, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for i, n := range sorted {
		if n != int64(i+1) {
			t.Fatalf("Lost update detected: expected intermediate value %d, got %d", i+1, n)
		}
	}
}

func testEdgeCases(t *testing.T, e engine.KVEngine) {
	defer e.Close()

	requireFeature(t, e, engine.FeaturePut)
	requireFeature(t, e, engine.FeatureGet)

	emptyKey := ""
	e.Put(emptyKey, engine.TextValue("value for empty key"), time.Time{})

	entry, exists := e.Get(emptyKey)
	if !exists {
		t.Errorf("Empty key not found after Put")
	} else if text, _ := entry.Value.Text(); text != "value for empty key" {
		t.Errorf("Value mismatch for empty key")
	}

	emptyValueKey := "empty-value-key"
	e.Put(emptyValueKey, engine.TextValue(""), time.Time{})

	entry, exists = e.Get(emptyValueKey)
	if !exists {
		t.Errorf("Key for empty value not found after Put")
	} else if text, ok := entry.Value.Text(); !ok || text != "" {
		t.Errorf("Empty text value mismatch")
	}

	nilBytesKey := "nil-bytes-key"
	e.Put(nilBytesKey, engine.BytesValue(nil), time.Time{})

	entry, exists = e.Get(nilBytesKey)
	if !exists {
		t.Errorf("Key for nil bytes not found after Put")
	} else if raw, ok := entry.Value.Bytes(); !ok || len(raw) != 0 {
		t.Errorf("Nil bytes resulted in non-empty value: %v", raw)
	}

	if !t.Failed() {

		largeKey := string(make([]byte, 1000))
		e.Put(largeKey, engine.TextValue("value for large key"), time.Time{})

		entry, exists = e.Get(largeKey)
		if !exists {
			t.Errorf("Large key not found after Put")
		} else if text, _ := entry.Value.Text(); text != "value for large key" {
			t.Errorf("Value mismatch for large key")
		}

		largeValueKey := "large-value-key"
		largeValue := make([]byte, 16*1024*1024)
		for i := range largeValue {
			largeValue[i] = byte(i % 256)
		}

		e.Put(largeValueKey, engine.BytesValue(largeValue), time.Time{})

		entry, exists = e.Get(largeValueKey)
		if !exists {
			t.Errorf("Key for large value not found after Put")
		} else if raw, _ := entry.Value.Bytes(); !bytes.Equal(raw, largeValue) {
			headMismatch := !bytes.Equal(raw[:10], largeValue[:10])
			tailMismatch := !bytes.Equal(raw[len(raw)-10:], largeValue[len(largeValue)-10:])
			if headMismatch || tailMismatch || len(raw) != len(largeValue) {
				t.Errorf("Large value mismatch: Head mismatch=%v, Tail mismatch=%v, Size mismatch=%v",
					headMismatch, tailMismatch, len(raw) != len(largeValue))
			}
		}
	}
}

func testCollisionHandling(t *testing.T, e engine.KVEngine) {
	defer e.Close()

	requireFeature(t, e, engine.FeaturePut)
	requireFeature(t, e, engine.FeatureGet)
	requireFeature(t, e, engine.FeatureRemove)

	prefix := "collision-test-"
	numKeys := 1000

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("%s%d", prefix, i)
		e.Put(key, engine.TextValue(fmt.Sprintf("value-%d", i)), time.Time{})
	}

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("%s%d", prefix, i)
		expected := fmt.Sprintf("value-%d", i)

		entry, exists := e.Get(key)
		if !exists {
			t.Errorf("Key %s not found", key)
			continue
		}

		if text, _ := entry.Value.Text(); text != expected {
			t.Errorf("Value for key %s does not match: expected %s, got %s", key, expected, text)
		}
	}

	for i := 0; i < numKeys; i += 2 {
		key := fmt.Sprintf("%s%d", prefix, i)
		e.Remove(key)
	}

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("%s%d", prefix, i)
		_, exists := e.Get(key)

		if i%2 == 0 {
			if exists {
				t.Errorf("Key %s should be removed", key)
			}
		} else {
			if !exists {
				t.Errorf("Key %s should still exist", key)
			}
		}
	}
}

func testRealisticUsage(t *testing.T, e engine.KVEngine) {
	defer e.Close()

	requireFeature(t, e, engine.FeaturePut)
	requireFeature(t, e, engine.FeatureGet)
	requireFeature(t, e, engine.FeatureRemove)
	requireFeature(t, e, engine.FeatureAdjust)

	type operation struct {
		op    string
		key   string
		value engine.Value
	}

	numOperations := 10_000
	operations := make([]operation, numOperations)

	for i := 0; i < numOperations; i++ {
		var op string
		switch i % 10 {
		case 0, 1, 2, 3, 4, 5:
			op = "put"
		case 6, 7:
			op = "get"
		case 8:
			op = "adjust"
		case 9:
			op = "remove"
		}

		var key string
		if i%5 == 0 {
			key = fmt.Sprintf("hot-key-%d", i%50)
		} else {
			key = fmt.Sprintf("key-%d", i)
		}

		// adjusts use a dedicated key space so they never collide with puts
		if op == "adjust" {
			key = fmt.Sprintf("counter-%d", i%20)
		}

		var value engine.Value
		if op == "put" {
			switch i % 3 {
			case 0:
				value = engine.TextValue(fmt.Sprintf("text-%d", i))
			case 1:
				value = engine.BytesValue(make([]byte, 64))
			case 2:
				value = engine.IntegerValue(int64(i))
			}
		}

		operations[i] = operation{op, key, value}
	}

	numWorkers := 8
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	opsPerWorker := numOperations / numWorkers

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			start := workerId * opsPerWorker
			end := start + opsPerWorker

			for i := start; i < end; i++ {
				op := operations[i]

				switch op.op {
				case "put":
					e.Put(op.key, op.value, time.Time{})
				case "get":
					e.Get(op.key)
				case "adjust":
					if _, err := e.AdjustInteger(op.key, 1, 0); err != nil {
						t.Errorf("Unexpected adjust error for key %s: %v", op.key, err)
					}
				case "remove":
					e.Remove(op.key)
				}
			}
		}(w)
	}

	wg.Wait()

	// two verification passes must observe a stable state
	allKeys := make(map[string]bool)
	for _, op := range operations {
		allKeys[op.key] = true
	}

	firstPass := make(map[string]engine.Value)
	for key := range allKeys {
		if entry, exists := e.Get(key); exists {
			firstPass[key] = entry.Value
		}
	}

	for key := range allKeys {
		entry, exists := e.Get(key)
		stored, seen := firstPass[key]

		if exists != seen {
			t.Errorf("Consistency error: key %s existence changed during verification", key)
			continue
		}

		if exists && !entry.Value.Equal(stored) {
			t.Errorf("Value mismatch for key %s between verification passes", key)
		}
	}
}
