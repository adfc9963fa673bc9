package sharded

import (
	"fmt"
	"testing"
	"time"

	"github.com/ukvlib/ukv/lib/engine"
	enginetesting "github.com/ukvlib/ukv/lib/engine/testing"
)

func Test(t *testing.T) {
	enginetesting.RunKVEngineTests(t, "ShardedEngine", func(clock func() time.Time) engine.KVEngine {
		return New(&Options{
			Clock: clock,
			// lazy-only expiry keeps the suite deterministic under a fake clock
			SweepInterval: 0,
		})
	})
}

func TestSingleShard(t *testing.T) {
	enginetesting.RunKVEngineTests(t, "ShardedEngine(1)", func(clock func() time.Time) engine.KVEngine {
		return New(&Options{
			ShardCount:    1,
			Clock:         clock,
			SweepInterval: 0,
		})
	})
}

func Benchmark(b *testing.B) {
	enginetesting.RunKVEngineBenchmarks(b, "ShardedEngine", func(clock func() time.Time) engine.KVEngine {
		return New(&Options{Clock: clock})
	})
}

// TestBackgroundSweep verifies that expired entries are reclaimed without any
// read ever touching them. It uses the real clock since the sweep goroutines
// sleep on wall time.
func TestBackgroundSweep(t *testing.T) {
	e := New(&Options{
		ShardCount:    4,
		SweepInterval: 10 * time.Millisecond,
	})
	defer e.Close()

	impl := e.(*engineImpl)

	// write-once keys with a short deadline, never read back
	numKeys := 100
	deadline := time.Now().Add(30 * time.Millisecond)
	for i := 0; i < numKeys; i++ {
		e.Put(key(i), engine.TextValue("doomed"), deadline)
	}

	// one key without deadline must survive
	e.Put("survivor", engine.TextValue("stays"), time.Time{})

	// wait for the deadline to pass plus a few sweep cycles
	waitUntil := time.Now().Add(2 * time.Second)
	for time.Now().Before(waitUntil) {
		if physicalEntries(impl) == 1 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if n := physicalEntries(impl); n != 1 {
		t.Errorf("Expected sweep to reclaim all expired entries, %d still stored", n)
	}

	if _, exists := e.Get("survivor"); !exists {
		t.Errorf("Entry without deadline was reclaimed by the sweep")
	}
}

// TestSweepSurvivesOverwrite verifies that an overwrite extending the deadline
// wins against a stale sweep schedule for the old deadline.
func TestSweepSurvivesOverwrite(t *testing.T) {
	e := New(&Options{
		ShardCount:    1,
		SweepInterval: 10 * time.Millisecond,
	})
	defer e.Close()

	testKey := "extended-key"

	e.Put(testKey, engine.TextValue("v1"), time.Now().Add(50*time.Millisecond))

	// overwrite with a far deadline before the first one passes
	e.Put(testKey, engine.TextValue("v2"), time.Now().Add(time.Hour))

	// let the stale schedule fire
	time.Sleep(200 * time.Millisecond)

	entry, exists := e.Get(testKey)
	if !exists {
		t.Fatalf("Overwritten entry was clobbered by a stale sweep schedule")
	}
	if text, _ := entry.Value.Text(); text != "v2" {
		t.Errorf("Expected v2, got %v", entry.Value)
	}
}

// TestLazyOnlyExpiry verifies that with the sweep disabled, expired entries
// stay stored until the next access removes them.
func TestLazyOnlyExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }

	e := New(&Options{
		ShardCount:    1,
		SweepInterval: 0,
		Clock:         clock,
	})
	defer e.Close()

	impl := e.(*engineImpl)

	if e.SupportsFeature(engine.FeatureSweep) {
		t.Errorf("Sweep feature must not be reported with interval 0")
	}

	testKey := "lazy-key"
	e.Put(testKey, engine.TextValue("v"), now.Add(time.Second))

	now = now.Add(2 * time.Second)

	// logically gone but physically present before any access
	if n := physicalEntries(impl); n != 1 {
		t.Fatalf("Expected 1 physical entry before access, got %d", n)
	}

	if _, exists := e.Get(testKey); exists {
		t.Errorf("Expired entry must not be visible")
	}

	// the failed read reclaimed it
	if n := physicalEntries(impl); n != 0 {
		t.Errorf("Expected lazy expiry to reclaim the entry, %d still stored", n)
	}
}

func TestGetInfo(t *testing.T) {
	e := New(&Options{ShardCount: 4})
	defer e.Close()

	for i := 0; i < 100; i++ {
		e.Put(key(i), engine.TextValue("info-value"), time.Time{})
	}

	info := e.GetInfo()

	if info.EngineType != engine.ImplSharded {
		t.Errorf("Expected engine type %s, got %s", engine.ImplSharded, info.EngineType)
	}
	if info.Entries != 100 {
		t.Errorf("Expected 100 entries, got %d", info.Entries)
	}
	if info.SizeBytes <= 0 {
		t.Errorf("Expected a positive size estimate, got %d", info.SizeBytes)
	}
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func key(i int) string {
	return fmt.Sprintf("sweep-key-%d", i)
}

// physicalEntries counts stored entries across all shards, expired or not
func physicalEntries(e *engineImpl) int {
	total := 0
	for _, shard := range e.shards {
		total += shard.Data.Size()
	}
	return total
}
