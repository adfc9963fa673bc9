package testing

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ukvlib/ukv/lib/engine"
)

// RunKVEngineBenchmarks runs all benchmarks for a KVEngine implementation
func RunKVEngineBenchmarks(b *testing.B, name string, factory EngineFactory) {

	b.Run("Put", func(b *testing.B) {
		benchmarkPut(b, factory(time.Now))
	})

	b.Run("PutExisting", func(b *testing.B) {
		benchmarkPutExisting(b, factory(time.Now))
	})

	b.Run("PutLargeValue", func(b *testing.B) {
		benchmarkPutLargeValue(b, factory(time.Now))
	})

	b.Run("PutWithDeadline", func(b *testing.B) {
		benchmarkPutWithDeadline(b, factory(time.Now))
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory(time.Now))
	})

	b.Run("Remove", func(b *testing.B) {
		benchmarkRemove(b, factory(time.Now))
	})

	b.Run("Adjust", func(b *testing.B) {
		benchmarkAdjust(b, factory(time.Now))
	})

	b.Run("AdjustContended", func(b *testing.B) {
		benchmarkAdjustContended(b, factory(time.Now))
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory(time.Now))
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Put operation
func benchmarkPut(b *testing.B, e engine.KVEngine) {

	b.Cleanup(func() {
		e.Close()
	})

	requireFeature(b, e, engine.FeaturePut)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter)
			e.Put(key, engine.TextValue(fmt.Sprintf("test-value-%d", counter)), time.Time{})
			counter++
		}
	})
}

// Benchmark for Put operation with existing keys
func benchmarkPutExisting(b *testing.B, e engine.KVEngine) {

	b.Cleanup(func() {
		e.Close()
	})

	requireFeature(b, e, engine.FeaturePut)

	// Prepare data
	numKeys := b.N
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		e.Put(key, engine.TextValue(fmt.Sprintf("test-value-%d", i)), time.Time{})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			e.Put(key, engine.TextValue(fmt.Sprintf("test-value-%d", counter)), time.Time{})
			counter++
		}
	})
}

// Benchmark for Put operation with large values
func benchmarkPutLargeValue(b *testing.B, e engine.KVEngine) {

	b.Cleanup(func() {
		e.Close()
	})

	requireFeature(b, e, engine.FeaturePut)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter)
			largeValue := make([]byte, 1*1024*1024) // 1MB
			e.Put(key, engine.BytesValue(largeValue), time.Time{})
			counter++
		}
	})
}

// benchmarkPutWithDeadline tests the performance of Put with an expiry deadline
func benchmarkPutWithDeadline(b *testing.B, e engine.KVEngine) {

	b.Cleanup(func() {
		e.Close()
	})

	requireFeature(b, e, engine.FeaturePut)

	deadline := time.Now().Add(time.Hour)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-deadline-key-%d", counter)
			e.Put(key, engine.TextValue(fmt.Sprintf("test-deadline-value-%d", counter)), deadline)
			counter++
		}
	})
}

// Parallel benchmarking for Get operation
func benchmarkGet(b *testing.B, e engine.KVEngine) {

	b.Cleanup(func() {
		e.Close()
	})

	requireFeature(b, e, engine.FeaturePut)
	requireFeature(b, e, engine.FeatureGet)

	// Prepare data
	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("test-key-%d", i)
		e.Put(key, engine.TextValue(fmt.Sprintf("test-value-%d", i)), time.Time{})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			e.Get(key)
			counter++
		}
	})
}

// Parallel benchmarking for Remove operation
func benchmarkRemove(b *testing.B, e engine.KVEngine) {

	b.Cleanup(func() {
		e.Close()
	})

	requireFeature(b, e, engine.FeaturePut)
	requireFeature(b, e, engine.FeatureRemove)

	numKeys := 100000
	if b.N < numKeys {
		numKeys = b.N
	}

	// Prepare data
	keys := make([]string, numKeys)
	for i := 0; i < numKeys; i++ {
		keys[i] = fmt.Sprintf("test-key-%d", i)
		e.Put(keys[i], engine.TextValue(fmt.Sprintf("test-value-%d", i)), time.Time{})
	}

	// Counter for atomic access
	var counter int64

	// Reset timer since we were doing setup
	b.ResetTimer()

	// Run parallel remove operations
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			idx := int(atomic.AddInt64(&counter, 1)-1) % numKeys
			e.Remove(keys[idx])
		}
	})
}

// Parallel benchmarking for AdjustInteger on disjoint keys
func benchmarkAdjust(b *testing.B, e engine.KVEngine) {

	b.Cleanup(func() {
		e.Close()
	})

	requireFeature(b, e, engine.FeatureAdjust)

	numKeys := 10000

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-counter-%d", counter%numKeys)
			e.AdjustInteger(key, 1, 0)
			counter++
		}
	})
}

// Parallel benchmarking for AdjustInteger on a single contended key
func benchmarkAdjustContended(b *testing.B, e engine.KVEngine) {

	b.Cleanup(func() {
		e.Close()
	})

	requireFeature(b, e, engine.FeatureAdjust)

	const key = "contended-counter"

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			e.AdjustInteger(key, 1, 0)
		}
	})
}

// Benchmark for mixed usage patterns
func benchmarkMixedUsage(b *testing.B, e engine.KVEngine) {
	b.Cleanup(func() {
		e.Close()
	})

	requireFeature(b, e, engine.FeaturePut)
	requireFeature(b, e, engine.FeatureGet)
	requireFeature(b, e, engine.FeatureRemove)
	requireFeature(b, e, engine.FeatureAdjust)

	// Number of pre-populated keys
	numKeys := 100000
	if b.N < numKeys {
		numKeys = b.N
	}

	// Prepare initial data
	keys := make([]string, numKeys)
	for i := 0; i < numKeys; i++ {
		keys[i] = fmt.Sprintf("test-key-%d", i)
		e.Put(keys[i], engine.TextValue(fmt.Sprintf("test-value-%d", i)), time.Time{})
	}

	// Counter for atomic access
	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		// Local counter for each goroutine
		localCounter := 0
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

		for pb.Next() {
			// Get a somewhat random index
			idx := int(atomic.AddInt64(&counter, 1)-1) % numKeys

			// For every 10th operation, use a completely new key
			var key string
			if localCounter%10 == 0 {
				key = fmt.Sprintf("new-key-%d", localCounter)
			} else {
				key = keys[idx]
			}

			// Random operation: 50% Get, 30% Put, 10% Remove, 10% Adjust
			switch p := rnd.Float32(); {
			case p < .5:
				e.Get(key)
			case p < .8:
				e.Put(key, engine.TextValue(fmt.Sprintf("mixed-value-%d", localCounter)), time.Time{})
			case p < .9:
				e.Remove(key)
			default:
				e.AdjustInteger(fmt.Sprintf("mixed-counter-%d", localCounter%100), 1, 0)
			}

			localCounter++
		}
	})
}
