package sharded

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ukvlib/ukv/lib/engine"
	"github.com/ukvlib/ukv/lib/engine/sharded/internal"
	"github.com/ukvlib/ukv/lib/engine/util"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// defaultSweepInterval is the default pause between sweep cycles
	defaultSweepInterval = 100 * time.Millisecond
)

// --------------------------------------------------------------------------
// Core engine structure
// --------------------------------------------------------------------------

// engineImpl implements engine.KVEngine with sharded in-memory storage
type engineImpl struct {
	numShards int               // Number of shards
	seed      uint64            // Seed for the shard-routing hash function
	shards    []*internal.Shard // Array of shards
	clock     func() time.Time  // Time source for expiry decisions

	// background sweep
	sweepInterval time.Duration
	sweepRunning  atomic.Bool
}

// Options configures the engine behavior during initialization
type Options struct {
	ShardCount    int              // Number of shards (0 = number of CPUs)
	SweepInterval time.Duration    // Pause between sweep cycles (0 = lazy-only expiry, no background sweep)
	Clock         func() time.Time // Time source (nil = time.Now); overridable for deterministic tests
}

// DefaultOptions returns the default engine options
func DefaultOptions() *Options {
	return &Options{
		ShardCount:    runtime.NumCPU(),
		SweepInterval: defaultSweepInterval,
		Clock:         time.Now,
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// New creates a new sharded engine instance with the specified options
// (optional, nil = defaults).
//
// Thread-safety: This function is not thread-safe and should only be called
// once during initialization.
func New(opts *Options) engine.KVEngine {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}

	numShards := opts.ShardCount
	if numShards < 1 {
		numShards = runtime.NumCPU()
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	// Create shards
	shards := make([]*internal.Shard, numShards)
	for i := 0; i < numShards; i++ {
		shards[i] = internal.NewShard()
	}

	e := &engineImpl{
		numShards:     numShards,
		seed:          util.GenerateSeed(),
		shards:        shards,
		clock:         clock,
		sweepInterval: opts.SweepInterval,
	}

	e.sweepRunning.Store(false)

	// start the background sweep if configured
	if e.sweepInterval > 0 {
		e.startSweep()
	}

	return e
}

// shardFor returns the shard responsible for a key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (e *engineImpl) shardFor(key string) *internal.Shard {
	return internal.GetShard(util.HashString(key, e.seed), e.shards)
}

// --------------------------------------------------------------------------
// Core KVEngine Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Put unconditionally installs a new entry for the key, replacing any prior
// entry regardless of its kind. A zero deadline means the entry never expires.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (e *engineImpl) Put(key string, value engine.Value, deadline time.Time) {
	shard := e.shardFor(key)

	shard.Data.Store(key, engine.Entry{
		Value:    value,
		Deadline: deadline,
	})

	// hand the key to the sweeper if it carries a deadline
	if !deadline.IsZero() && e.sweepRunning.Load() {
		shard.Events.Push(&internal.Event{
			Type:     internal.EventTSchedule,
			Key:      key,
			Deadline: uint64(deadline.UnixNano()),
		})
	}
}

// Remove deletes the entry for the key if one is present.
// An entry whose deadline has already passed counts as absent but is removed
// physically as a side effect.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (e *engineImpl) Remove(key string) bool {
	shard := e.shardFor(key)
	now := e.clock()

	var removed bool
	shard.Data.Compute(key, func(old engine.Entry, loaded bool) (engine.Entry, bool) {
		if !loaded {
			return old, true // delete=true so no entry is created for the key
		}

		// an expired entry is reported as absent, but still reclaimed here
		removed = !old.Expired(now)
		return engine.Entry{}, true
	})

	// let the sweeper drop any pending schedule for the key
	if removed && e.sweepRunning.Load() {
		shard.Events.Push(&internal.Event{
			Type: internal.EventTCancel,
			Key:  key,
		})
	}

	return removed
}

// AdjustInteger atomically adds delta to the integer stored under key and
// returns the new value. If no live entry exists, a new entry with value
// base+delta and no deadline is created. A live entry of another kind causes
// engine.ErrKindMismatch; the entry is left untouched.
//
// Thread-safety: The whole read-modify-write happens inside a single
// per-key atomic update, so concurrent adjustments never lose an update.
func (e *engineImpl) AdjustInteger(key string, delta, base int64) (int64, error) {
	shard := e.shardFor(key)
	now := e.clock()

	var (
		result int64
		err    error
	)

	shard.Data.Compute(key, func(old engine.Entry, loaded bool) (engine.Entry, bool) {
		// case live entry
		if loaded && !old.Expired(now) {
			if n, ok := old.Value.Integer(); ok {
				result = n + delta
				// mutate in place, the deadline is carried over
				return engine.Entry{
					Value:    engine.IntegerValue(result),
					Deadline: old.Deadline,
				}, false
			}

			err = engine.ErrKindMismatch
			return old, false
		}

		// case absent or expired -> create a fresh entry without deadline
		result = base + delta
		return engine.Entry{Value: engine.IntegerValue(result)}, false
	})

	if err != nil {
		return 0, err
	}
	return result, nil
}

// --------------------------------------------------------------------------
// Core KVEngine Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves the live entry for a key.
// The boolean indicates whether a live (non-expired) entry was found.
// An expired entry is removed as a side effect (lazy expiry).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (e *engineImpl) Get(key string) (engine.Entry, bool) {
	shard := e.shardFor(key)
	now := e.clock()

	var (
		entry engine.Entry
		ok    bool
	)

	shard.Data.Compute(key, func(old engine.Entry, loaded bool) (engine.Entry, bool) {
		// case the key doesn't exist
		if !loaded {
			return old, true // delete=true so no entry is created for the key
		}

		// case expired -> remove and report absent
		if old.Expired(now) {
			return engine.Entry{}, true
		}

		// case live entry
		entry, ok = old, true
		return old, false
	})

	return entry, ok
}

// --------------------------------------------------------------------------
// Background Sweep
// --------------------------------------------------------------------------

// startSweep starts the background sweep.
// If the sweep is already running, this function does nothing.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (e *engineImpl) startSweep() {
	if e.sweepRunning.CompareAndSwap(false, true) {
		go e.sweeper()
	}
}

// stopSweep stops the background sweep.
// If the sweep is not running, this function does nothing.
// The sweep can't be started again after it has been stopped!
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (e *engineImpl) stopSweep() {
	if e.sweepRunning.CompareAndSwap(true, false) {
		for _, shard := range e.shards {
			shard.Events.Close()
		}
	}
}

// sweeper is the main background sweep loop.
// WARNING: this method should never be called directly! Use startSweep()
// and stopSweep().
func (e *engineImpl) sweeper() {

	// wait group for all shards
	var wg sync.WaitGroup
	wg.Add(len(e.shards))

	// run the sweep for each shard in parallel
	for i := range e.shards {
		go func(shard *internal.Shard) { // one goroutine per shard
			defer wg.Done()

			sweepTimer := time.NewTimer(e.sweepInterval)
			defer sweepTimer.Stop()

			for {
				// reset timeout
				sweepTimer.Reset(e.sweepInterval)

				endLoop := false
				for !endLoop {
					select {
					// case fold schedule changes into the heap
					case event, ok := <-shard.Events.Recv():
						if !ok {
							return
						}

						switch event.Type {
						case internal.EventTSchedule:
							shard.ExpiryHeap.AddItem(event.Key, event.Deadline)
						case internal.EventTCancel:
							shard.ExpiryHeap.RemoveByKey(event.Key)
						default:
							panic(fmt.Sprintf("unknown event %s", event))
						}

					case <-sweepTimer.C:
						endLoop = true
					}
				}

				// ACTUAL SWEEP LOGIC BELOW

				/*
					Note: We read the clock once per sweep cycle so that a cycle
					terminates even while entries keep being written.
				*/
				now := e.clock()
				nowNanos := uint64(now.UnixNano())

				for {
					item, exists := shard.ExpiryHeap.Peek()
					if !exists || item.Deadline > nowNanos {
						break
					}

					// remove the entry under the same per-key exclusion as
					// regular operations
					shard.Data.Compute(item.Key, func(old engine.Entry, loaded bool) (engine.Entry, bool) {
						if !loaded {
							return old, true
						}

						/*
							Double-check the entry is really expired: it could
							have been overwritten with a later deadline (or no
							deadline) since it was scheduled.
						*/
						if !old.Expired(now) {
							return old, false
						}

						return engine.Entry{}, true
					})

					/*
						The item is dropped from the heap even when the entry
						survived the double-check: an overwrite that changed the
						deadline also pushed a fresh schedule event, so the key
						is re-tracked in the next cycle. Leaving the item in
						place would make this loop spin forever.
					*/
					shard.ExpiryHeap.RemoveByKey(item.Key)
				}
			}
		}(e.shards[i])
	}

	// wait until the sweep is done for all shards
	wg.Wait()
}

// --------------------------------------------------------------------------
// KVEngine Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the engine
func (e *engineImpl) GetInfo() engine.EngineInfo {

	// read the clock once to reduce skew between shards
	now := e.clock()

	// create a size histogram for the info
	histogram := util.NewSizeHistogram()
	samplesPerShard := 100
	wg := sync.WaitGroup{}
	wg.Add(len(e.shards))

	// more stats
	mu := sync.Mutex{}
	samplesCount := 0
	expiredBacklog := 0
	totalEntries := 0
	shardSizes := make([]float64, len(e.shards))

	// concurrently collect samples from all shards
	for shardIndex, shard := range e.shards {
		go func(i int, s *internal.Shard) {
			defer wg.Done()
			count := 0
			expiredCount := 0
			s.Data.Range(func(key string, entry engine.Entry) bool {
				// track size in histogram
				histogram.AddSample(entry.Value.Size())

				// check if the entry is expired but not yet swept
				if entry.Expired(now) {
					expiredCount++
				}

				// only sample a few entries per shard
				count++
				return count < samplesPerShard
			})

			mu.Lock()
			defer mu.Unlock()

			// track stats
			samplesCount += count
			expiredBacklog += expiredCount
			shardSizes[i] = float64(s.Data.Size())
			totalEntries += s.Data.Size()
		}(shardIndex, shard)
	}

	// wait for all shards to finish
	wg.Wait()

	// calculate size
	entryOverhead := 24 // deadline + kind tag + map bookkeeping
	medianSize := histogram.MedianEstimate() + entryOverhead
	avgSize := histogram.AverageSize() + entryOverhead

	// weighted estimate (60% median, 40% average)
	sizeBytes := (medianSize*60 + avgSize*40) / 100

	// expired backlog in percent of sampled entries
	backlogRatio := 0.0
	if samplesCount > 0 {
		backlogRatio = float64(expiredBacklog) / float64(samplesCount)
	}

	// Metadata for this specific engine implementation
	meta := &struct {
		ShardCount        int                    `json:"shard_count"`
		ShardDistribution util.DistributionStats `json:"shard_distribution"`
		SweepInterval     string                 `json:"sweep_interval"`
		ExpiredBacklog    float64                `json:"expired_backlog"`
		Info              string                 `json:"info"`
	}{
		ShardCount:        len(e.shards),
		ShardDistribution: util.NewDistributionStats(shardSizes),
		SweepInterval:     e.sweepInterval.String(),
		ExpiredBacklog:    backlogRatio,
		Info:              "All values (including SizeBytes) are estimates and may vary depending on the engine state.",
	}

	// features
	supportedFeatures := []engine.Feature{
		engine.FeatureGet, engine.FeaturePut,
		engine.FeatureRemove, engine.FeatureAdjust,
	}
	if e.sweepInterval > 0 {
		supportedFeatures = append(supportedFeatures, engine.FeatureSweep)
	}

	return engine.EngineInfo{
		Entries:           totalEntries,
		SizeBytes:         sizeBytes,
		EngineType:        engine.ImplSharded,
		SupportedFeatures: supportedFeatures,
		Metadata:          meta,
	}
}

// SupportsFeature checks if this implementation supports a specific KVEngine feature
func (e *engineImpl) SupportsFeature(feature engine.Feature) bool {
	supportedFeatures := engine.FeatureGet |
		engine.FeaturePut |
		engine.FeatureRemove |
		engine.FeatureAdjust
	if e.sweepInterval > 0 {
		supportedFeatures |= engine.FeatureSweep
	}
	return supportedFeatures&feature == feature
}

// Close stops the background sweep
func (e *engineImpl) Close() error {
	if e.sweepInterval > 0 {
		e.stopSweep()
	} else {
		// no sweeper ever consumed the event queues, close them directly
		for _, shard := range e.shards {
			shard.Events.Close()
		}
	}
	return nil
}
