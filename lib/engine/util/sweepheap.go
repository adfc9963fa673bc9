// Package util
//
// This file provides a specialized priority queue for the background expiry
// sweep. It combines a binary min-heap ordered by deadline with a hash map
// for key-based access, so the sweeper can both pop the next entry due for
// removal and drop a scheduled entry directly when its key is deleted or
// overwritten.
//
// Complexity:
//   - O(log n) for deadline-ordered operations (AddItem, Pop)
//   - O(1) for key-based lookups and existence checks
//   - O(log n) for key-based removal
//
// Concurrency: this implementation is not thread-safe. Each shard sweeper
// owns its heap exclusively, so no external synchronization is required in
// the engine.
package util

import (
	"container/heap"
	"strconv"
)

// SweepItem represents one scheduled removal: a key and the absolute
// deadline (unix nanoseconds) at which the entry becomes removable.
type SweepItem struct {
	Key      string // The key scheduled for removal
	Deadline uint64 // Expiry deadline in unix nanoseconds
	index    int    // Index in the heap, maintained by the heap package
}

func (i *SweepItem) String() string {
	return "{Key: " + i.Key + ", Deadline: " + strconv.FormatUint(i.Deadline, 10) + "}"
}

// SweepHeap implements a priority queue for the expiry sweep
// with both heap operations and key-based access
type SweepHeap struct {
	items    []*SweepItem          // The actual heap slice
	itemsMap map[string]*SweepItem // Map for O(1) access by key
}

// NewSweepHeap creates a new sweep queue
func NewSweepHeap() *SweepHeap {
	return &SweepHeap{
		items:    make([]*SweepItem, 0),
		itemsMap: make(map[string]*SweepItem),
	}
}

// Len returns the number of items in the queue (part of heap.Interface)
func (sh *SweepHeap) Len() int { return len(sh.items) }

// Less compares items by deadline (part of heap.Interface)
// The sweeper wants the earliest deadline first (min-heap)
func (sh *SweepHeap) Less(i, j int) bool {
	return sh.items[i].Deadline < sh.items[j].Deadline
}

// Swap exchanges items at positions i and j (part of heap.Interface)
func (sh *SweepHeap) Swap(i, j int) {
	sh.items[i], sh.items[j] = sh.items[j], sh.items[i]
	sh.items[i].index = i
	sh.items[j].index = j
}

// Push adds an item to the heap (part of heap.Interface)
func (sh *SweepHeap) Push(x interface{}) {
	n := len(sh.items)
	item := x.(*SweepItem)
	item.index = n
	sh.items = append(sh.items, item)
	sh.itemsMap[item.Key] = item
}

// Pop removes and returns the earliest-deadline item (part of heap.Interface)
func (sh *SweepHeap) Pop() interface{} {
	old := sh.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // Avoid memory leak
	item.index = -1 // For safety
	sh.items = old[:n-1]
	delete(sh.itemsMap, item.Key)
	return item
}

// AddItem schedules a key for removal at the given deadline, or reschedules
// it if the key is already present.
func (sh *SweepHeap) AddItem(key string, deadline uint64) {
	// Check if item already exists
	if item, exists := sh.itemsMap[key]; exists {
		// Update deadline and fix heap
		item.Deadline = deadline
		heap.Fix(sh, item.index)
		return
	}

	// Create and add new item
	item := &SweepItem{
		Key:      key,
		Deadline: deadline,
	}
	heap.Push(sh, item)
}

// RemoveByKey removes an item by its key
func (sh *SweepHeap) RemoveByKey(key string) (uint64, bool) {
	item, exists := sh.itemsMap[key]
	if !exists {
		return 0, false
	}

	// Remove from heap
	heap.Remove(sh, item.index)
	return item.Deadline, true
}

// Peek returns the earliest-deadline item without removing it
func (sh *SweepHeap) Peek() (*SweepItem, bool) {
	if len(sh.items) == 0 {
		return nil, false
	}
	return sh.items[0], true
}

// Contains checks if a key is scheduled
func (sh *SweepHeap) Contains(key string) bool {
	_, exists := sh.itemsMap[key]
	return exists
}

// GetByKey retrieves an item by its key without removing it
func (sh *SweepHeap) GetByKey(key string) (*SweepItem, bool) {
	item, exists := sh.itemsMap[key]
	return item, exists
}
