package util

import (
	"container/heap"
	"fmt"
	"sort"
	"testing"
)

// TestNewSweepHeap tests the creation of a new SweepHeap
func TestNewSweepHeap(t *testing.T) {
	sh := NewSweepHeap()

	if sh == nil {
		t.Fatal("NewSweepHeap() returned nil")
	}

	if sh.Len() != 0 {
		t.Errorf("New heap should be empty, but has length %d", sh.Len())
	}

	if len(sh.itemsMap) != 0 {
		t.Errorf("New heap's map should be empty, but has %d items", len(sh.itemsMap))
	}
}

// TestAddItem tests scheduling keys on the heap
func TestAddItem(t *testing.T) {
	sh := NewSweepHeap()
	heap.Init(sh)

	// Schedule a few keys
	sh.AddItem("a", 100)
	sh.AddItem("b", 200)
	sh.AddItem("c", 50)

	if sh.Len() != 3 {
		t.Errorf("Heap should have 3 items, but has %d", sh.Len())
	}

	// Check if items exist
	for _, key := range []string{"a", "b", "c"} {
		if !sh.Contains(key) {
			t.Errorf("Heap should contain key %s", key)
		}
	}

	// Check the order (min heap, so the earliest deadline should be first)
	item, exists := sh.Peek()
	if !exists {
		t.Fatal("Peek() should return an item")
	}

	if item.Key != "c" || item.Deadline != 50 {
		t.Errorf("Expected min item to be (c,50), got (%s,%d)", item.Key, item.Deadline)
	}
}

// TestUpdateItem tests rescheduling existing keys
func TestUpdateItem(t *testing.T) {
	sh := NewSweepHeap()
	heap.Init(sh)

	// Schedule keys
	sh.AddItem("a", 100)
	sh.AddItem("b", 200)

	// Reschedule a key to a later deadline
	sh.AddItem("a", 300)

	// Check if update worked
	item, exists := sh.GetByKey("a")
	if !exists {
		t.Fatal("Item with key a should exist")
	}

	if item.Deadline != 300 {
		t.Errorf("Item with key a should have deadline 300, got %d", item.Deadline)
	}

	// Check if heap property is maintained
	min, _ := sh.Peek()
	if min.Key != "b" {
		t.Errorf("Min item should now be key b, got %s", min.Key)
	}

	// Reschedule to an earlier deadline
	sh.AddItem("b", 50)

	min, _ = sh.Peek()
	if min.Key != "b" || min.Deadline != 50 {
		t.Errorf("Min item should now be (b,50), got (%s,%d)", min.Key, min.Deadline)
	}
}

// TestRemoveByKey tests removing scheduled keys
func TestRemoveByKey(t *testing.T) {
	sh := NewSweepHeap()
	heap.Init(sh)

	sh.AddItem("a", 100)
	sh.AddItem("b", 200)
	sh.AddItem("c", 300)

	// Remove key b
	deadline, exists := sh.RemoveByKey("b")

	if !exists {
		t.Fatal("RemoveByKey should return true for existing key")
	}

	if deadline != 200 {
		t.Errorf("RemoveByKey should return deadline 200, got %d", deadline)
	}

	if sh.Len() != 2 {
		t.Errorf("Heap should have 2 items after removal, has %d", sh.Len())
	}

	if sh.Contains("b") {
		t.Error("Heap should not contain key b after removal")
	}

	// Try to remove non-existent key
	_, exists = sh.RemoveByKey("missing")
	if exists {
		t.Error("RemoveByKey should return false for non-existent key")
	}
}

// TestPopOrder tests if items are popped in deadline order
func TestPopOrder(t *testing.T) {
	sh := NewSweepHeap()
	heap.Init(sh)

	// Schedule keys in random order
	items := []struct {
		key      string
		deadline uint64
	}{
		{"e", 50},
		{"c", 30},
		{"a", 10},
		{"d", 40},
		{"b", 20},
	}

	for _, it := range items {
		sh.AddItem(it.key, it.deadline)
	}

	// Sort the items for comparison
	sort.Slice(items, func(i, j int) bool {
		return items[i].deadline < items[j].deadline
	})

	// Pop all items and verify order
	for i, expected := range items {
		if sh.Len() == 0 {
			t.Fatalf("Heap empty after %d items, expected %d items", i, len(items))
		}

		item := heap.Pop(sh).(*SweepItem)
		if item.Key != expected.key || item.Deadline != expected.deadline {
			t.Errorf("Pop %d: expected (%s,%d), got (%s,%d)",
				i, expected.key, expected.deadline, item.Key, item.Deadline)
		}
	}

	if sh.Len() != 0 {
		t.Errorf("Heap should be empty after popping all items, has %d items", sh.Len())
	}
}

// TestPeekEmptyHeap tests behavior when peeking an empty heap
func TestPeekEmptyHeap(t *testing.T) {
	sh := NewSweepHeap()
	heap.Init(sh)

	_, exists := sh.Peek()
	if exists {
		t.Error("Peek on empty heap should return exists=false")
	}
}

// TestGetByKey tests retrieving scheduled items by key
func TestGetByKey(t *testing.T) {
	sh := NewSweepHeap()
	heap.Init(sh)

	sh.AddItem("a", 100)
	sh.AddItem("b", 200)

	// Get existing item
	item, exists := sh.GetByKey("a")
	if !exists {
		t.Fatal("GetByKey should find existing key")
	}

	if item.Key != "a" || item.Deadline != 100 {
		t.Errorf("GetByKey returned incorrect item: expected (a,100), got (%s,%d)",
			item.Key, item.Deadline)
	}

	// Get non-existent item
	_, exists = sh.GetByKey("missing")
	if exists {
		t.Error("GetByKey should return exists=false for non-existent key")
	}
}

// TestManyItems exercises the heap with a larger schedule
func TestManyItems(t *testing.T) {
	sh := NewSweepHeap()
	heap.Init(sh)

	numItems := 10_000
	for i := 0; i < numItems; i++ {
		sh.AddItem(fmt.Sprintf("key-%d", i), uint64((i*7919)%numItems))
	}

	if sh.Len() != numItems {
		t.Fatalf("Heap should have %d items, has %d", numItems, sh.Len())
	}

	// Pop everything and verify the deadlines never decrease
	var last uint64
	for sh.Len() > 0 {
		item := heap.Pop(sh).(*SweepItem)
		if item.Deadline < last {
			t.Fatalf("Heap order violated: %d after %d", item.Deadline, last)
		}
		last = item.Deadline
	}
}
