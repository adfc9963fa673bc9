// Package util provides a lock-free Multi-Producer Single-Consumer (MPSC) queue.
//
// The queue is an unbounded linked list appended to with compare-and-swap,
// so any number of goroutines may Push concurrently without taking a lock.
// A dedicated consumer goroutine drains the list into an unbuffered channel
// exposed via Recv, which makes the queue usable in select statements. Items
// pushed concurrently have no strict FIFO order between producers; each
// producer's own items stay in order.
//
// The engine uses one queue per shard to hand expiry-schedule events from
// writers to the shard's sweeper goroutine without blocking the write path.
package util

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// node represents a single element in the queue
type node[T any] struct {
	value *T
	next  atomic.Pointer[node[T]]
}

// LockFreeMPSC is a lock-free multi-producer single-consumer queue.
type LockFreeMPSC[T any] struct {
	head     atomic.Pointer[node[T]]
	tail     atomic.Pointer[node[T]]
	out      chan *T
	consumer sync.WaitGroup
	closed   atomic.Bool

	// the consumer parks on this condition while the list is empty
	mu   sync.Mutex
	cond *sync.Cond
}

// NewLockFreeMPSC creates the queue and starts its consumer goroutine.
func NewLockFreeMPSC[T any]() *LockFreeMPSC[T] {
	// head and tail start on a shared sentinel node
	sentinel := &node[T]{}

	q := &LockFreeMPSC[T]{
		out: make(chan *T),
	}

	q.cond = sync.NewCond(&q.mu)

	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	q.consumer.Add(1)
	go q.consume()

	return q
}

// Push adds an item to the queue.
// Returns true if the item was added, or false if the queue is closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *LockFreeMPSC[T]) Push(value *T) bool {

	if value == nil {
		return false
	}

	if q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}

	var tailNode *node[T]
	var backoff uint8 = 0

	for {
		tailNode = q.tail.Load()

		next := tailNode.next.Load()
		if next == nil {
			// tail is the real end of the list, try to append
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// appended; the tail swing may fail when another
				// producer helps out, which is fine
				q.tail.CompareAndSwap(tailNode, newNode)

				q.cond.Signal()

				return true
			}
		} else {
			// another producer appended but has not swung tail yet, help it
			q.tail.CompareAndSwap(tailNode, next)
		}

		// contention: spin briefly, then keep yielding so other
		// goroutines can make progress
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// consume drains the linked list into the output channel, advancing head so
// delivered nodes become collectable.
func (q *LockFreeMPSC[T]) consume() {
	defer q.consumer.Done()
	defer close(q.out)

	for {
		hasItems := false

		for {
			head := q.head.Load()
			next := head.next.Load()

			if next == nil {
				break
			}

			hasItems = true

			value := next.value

			// advance head past the delivered node
			q.head.Store(next)

			q.out <- value

			// drop the reference so the node does not pin the value
			next.value = nil
		}

		if !hasItems && q.closed.Load() {
			return
		}

		if !hasItems {
			q.mu.Lock()
			// re-check under the lock, a producer may have signalled
			// between the empty scan and here
			head := q.head.Load()
			if head.next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Recv returns a receive-only channel for consuming from the queue.
// This allows the queue to be used with the '<-' operator in select statements.
func (q *LockFreeMPSC[T]) Recv() <-chan *T {
	return q.out
}

// Close closes the queue, preventing further writes.
// Any items already in the queue will still be delivered to the consumer.
func (q *LockFreeMPSC[T]) Close() {
	q.closed.Store(true)

	// wake the consumer so it can observe the closed flag
	q.cond.Signal()
}

// IsClosed returns true if the queue is closed.
func (q *LockFreeMPSC[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len returns an approximate count of the number of items in the queue.
// This is O(n) and should only be used for debugging.
func (q *LockFreeMPSC[T]) Len() int {
	count := 0
	current := q.head.Load()

	for {
		next := current.next.Load()
		if next == nil {
			break
		}
		count++
		current = next
	}

	return count
}
