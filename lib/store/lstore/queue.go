package lstore

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

// writeQueue is a lock-free multi-producer single-consumer queue with one consumer
// goroutine that hands every item to a handler.
//
// Items pushed by one goroutine are handled in push order. Items of different
// goroutines are ordered by the moment their append succeeds.
type writeQueue[T any] struct {
	head atomic.Pointer[node[T]]
	tail atomic.Pointer[node[T]]

	handle func(*T)
	done   chan struct{} // closed when the consumer returned

	// closeMu makes close wait for producers that already passed the closed check
	closeMu sync.RWMutex
	closed  atomic.Bool

	// Condition variable for efficient waiting
	mu   sync.Mutex
	cond *sync.Cond
}

// newWriteQueue creates the queue and starts its consumer goroutine.
func newWriteQueue[T any](handle func(*T)) *writeQueue[T] {
	// Create a sentinel node (dummy node at the beginning)
	sentinel := &node[T]{}

	q := &writeQueue[T]{
		handle: handle,
		done:   make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)

	// Set the initial head and tail to the sentinel node
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	go q.consume()

	return q
}

// push appends an item to the queue.
// Returns true if the item was added, or false if the queue is closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *writeQueue[T]) push(value *T) bool {
	if value == nil {
		return false
	}

	q.closeMu.RLock()
	defer q.closeMu.RUnlock()
	if q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}
	var backoff uint8 = 0

	for {
		tailNode := q.tail.Load()

		// try to atomically append our node to the current tail
		next := tailNode.next.Load()
		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// another producer may already have moved the tail, that is fine
				q.tail.CompareAndSwap(tailNode, newNode)
				q.signal()
				return true
			}
		} else {
			// help a producer that appended but has not moved the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		// spin a little at low contention, then yield
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// signal wakes the consumer. The lock prevents a lost wakeup between the
// consumer's emptiness check and its Wait.
func (q *writeQueue[T]) signal() {
	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// consume hands all items to the handler until the queue is closed and drained
func (q *writeQueue[T]) consume() {
	defer close(q.done)

	for {
		hasItems := false

		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break // No more items available
			}
			hasItems = true

			value := next.value
			q.head.Store(next)
			next.value = nil // help go gc

			q.handle(value)
		}

		// Exit if closed and no more items
		if !hasItems && q.closed.Load() {
			return
		}

		if !hasItems {
			q.mu.Lock()
			// Double-check condition after acquiring lock
			if q.head.Load().next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// close rejects further pushes and blocks until every queued item was handled.
// Calling close more than once is fine.
func (q *writeQueue[T]) close() {
	q.closeMu.Lock()
	q.closed.Store(true)
	q.closeMu.Unlock()

	q.signal()
	<-q.done
}
