package lstore

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestQueueOrder tests that items of one producer are handled in push order
func TestQueueOrder(t *testing.T) {
	var got []int
	q := newWriteQueue(func(v *int) {
		got = append(got, *v)
	})

	for i := 0; i < 1000; i++ {
		v := i
		if !q.push(&v) {
			t.Fatalf("Failed to push item %d", i)
		}
	}
	q.close()

	if len(got) != 1000 {
		t.Fatalf("Expected 1000 items, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("Expected item %d at position %d, got %d", i, i, v)
		}
	}
}

// TestQueueConcurrentProducers verifies that no item is lost and each producer keeps its order
func TestQueueConcurrentProducers(t *testing.T) {
	const numProducers = 10
	const itemsPerProducer = 1000

	type item struct{ producer, seq int }

	last := make([]int, numProducers)
	for i := range last {
		last[i] = -1
	}
	var count atomic.Int64
	var orderErrors atomic.Int64

	q := newWriteQueue(func(v *item) {
		// handler runs on a single goroutine, no locking needed
		if v.seq != last[v.producer]+1 {
			orderErrors.Add(1)
		}
		last[v.producer] = v.seq
		count.Add(1)
	})

	var wg sync.WaitGroup
	wg.Add(numProducers)
	for p := 0; p < numProducers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < itemsPerProducer; i++ {
				q.push(&item{producer: p, seq: i})
			}
		}(p)
	}
	wg.Wait()
	q.close()

	if count.Load() != numProducers*itemsPerProducer {
		t.Errorf("Expected %d items, got %d", numProducers*itemsPerProducer, count.Load())
	}
	if orderErrors.Load() != 0 {
		t.Errorf("Got %d out of order items", orderErrors.Load())
	}
}

// TestQueueClose tests that close drains the queue and rejects further pushes
func TestQueueClose(t *testing.T) {
	var handled atomic.Int64
	release := make(chan struct{})

	q := newWriteQueue(func(v *int) {
		<-release
		handled.Add(1)
	})

	for i := 0; i < 5; i++ {
		v := i
		q.push(&v)
	}

	closed := make(chan struct{})
	go func() {
		q.close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatalf("close returned before the queue was drained")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-closed

	if handled.Load() != 5 {
		t.Errorf("Expected 5 handled items, got %d", handled.Load())
	}

	v := 42
	if q.push(&v) {
		t.Errorf("push after close should fail")
	}
	if q.push(nil) {
		t.Errorf("push of nil should fail")
	}

	// closing twice is fine
	q.close()
}

// TestQueueSize tests the approximate size while the consumer is blocked
func TestQueueSize(t *testing.T) {
	release := make(chan struct{})
	q := newWriteQueue(func(v *int) {
		<-release
	})

	for i := 0; i < 3; i++ {
		v := i
		q.push(&v)
	}

	// the consumer holds the first item, the others are queued
	deadline := time.Now().Add(time.Second)
	for q.size() != 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if q.size() != 2 {
		t.Errorf("Expected 2 queued items, got %d", q.size())
	}

	close(release)
	q.close()
	if q.size() != 0 {
		t.Errorf("Expected empty queue after close, got %d", q.size())
	}
}

// size counts the queued items by walking the list.
func (q *writeQueue[T]) size() int {
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
