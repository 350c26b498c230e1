package ingest

import (
	"context"
	"sync"

	"github.com/nerrad567/andon-core/internal/event"
)

// Entry pairs a device name with a decoded event while it is in transit
// between ingestion and persistence. Ownership transfers to whichever
// consumer dequeues it; exactly one consumer ever sees a given entry.
type Entry struct {
	Device string
	Event  event.Event
}

// Queue is an unbounded FIFO of entries, safe for any number of concurrent
// producers and a single consumer.
//
// Enqueue never blocks and never fails; memory is the only bound. The
// consumer waits on a notification channel instead of polling, so an idle
// queue costs nothing.
type Queue struct {
	mu      sync.Mutex
	entries []Entry
	head    int

	// notify carries at most one pending wakeup. A buffered send in
	// Enqueue cannot be lost between the consumer's empty TryDequeue and
	// its Wait, which is what makes the drain-then-wait loop race-free.
	notify chan struct{}
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Enqueue appends an entry in submission order. Safe for concurrent use;
// never blocks the producer.
func (q *Queue) Enqueue(e Entry) {
	q.mu.Lock()
	q.entries = append(q.entries, e)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// TryDequeue removes and returns the oldest entry, if any. Non-blocking.
//
// Returns:
//   - Entry: The dequeued entry (zero value if none)
//   - bool: True if an entry was dequeued
func (q *Queue) TryDequeue() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.entries) {
		return Entry{}, false
	}

	e := q.entries[q.head]
	q.entries[q.head] = Entry{}
	q.head++

	// Reclaim the backing array once fully drained.
	if q.head == len(q.entries) {
		q.entries = q.entries[:0]
		q.head = 0
	}

	return e, true
}

// Wait blocks until an entry may be available or ctx is done. A nil return
// means "check the queue again", not "an entry is guaranteed".
func (q *Queue) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.notify:
		return nil
	}
}

// Len returns the number of entries currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries) - q.head
}
