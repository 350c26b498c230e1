package ingest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/andon-core/internal/event"
)

func TestQueue_FIFOOrder(t *testing.T) {
	q := NewQueue()

	for i := 0; i < 5; i++ {
		q.Enqueue(Entry{Device: fmt.Sprintf("dev%d", i)})
	}
	if got := q.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}

	for i := 0; i < 5; i++ {
		e, ok := q.TryDequeue()
		if !ok {
			t.Fatalf("TryDequeue() #%d returned no entry", i)
		}
		if want := fmt.Sprintf("dev%d", i); e.Device != want {
			t.Errorf("entry %d device = %q, want %q", i, e.Device, want)
		}
	}

	if _, ok := q.TryDequeue(); ok {
		t.Error("TryDequeue() on empty queue returned an entry")
	}
	if got := q.Len(); got != 0 {
		t.Errorf("Len() after drain = %d, want 0", got)
	}
}

func TestQueue_WaitWakesOnEnqueue(t *testing.T) {
	q := NewQueue()

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- q.Wait(ctx)
	}()

	q.Enqueue(Entry{Device: "press1"})

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait() did not wake after Enqueue")
	}

	if _, ok := q.TryDequeue(); !ok {
		t.Error("TryDequeue() after wakeup returned no entry")
	}
}

func TestQueue_WaitHonoursContext(t *testing.T) {
	q := NewQueue()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Wait(ctx); err != context.Canceled {
		t.Errorf("Wait() error = %v, want %v", err, context.Canceled)
	}
}

func TestQueue_NoMissedWakeup(t *testing.T) {
	// Enqueue before Wait: the buffered notification must survive so Wait
	// returns immediately instead of blocking until the next enqueue.
	q := NewQueue()
	q.Enqueue(Entry{Device: "press1"})
	_, _ = q.TryDequeue()
	q.Enqueue(Entry{Device: "press2"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := q.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v, want nil (pending notification)", err)
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue()

	const producers = 8
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(Entry{
					Device: fmt.Sprintf("dev%d", p),
					Event:  event.Event{Pin: i},
				})
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[string]int)
	for {
		e, ok := q.TryDequeue()
		if !ok {
			break
		}
		// Per-producer order must hold even under interleaving.
		if e.Event.Pin != seen[e.Device] {
			t.Fatalf("device %s: got pin %d, want %d", e.Device, e.Event.Pin, seen[e.Device])
		}
		seen[e.Device]++
	}

	for p := 0; p < producers; p++ {
		dev := fmt.Sprintf("dev%d", p)
		if seen[dev] != perProducer {
			t.Errorf("device %s: got %d entries, want %d", dev, seen[dev], perProducer)
		}
	}
}
