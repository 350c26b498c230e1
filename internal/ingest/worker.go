package ingest

import (
	"context"

	"github.com/nerrad567/andon-core/internal/event"
)

// Appender persists one event for one device.
type Appender interface {
	Append(deviceName string, ev event.Event) error
}

// Sink observes events after they have been successfully appended.
// Implementations must not block for long; they run on the worker
// goroutine.
type Sink interface {
	RecordEvent(deviceName string, ev event.Event)
}

// Logger is the logging interface the worker needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Worker drains the queue into the store from a single goroutine, which is
// what serialises all device log writes.
type Worker struct {
	queue  *Queue
	store  Appender
	logger Logger
	sinks  []Sink
}

// NewWorker creates a Worker draining queue into store.
func NewWorker(queue *Queue, store Appender, logger Logger) *Worker {
	return &Worker{
		queue:  queue,
		store:  store,
		logger: logger,
	}
}

// AddSink registers a sink notified after each successful append.
// Not safe to call once Run has started.
func (w *Worker) AddSink(sink Sink) {
	w.sinks = append(w.sinks, sink)
}

// Run processes queue entries until ctx is cancelled, then returns after
// the in-flight entry.
//
// Shutdown is deliberately best-effort: entries still queued when the stop
// signal arrives are discarded, and the dropped count is logged. Callers
// needing at-least-once delivery of accepted events must keep the context
// alive until the queue is empty.
//
// Persistence failures are logged and the event is dropped; they never stop
// the worker.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("persistence worker started")

	for {
		entry, ok := w.queue.TryDequeue()
		if ok {
			w.process(entry)

			select {
			case <-ctx.Done():
				w.logStopped()
				return
			default:
			}
			continue
		}

		if err := w.queue.Wait(ctx); err != nil {
			w.logStopped()
			return
		}
	}
}

// process appends one entry and notifies sinks on success.
func (w *Worker) process(entry Entry) {
	if err := w.store.Append(entry.Device, entry.Event); err != nil {
		w.logger.Error("appending event failed, dropping",
			"device", entry.Device,
			"pin", entry.Event.Pin,
			"error", err,
		)
		return
	}

	w.logger.Debug("event persisted",
		"device", entry.Device,
		"pin", entry.Event.Pin,
		"state", entry.Event.State,
	)

	for _, sink := range w.sinks {
		sink.RecordEvent(entry.Device, entry.Event)
	}
}

// logStopped reports the stop and how many accepted entries were discarded.
func (w *Worker) logStopped() {
	w.logger.Info("persistence worker stopped", "dropped", w.queue.Len())
}
