// Package ingest moves accepted device events from their sources to the
// persistence worker.
//
// The pipeline is source -> Queue -> Worker -> store. Sources (the TCP
// handler, optionally MQTT) enqueue without blocking; a single Worker
// goroutine drains the queue and appends each event to the device log
// store, then fans it out to any registered sinks (device registry,
// time-series mirror).
//
// The queue is unbounded and ordering is strictly FIFO across all sources,
// so events for the same device are always persisted in submission order.
package ingest
