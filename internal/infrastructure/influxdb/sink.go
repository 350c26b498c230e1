package influxdb

import (
	"time"

	"github.com/nerrad567/andon-core/internal/event"
)

// LabelResolver maps a pin number to its display label.
type LabelResolver interface {
	Resolve(pin int) string
}

// EventSink mirrors persisted events into InfluxDB. It satisfies the
// ingest worker's sink interface.
type EventSink struct {
	client   *Client
	resolver LabelResolver
	now      func() time.Time
}

// NewEventSink creates a sink writing through client.
func NewEventSink(client *Client, resolver LabelResolver) *EventSink {
	return &EventSink{
		client:   client,
		resolver: resolver,
		now:      time.Now,
	}
}

// RecordEvent writes the event as a pin_event point. The event's own
// timestamp is used when it parses; otherwise the wall clock stands in so
// the point is not lost.
func (s *EventSink) RecordEvent(deviceName string, ev event.Event) {
	ts, err := event.ParseTimestamp(ev.Timestamp)
	if err != nil {
		ts = s.now()
	}

	s.client.WritePinEvent(deviceName, ev.Pin, s.resolver.Resolve(ev.Pin), ev.State, ev.TimeDiffSec, ts)
}
