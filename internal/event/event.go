// Package event defines the device state-change event and the wire message
// it arrives in.
package event

import (
	"fmt"
	"time"
)

// Wire message field defaults.
const (
	DefaultDeviceName = "unknown"
	DefaultState      = "unknown"
)

// TimestampLayout is the server-side timestamp format, millisecond precision.
const TimestampLayout = "2006-01-02 15:04:05.000"

// clientTimestampLayout is the format monitors send (second precision).
const clientTimestampLayout = "2006-01-02 15:04:05"

// Event is one device pin state-change record. Immutable once created.
type Event struct {
	Pin         int     `json:"pin"`
	State       string  `json:"state"`
	TimeDiffSec float64 `json:"time_diff_sec"`
	Timestamp   string  `json:"timestamp"`
}

// Message is the JSON document a monitor sends, one per connection.
// Every field is optional; absent fields take the documented defaults.
type Message struct {
	DeviceName  string  `json:"device_name"`
	Pin         int     `json:"pin"`
	State       string  `json:"state"`
	TimeDiffSec float64 `json:"time_diff_sec"`
	Timestamp   string  `json:"timestamp"`
}

// Event returns the persistable event carried by the message.
func (m Message) Event() Event {
	return Event{
		Pin:         m.Pin,
		State:       m.State,
		TimeDiffSec: m.TimeDiffSec,
		Timestamp:   m.Timestamp,
	}
}

// ParseTimestamp parses an event timestamp in any of the formats the fleet
// produces: server format (with milliseconds), monitor format (seconds), or
// RFC 3339.
//
// Returns:
//   - time.Time: Parsed timestamp (local zone for the legacy layouts)
//   - error: If the value matches none of the known layouts
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range []string{TimestampLayout, clientTimestampLayout, time.RFC3339} {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
