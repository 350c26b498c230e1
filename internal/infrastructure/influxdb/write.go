package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePinEvent mirrors one persisted pin event into the time-series
// bucket.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Pin is recorded both as the raw number and the resolved label so
// dashboards can group by either.
//
// Parameters:
//   - deviceName: Originating device
//   - pin: Raw pin number
//   - pinLabel: Resolved pin label (e.g. "Red")
//   - state: Reported pin state
//   - timeDiffSec: Seconds since the previous transition on the device
//   - timestamp: Event time
func (c *Client) WritePinEvent(deviceName string, pin int, pinLabel, state string, timeDiffSec float64, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"pin_event",
		map[string]string{
			"device": deviceName,
			"pin":    pinLabel,
			"state":  state,
		},
		map[string]interface{}{
			"pin_number":    pin,
			"time_diff_sec": timeDiffSec,
		},
		timestamp,
	)

	c.writeAPI.WritePoint(point)
}
