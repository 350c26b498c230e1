// Package influxdb mirrors persisted pin events into InfluxDB v2 for
// dashboards and retention-managed history.
//
// The mirror is strictly optional and advisory: the CSV device logs remain
// the source of truth, writes are non-blocking and batched, and write
// failures never affect event persistence. When disabled (the default),
// Connect returns ErrDisabled and nothing else in the service changes.
package influxdb
