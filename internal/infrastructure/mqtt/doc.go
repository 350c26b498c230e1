// Package mqtt wraps the Eclipse Paho client for the optional MQTT event
// source.
//
// The wrapper keeps reconnection concerns out of the rest of the service:
// subscriptions are tracked and restored on reconnect, handlers run with
// panic recovery, and the broker carries a retained online/offline status
// for the service on andon/system/status (via Last Will for crashes, an
// explicit publish for graceful shutdown).
//
// The source itself lives in the ingest package; this package only owns
// the broker connection.
package mqtt
