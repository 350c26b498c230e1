// Package server implements the TCP front door for device events.
//
// The wire protocol is deliberately primitive because the clients are
// tiny: connect, send one JSON document, read one reply line, disconnect.
// There is no framing beyond the connection itself and no pipelining.
//
// Replies:
//
//	OK                             event accepted and queued
//	ERROR: Invalid JSON format     payload was not parseable JSON
//	ERROR: Internal server error   payload parsed but was not a JSON object
//	ERROR: Failed to process data  persistence hand-off failed (reserved)
//
// A connection that closes without sending anything gets no reply.
// Accepting an event means it is queued for persistence, not yet written;
// durability is the persistence worker's job.
package server
