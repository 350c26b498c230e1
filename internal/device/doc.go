// Package device maintains the optional device registry: a small SQLite
// table recording, per device, when it first and last reported and how
// many events it has sent.
//
// The registry is fed by a sink hanging off the persistence worker, so it
// only ever counts events that made it into a device log. It is disabled
// by default and the server runs identically without it.
package device
