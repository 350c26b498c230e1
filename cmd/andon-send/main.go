// andon-send submits a single pin event to an andon server.
//
// It speaks the same one-shot TCP protocol as the GPIO devices: connect,
// send one JSON document, print the server's reply. Useful for smoke
// testing a deployment and for scripting events from machines that have
// no GPIO daemon.
//
// Usage:
//
//	andon-send -server 10.0.0.5:5000 -device press1 -pin 25 -state on -time-diff 1.5
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/nerrad567/andon-core/internal/event"
)

func main() {
	var (
		serverAddr = flag.String("server", "127.0.0.1:5000", "server address (host:port)")
		deviceName = flag.String("device", "", "device name (default: hostname)")
		pinNum     = flag.Int("pin", 0, "pin number")
		state      = flag.String("state", "unknown", "pin state (e.g. on, off, HIGH, LOW)")
		timeDiff   = flag.Float64("time-diff", 0, "seconds since previous transition")
		timestamp  = flag.String("timestamp", "", "event time (default: now)")
		timeout    = flag.Duration("timeout", 10*time.Second, "connect and reply timeout")
	)
	flag.Parse()

	if err := send(*serverAddr, *deviceName, *pinNum, *state, *timeDiff, *timestamp, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// send performs the one-shot exchange and prints the server's reply.
func send(addr, deviceName string, pinNum int, state string, timeDiff float64, timestamp string, timeout time.Duration) error {
	if deviceName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("determining device name: %w", err)
		}
		deviceName = hostname
	}
	if timestamp == "" {
		timestamp = time.Now().Format(event.TimestampLayout)
	}

	msg := event.Message{
		DeviceName:  deviceName,
		Pin:         pinNum,
		State:       state,
		TimeDiffSec: timeDiff,
		Timestamp:   timestamp,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("setting deadline: %w", err)
	}

	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("sending event: %w", err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		if err := tc.CloseWrite(); err != nil {
			return fmt.Errorf("closing write side: %w", err)
		}
	}

	reply, err := io.ReadAll(conn)
	if err != nil {
		return fmt.Errorf("reading reply: %w", err)
	}

	fmt.Println(string(reply))
	return nil
}
