package server

import (
	"errors"
	"net"
	"time"

	"github.com/nerrad567/andon-core/internal/event"
	"github.com/nerrad567/andon-core/internal/ingest"
)

// Reply lines sent to the client. The texts are a wire contract with
// deployed device firmware and must not change.
const (
	replyOK            = "OK"
	replyInvalidJSON   = "ERROR: Invalid JSON format"
	replyInternalError = "ERROR: Internal server error"

	// replyFailedProcess is reserved for a persistence hand-off failure.
	// Enqueueing cannot currently fail, but the reply remains part of the
	// protocol for clients that handle it.
	replyFailedProcess = "ERROR: Failed to process data"
)

// replyTimeout bounds the reply write so a dead peer cannot hold the
// connection slot.
const replyTimeout = 5 * time.Second

// handleConn serves one connection: read one JSON event, enqueue it,
// reply, close.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	s.logger.Debug("connection accepted", "remote", remote)

	r := &idleReader{conn: conn, timeout: s.ReadTimeout}
	msg, err := event.DecodeMessage(r, s.now)
	if err != nil {
		s.replyError(conn, remote, err)
		return
	}

	s.queue.Enqueue(ingest.Entry{Device: msg.DeviceName, Event: msg.Event()})

	s.logger.Info("event accepted",
		"remote", remote,
		"device", msg.DeviceName,
		"pin", msg.Pin,
		"state", msg.State,
	)

	s.reply(conn, remote, replyOK)
}

// replyError maps a decode failure to its protocol reply. A connection
// closed without any payload gets no reply at all.
func (s *Server) replyError(conn net.Conn, remote string, err error) {
	switch {
	case errors.Is(err, event.ErrNoData):
		s.logger.Debug("connection closed without data", "remote", remote)
	case errors.Is(err, event.ErrInvalidFormat):
		s.logger.Warn("rejecting malformed payload", "remote", remote, "error", err)
		s.reply(conn, remote, replyInvalidJSON)
	case errors.Is(err, event.ErrBadShape):
		s.logger.Warn("rejecting mistyped payload", "remote", remote, "error", err)
		s.reply(conn, remote, replyInternalError)
	default:
		s.logger.Error("reading event failed", "remote", remote, "error", err)
		s.reply(conn, remote, replyInternalError)
	}
}

// reply writes one reply line. Write failures are logged only; the event,
// if any, is already queued and the client will retry on its own schedule.
func (s *Server) reply(conn net.Conn, remote, text string) {
	if err := conn.SetWriteDeadline(time.Now().Add(replyTimeout)); err != nil {
		s.logger.Debug("setting write deadline failed", "remote", remote, "error", err)
		return
	}
	if _, err := conn.Write([]byte(text)); err != nil {
		s.logger.Debug("writing reply failed", "remote", remote, "error", err)
	}
}

// idleReader applies a rolling read deadline: each Read gets the full
// timeout, so a slowly-trickling client stays alive while a silent one is
// cut off.
type idleReader struct {
	conn    net.Conn
	timeout time.Duration
}

func (r *idleReader) Read(p []byte) (int, error) {
	if err := r.conn.SetReadDeadline(time.Now().Add(r.timeout)); err != nil {
		return 0, err
	}
	return r.conn.Read(p)
}
