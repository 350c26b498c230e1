package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/nerrad567/andon-core/internal/infrastructure/config"
	"github.com/nerrad567/andon-core/internal/ingest"
)

// defaultReadTimeout is how long a connection may sit idle mid-read before
// it is dropped. Clients send one small document immediately after
// connecting, so anything slower is a stalled or hostile peer.
const defaultReadTimeout = 5 * time.Second

// Logger is the logging interface the server needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Server accepts device connections and feeds decoded events into the
// persistence queue.
//
// The protocol is one event per connection: the device connects, sends a
// single JSON document, reads the one-line reply, and the server closes
// the connection. Concurrency is capped by the configured connection
// limit; when all slots are busy the listener simply stops accepting until
// one frees, so excess clients queue in the kernel backlog instead of
// being dropped.
type Server struct {
	cfg    config.ServerConfig
	queue  *ingest.Queue
	logger Logger

	// slots is the connection-limit semaphore. A slot is acquired before
	// Accept so the cap can never be overshot.
	slots chan struct{}

	// ReadTimeout overrides the per-read idle deadline; tests shrink it.
	ReadTimeout time.Duration

	now func() time.Time

	mu   sync.Mutex
	addr net.Addr
}

// New creates a Server enqueueing into queue.
//
// Parameters:
//   - cfg: Listener settings from the [server] config section
//   - queue: Destination for accepted events
//   - logger: Structured logger
//
// Returns:
//   - *Server: Server ready for ListenAndServe
func New(cfg config.ServerConfig, queue *ingest.Queue, logger Logger) *Server {
	return &Server{
		cfg:         cfg,
		queue:       queue,
		logger:      logger,
		slots:       make(chan struct{}, cfg.MaxConnections),
		ReadTimeout: defaultReadTimeout,
		now:         time.Now,
	}
}

// Addr returns the listener's bound address, or nil before ListenAndServe
// has bound it. Useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe accepts connections until ctx is cancelled.
//
// Each accepted connection is served on its own goroutine. On cancellation
// the listener closes immediately; in-flight connections finish their
// single exchange before ListenAndServe returns.
//
// Parameters:
//   - ctx: Cancelling this context stops the server
//
// Returns:
//   - error: If the listener cannot be created; nil on clean shutdown
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("starting listener on %s: %w", s.cfg.Addr(), err)
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.logger.Info("server listening",
		"addr", ln.Addr().String(),
		"max_connections", s.cfg.MaxConnections,
	)

	// Closing the listener is what unblocks Accept on cancellation.
	go func() {
		<-ctx.Done()
		ln.Close() //nolint:errcheck // Best effort on shutdown
	}()

	var wg sync.WaitGroup
	for {
		// Hold a free slot before accepting so the connection cap is a
		// hard limit rather than a target.
		select {
		case s.slots <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil
		}

		conn, err := ln.Accept()
		if err != nil {
			<-s.slots
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				wg.Wait()
				return nil
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-s.slots }()
			s.handleConn(conn)
		}()
	}
}
