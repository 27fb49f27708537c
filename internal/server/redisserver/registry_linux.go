//go:build linux

package redisserver

import (
	"fmt"
	"net"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/yndnr/reactorkv/internal/server/reactor"
	"github.com/yndnr/reactorkv/internal/telemetry/logger"
)

// ConnState is the lifecycle stage of a client connection.
type ConnState uint8

const (
	// StateConnected is the initial state: commands are read and executed.
	StateConnected ConnState = iota
	// StateClosingAfterWrite stops command processing; the connection is
	// closed once the pending reply has been written.
	StateClosingAfterWrite
	// StateClosed is terminal. The descriptor is closed and no longer
	// registered.
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateClosingAfterWrite:
		return "closing-after-write"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("ConnState(%d)", uint8(s))
	}
}

// Conn is one accepted client socket and its decoding state.
type Conn struct {
	fd      int
	id      ulid.ULID
	remote  net.Addr
	dec     *Decoder
	limiter *rate.Limiter
	log     logger.Logger

	state       ConnState
	closeReason string
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() ulid.ULID { return c.id }

// Fd returns the socket descriptor.
func (c *Conn) Fd() int { return c.fd }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.remote }

// State returns the lifecycle state.
func (c *Conn) State() ConnState { return c.state }

// closeAfterWrite marks the connection for closing once the current
// reply has been written. The first reason wins.
func (c *Conn) closeAfterWrite(reason string) {
	if c.state != StateConnected {
		return
	}
	c.state = StateClosingAfterWrite
	c.closeReason = reason
}

// Registry owns every live client connection. It is the only component
// that closes client descriptors or removes them from the reactor.
//
// Connections are keyed by descriptor. An entry is removed before its
// descriptor is closed, so a number reused by a later accept never finds
// a stale entry.
type Registry struct {
	reactor *reactor.Reactor
	conns   map[int]*Conn
	onClose func(c *Conn, reason string)
}

// NewRegistry creates an empty registry that registers connections with r.
func NewRegistry(r *reactor.Reactor) *Registry {
	return &Registry{
		reactor: r,
		conns:   make(map[int]*Conn),
	}
}

// OnClose sets a callback run after a connection has been closed.
func (r *Registry) OnClose(fn func(c *Conn, reason string)) {
	r.onClose = fn
}

// Add registers c for read readiness and takes ownership of its
// descriptor. If registration fails the descriptor is closed and the
// error returned. A descriptor that is already live is rejected and left
// untouched.
func (r *Registry) Add(c *Conn) error {
	if _, exists := r.conns[c.fd]; exists {
		return fmt.Errorf("registry: fd %d already registered", c.fd)
	}
	if err := r.reactor.Register(c.fd, reactor.Readable); err != nil {
		unix.Close(c.fd)
		c.state = StateClosed
		return err
	}
	c.state = StateConnected
	r.conns[c.fd] = c
	return nil
}

// Get returns the live connection for fd.
func (r *Registry) Get(fd int) (*Conn, bool) {
	c, ok := r.conns[fd]
	return c, ok
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	return len(r.conns)
}

// Close unregisters and closes c. Closing an already closed connection
// is a no-op.
func (r *Registry) Close(c *Conn, reason string) {
	if c.state == StateClosed {
		return
	}
	if cur, ok := r.conns[c.fd]; ok && cur == c {
		delete(r.conns, c.fd)
	}
	_ = r.reactor.Unregister(c.fd)
	_ = unix.Close(c.fd)
	c.state = StateClosed
	c.closeReason = reason
	c.dec.Reset()

	if r.onClose != nil {
		r.onClose(c, reason)
	}
}

// CloseAll closes every live connection.
func (r *Registry) CloseAll(reason string) {
	for _, c := range r.conns {
		r.Close(c, reason)
	}
}
