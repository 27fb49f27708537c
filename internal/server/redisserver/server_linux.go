//go:build linux

package redisserver

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/yndnr/reactorkv/internal/server/reactor"
	"github.com/yndnr/reactorkv/internal/storage/memory"
	"github.com/yndnr/reactorkv/internal/telemetry/logger"
	"github.com/yndnr/reactorkv/internal/telemetry/metric"
)

// ErrServerClosed is returned by Listen and Serve after Shutdown.
var ErrServerClosed = errors.New("redisserver: server closed")

const (
	errRateLimited = "ERR rate limit exceeded"

	// maxRetainedReply caps the reply buffer kept between iterations.
	maxRetainedReply = 1 << 20

	// acceptBackoff is how long the listener stays out of the reactor
	// after an accept error such as EMFILE. The socket stays readable while
	// the backlog is non-empty, so polling it would spin the loop.
	acceptBackoff = 100 * time.Millisecond
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the metrics registry. A nil registry disables metrics.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// Server is a single-threaded Redis protocol server.
//
// One goroutine, the one running Serve, owns the reactor, the listener,
// every connection and the store. The only cross-goroutine entry points
// are Addr and Shutdown, which reach the loop through the waker.
type Server struct {
	cfg        Config
	store      *memory.Store
	dispatcher *Dispatcher
	log        logger.Logger
	metrics    *metric.Registry

	mu      sync.Mutex // guards waker and addr
	waker   *reactor.Waker
	addr    net.Addr
	reactor *reactor.Reactor
	ln      *Listener
	conns   *Registry

	closing atomic.Bool
	serving atomic.Bool
	done    chan struct{}

	entropy      io.Reader
	acceptResume time.Time // zero while accepting
	readBuf []byte
	events  []reactor.Event
	out     []byte
}

// New creates a Redis server that executes commands against store.
func New(cfg *Config, store *memory.Store, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:        cfg.withDefaults(),
		store:      store,
		dispatcher: NewDispatcher(store),
		log:        logger.Default(),
		done:       make(chan struct{}),
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.dispatcher.OnDispatch(s.metrics.RecordCommand)
	s.readBuf = make([]byte, s.cfg.ReadBufferSize)
	s.events = make([]reactor.Event, 0, s.cfg.MaxEvents)

	return s
}

// Dispatcher returns the command table, so callers can register commands
// before Serve is called.
func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Listen creates the reactor, the waker and the listening socket. Any
// failure here is fatal to startup.
func (s *Server) Listen() error {
	if s.closing.Load() {
		return ErrServerClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reactor != nil {
		return errors.New("redisserver: already listening")
	}

	r, err := reactor.New(s.cfg.MaxEvents)
	if err != nil {
		return fmt.Errorf("create reactor: %w", err)
	}
	w, err := reactor.NewWaker()
	if err != nil {
		r.Close()
		return fmt.Errorf("create waker: %w", err)
	}
	ln, err := Listen(s.cfg.Addr, s.cfg.Backlog)
	if err != nil {
		w.Close()
		r.Close()
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}

	if err := r.Register(ln.Fd(), reactor.Readable); err != nil {
		ln.Close()
		w.Close()
		r.Close()
		return fmt.Errorf("register listener: %w", err)
	}
	if err := r.Register(w.Fd(), reactor.Readable); err != nil {
		ln.Close()
		w.Close()
		r.Close()
		return fmt.Errorf("register waker: %w", err)
	}

	s.reactor = r
	s.waker = w
	s.ln = ln
	s.addr = ln.Addr()
	s.conns = NewRegistry(r)
	s.conns.OnClose(s.connClosed)

	s.log.Info("redis server listening",
		"address", s.addr.String(),
		"backlog", s.cfg.Backlog,
		"max_events", s.cfg.MaxEvents,
		"rate_limit", s.cfg.RateLimit,
	)
	return nil
}

// Addr returns the bound listen address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe calls Listen and then Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve runs the event loop on the calling goroutine until ctx is done or
// Shutdown is called. It returns nil on an orderly stop. All connections
// and the listener are closed before it returns; Shutdown releases the
// rest.
func (s *Server) Serve(ctx context.Context) error {
	if s.reactor == nil {
		return errors.New("redisserver: Serve called before Listen")
	}
	s.mu.Lock()
	switch {
	case s.closing.Load():
		s.mu.Unlock()
		return ErrServerClosed
	case s.serving.Load():
		s.mu.Unlock()
		return errors.New("redisserver: already serving")
	}
	s.serving.Store(true)
	s.mu.Unlock()
	defer close(s.done)

	stop := context.AfterFunc(ctx, s.wake)
	defer stop()

	for {
		if s.closing.Load() || ctx.Err() != nil {
			s.teardown()
			return nil
		}

		events, err := s.reactor.Wait(s.waitTimeout(), s.events)
		if err != nil {
			s.log.Error("event loop wait failed", "error", err)
			s.teardown()
			return err
		}
		s.metrics.IncLoopIterations()
		s.resumeAccept()

		for _, ev := range events {
			switch ev.Fd {
			case s.ln.Fd():
				s.acceptAll()
			case s.waker.Fd():
				s.waker.Drain()
			default:
				s.handleEvent(ev)
			}
		}
		s.metrics.SetKeys(s.store.Len())
	}
}

// Shutdown stops the loop, waits for it to close every connection and
// releases the reactor and the waker. If ctx ends first its error is
// returned and the loop finishes on its own.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing.Store(true)
	serving := s.serving.Load()
	if s.waker != nil {
		_ = s.waker.Wake()
	}
	s.mu.Unlock()

	if serving {
		select {
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	} else {
		s.teardown()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	if s.waker != nil {
		errs = append(errs, s.waker.Close())
		s.waker = nil
	}
	if s.reactor != nil {
		errs = append(errs, s.reactor.Close())
	}
	return errors.Join(errs...)
}

func (s *Server) wake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waker != nil {
		_ = s.waker.Wake()
	}
}

// teardown closes every connection and the listener. It runs on the loop
// goroutine, or from Shutdown when the loop never started.
func (s *Server) teardown() {
	if s.conns != nil {
		n := s.conns.Len()
		s.conns.CloseAll(metric.ReasonShutdown)
		if n > 0 {
			s.log.Info("closed client connections", "count", n)
		}
	}
	if s.ln != nil && s.ln.Fd() >= 0 {
		_ = s.reactor.Unregister(s.ln.Fd())
		if err := s.ln.Close(); err != nil {
			s.log.Warn("close listener failed", "error", err)
		}
	}
	s.log.Info("redis server stopped")
}

func (s *Server) acceptAll() {
	n, err := s.ln.AcceptAll(s.accept)
	if err == nil {
		return
	}
	s.log.Error("accept failed, pausing accepts",
		"accepted", n, "error", err, "pause", acceptBackoff)
	if err := s.reactor.Unregister(s.ln.Fd()); err != nil {
		s.log.Error("unregister listener failed", "error", err)
	}
	s.acceptResume = time.Now().Add(acceptBackoff)
}

// waitTimeout bounds the reactor wait while accepts are paused.
func (s *Server) waitTimeout() time.Duration {
	if s.acceptResume.IsZero() {
		return -1
	}
	return max(time.Until(s.acceptResume), 0)
}

// resumeAccept puts the listener back into the reactor once the pause
// has elapsed.
func (s *Server) resumeAccept() {
	if s.acceptResume.IsZero() || time.Now().Before(s.acceptResume) {
		return
	}
	if err := s.reactor.Register(s.ln.Fd(), reactor.Readable); err != nil {
		s.log.Error("re-register listener failed", "error", err)
		s.acceptResume = time.Now().Add(acceptBackoff)
		return
	}
	s.acceptResume = time.Time{}
	s.log.Info("accepting resumed")
}

func (s *Server) accept(fd int, remote net.Addr) {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy)
	c := &Conn{
		fd:     fd,
		id:     id,
		remote: remote,
		dec:    NewDecoder(s.cfg.Limits),
		log:    s.log.With("conn_id", id.String(), "remote", remote.String()),
	}
	if s.cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst)
	}

	if err := s.conns.Add(c); err != nil {
		s.log.Error("register connection failed", "remote", remote.String(), "error", err)
		return
	}
	s.metrics.ConnectionOpened()
	c.log.Debug("connection accepted", "active", s.conns.Len())
}

func (s *Server) connClosed(c *Conn, reason string) {
	s.metrics.ConnectionClosed(reason)
	c.log.Debug("connection closed", "reason", reason)
}

func (s *Server) handleEvent(ev reactor.Event) {
	c, ok := s.conns.Get(ev.Fd)
	if !ok {
		// Closed earlier in this batch.
		return
	}
	if ev.Readable {
		s.serviceRead(c)
		return
	}
	if ev.Hangup || ev.Err {
		s.conns.Close(c, metric.ReasonHangup)
	}
}

// serviceRead drains the socket into the decoder, executes every complete
// command and writes the replies in one attempt.
func (s *Server) serviceRead(c *Conn) {
	eof := false
read:
	for {
		n, err := unix.Read(c.fd, s.readBuf)
		switch {
		case err == nil && n == 0:
			eof = true
			break read
		case err == nil:
			c.dec.Feed(s.readBuf[:n])
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			break read
		default:
			c.log.Debug("read failed", "error", err)
			s.conns.Close(c, metric.ReasonReadError)
			return
		}
	}

	out := s.execute(c, s.out[:0])
	if len(out) > 0 {
		s.writeReply(c, out)
	}
	if cap(out) <= maxRetainedReply {
		s.out = out[:0]
	} else {
		s.out = nil
	}

	switch {
	case c.state == StateClosingAfterWrite:
		s.conns.Close(c, c.closeReason)
	case eof:
		s.conns.Close(c, metric.ReasonClientClosed)
	}
}

// execute runs every complete buffered command and appends the replies to
// out. It stops at the first protocol error or at a command that asks for
// the connection to close.
func (s *Server) execute(c *Conn, out []byte) []byte {
	for c.state == StateConnected {
		args, err := c.dec.Next()
		if errors.Is(err, ErrIncomplete) {
			break
		}
		if err != nil {
			var perr *ProtocolError
			if !errors.As(err, &perr) {
				perr = &ProtocolError{Detail: err.Error()}
			}
			out = AppendError(out, "ERR "+perr.Error())
			s.metrics.IncProtocolErrors()
			c.log.Warn("protocol error", "error", perr.Detail)
			c.closeAfterWrite(metric.ReasonProtocolError)
			break
		}
		if len(args) == 0 {
			continue
		}

		if c.limiter != nil && !c.limiter.Allow() {
			out = AppendError(out, errRateLimited)
			continue
		}

		if c.log.Enabled(slog.LevelDebug) {
			attrs := []any{"name", normalizeCommandName(args[0]), "args", len(args) - 1}
			if len(args) > 1 {
				attrs = append(attrs, "key", logger.Preview(args[1]))
			}
			c.log.Debug("command", attrs...)
		}

		var closeAfter bool
		out, closeAfter = s.dispatcher.Dispatch(out, args)
		if closeAfter {
			c.closeAfterWrite(metric.ReasonQuit)
		}
	}
	return out
}

// writeReply makes a single write attempt. Whatever the socket does not
// accept is dropped; there is no outbound queue.
func (s *Server) writeReply(c *Conn, p []byte) {
	var (
		n   int
		err error
	)
	for {
		n, err = unix.SendmsgN(c.fd, p, nil, nil, unix.MSG_NOSIGNAL)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}

	if err != nil && !errors.Is(err, unix.EAGAIN) {
		c.log.Debug("write failed", "error", err)
		s.metrics.AddReplyBytesDropped(len(p))
		s.conns.Close(c, metric.ReasonWriteError)
		return
	}
	if err != nil {
		n = 0
	}
	if dropped := len(p) - n; dropped > 0 {
		c.log.Warn("reply truncated", "written", n, "dropped", dropped)
		s.metrics.AddReplyBytesDropped(dropped)
	}
}
