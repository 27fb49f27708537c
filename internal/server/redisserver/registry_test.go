//go:build linux

package redisserver

import (
	"net"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/yndnr/reactorkv/internal/server/reactor"
	"github.com/yndnr/reactorkv/internal/telemetry/logger"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := reactor.New(8)
	if err != nil {
		t.Fatalf("reactor.New() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return NewRegistry(r)
}

// newTestConn returns a Conn over one end of a socketpair and the peer fd.
func newTestConn(t *testing.T) (*Conn, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })
	return &Conn{
		fd:     fds[0],
		remote: &net.TCPAddr{},
		dec:    NewDecoder(Limits{}),
		log:    logger.Discard(),
	}, fds[1]
}

func TestRegistry_AddGetClose(t *testing.T) {
	reg := newTestRegistry(t)
	c, peer := newTestConn(t)

	var closed []string
	reg.OnClose(func(_ *Conn, reason string) { closed = append(closed, reason) })

	if err := reg.Add(c); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if c.State() != StateConnected {
		t.Errorf("State() = %v, want connected", c.State())
	}
	if got, ok := reg.Get(c.Fd()); !ok || got != c {
		t.Fatal("Get() did not return the added connection")
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}

	reg.Close(c, "quit")
	reg.Close(c, "again")

	if c.State() != StateClosed {
		t.Errorf("State() = %v, want closed", c.State())
	}
	if _, ok := reg.Get(c.Fd()); ok {
		t.Error("Get() found a closed connection")
	}
	if len(closed) != 1 || closed[0] != "quit" {
		t.Errorf("close callbacks = %v, want [quit]", closed)
	}

	// The peer sees end of stream once our side is closed.
	buf := make([]byte, 1)
	n, err := unix.Read(peer, buf)
	if err != nil || n != 0 {
		t.Errorf("peer Read() = %d, %v; want EOF", n, err)
	}
}

func TestRegistry_AddDuplicateFd(t *testing.T) {
	reg := newTestRegistry(t)
	c, _ := newTestConn(t)
	if err := reg.Add(c); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	defer reg.Close(c, "test")

	other := &Conn{fd: c.fd, dec: NewDecoder(Limits{}), log: logger.Discard()}
	if err := reg.Add(other); err == nil {
		t.Error("Add() with a live fd should fail")
	}

	// The live connection is unaffected.
	if got, ok := reg.Get(c.fd); !ok || got != c {
		t.Error("live connection replaced by duplicate")
	}
	if _, err := unix.Write(c.fd, []byte("x")); err != nil {
		t.Errorf("live fd unusable after rejected Add: %v", err)
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	reg := newTestRegistry(t)

	for i := 0; i < 4; i++ {
		c, _ := newTestConn(t)
		if err := reg.Add(c); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	count := 0
	reg.OnClose(func(*Conn, string) { count++ })
	reg.CloseAll("shutdown")

	if reg.Len() != 0 {
		t.Errorf("Len() after CloseAll = %d, want 0", reg.Len())
	}
	if count != 4 {
		t.Errorf("close callbacks = %d, want 4", count)
	}
}

func TestConn_CloseAfterWrite(t *testing.T) {
	c := &Conn{}
	c.closeAfterWrite("protocol_error")
	c.closeAfterWrite("quit")

	if c.State() != StateClosingAfterWrite {
		t.Errorf("State() = %v, want closing-after-write", c.State())
	}
	if c.closeReason != "protocol_error" {
		t.Errorf("closeReason = %q, want first reason", c.closeReason)
	}
}

func TestConnState_String(t *testing.T) {
	tests := map[ConnState]string{
		StateConnected:         "connected",
		StateClosingAfterWrite: "closing-after-write",
		StateClosed:            "closed",
		ConnState(9):           "ConnState(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
