//go:build linux

package redisserver

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Listener is a non-blocking TCP listening socket driven by the event loop.
type Listener struct {
	fd      int
	addr    *net.TCPAddr
	accept4 func(fd, flags int) (int, unix.Sockaddr, error)
}

// Listen creates a non-blocking, close-on-exec TCP socket with
// SO_REUSEADDR, binds it to addr and starts listening. A port of 0 picks
// a free port; Addr reports the bound address.
func Listen(addr string, backlog int) (*Listener, error) {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}

	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", addr, err)
	}
	family, sa, err := toSockaddr(tcpAddr)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("setsockopt SO_REUSEADDR", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", tcpAddr, os.NewSyscallError("bind", err))
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("listen", err)
	}

	bound, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("getsockname", err)
	}

	return &Listener{fd: fd, addr: fromSockaddr(bound), accept4: unix.Accept4}, nil
}

// Fd returns the listening socket descriptor.
func (l *Listener) Fd() int {
	return l.fd
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.addr
}

// AcceptAll accepts pending connections until the backlog is empty and
// passes each one to handle, which takes ownership of the descriptor.
// Accepted sockets are non-blocking with TCP_NODELAY set. It returns how
// many connections were handed over; an error other than EAGAIN, EINTR
// or ECONNABORTED ends the drain early.
func (l *Listener) AcceptAll(handle func(fd int, remote net.Addr)) (int, error) {
	accepted := 0
	for {
		nfd, sa, err := l.accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			switch {
			case errors.Is(err, unix.EAGAIN):
				return accepted, nil
			case errors.Is(err, unix.EINTR), errors.Is(err, unix.ECONNABORTED):
				continue
			default:
				return accepted, os.NewSyscallError("accept4", err)
			}
		}

		if err := unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
			unix.Close(nfd)
			continue
		}

		handle(nfd, fromSockaddr(sa))
		accepted++
	}
}

// Close closes the listening socket.
func (l *Listener) Close() error {
	if l.fd < 0 {
		return nil
	}
	err := unix.Close(l.fd)
	l.fd = -1
	if err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}

func toSockaddr(addr *net.TCPAddr) (int, unix.Sockaddr, error) {
	if addr.IP == nil {
		return unix.AF_INET, &unix.SockaddrInet4{Port: addr.Port}, nil
	}
	if ip4 := addr.IP.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa, nil
	}
	if ip6 := addr.IP.To16(); ip6 != nil {
		sa := &unix.SockaddrInet6{Port: addr.Port}
		copy(sa.Addr[:], ip6)
		return unix.AF_INET6, sa, nil
	}
	return 0, nil, fmt.Errorf("unsupported address %s", addr)
}

func fromSockaddr(sa unix.Sockaddr) *net.TCPAddr {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		ip := make(net.IP, net.IPv4len)
		copy(ip, sa.Addr[:])
		return &net.TCPAddr{IP: ip, Port: sa.Port}
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, sa.Addr[:])
		return &net.TCPAddr{IP: ip, Port: sa.Port}
	default:
		return &net.TCPAddr{}
	}
}
