//go:build linux

package reactor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultMaxEvents is the number of readiness events collected per Wait.
const DefaultMaxEvents = 64

// Reactor multiplexes readiness notifications for many descriptors.
type Reactor struct {
	epfd   int
	events []unix.EpollEvent
}

// New creates a reactor backed by a fresh epoll instance.
// maxEvents bounds how many events a single Wait call can return.
func New(maxEvents int) (*Reactor, error) {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("reactor: epoll_create1: %w", err)
	}
	return &Reactor{
		epfd:   epfd,
		events: make([]unix.EpollEvent, maxEvents),
	}, nil
}

// Register starts monitoring fd for the given interest.
func (r *Reactor) Register(fd int, interest Interest) error {
	ev := unix.EpollEvent{Events: epollMask(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("reactor: register fd %d: %w", fd, err)
	}
	return nil
}

// Modify replaces the interest set of an already registered fd.
func (r *Reactor) Modify(fd int, interest Interest) error {
	ev := unix.EpollEvent{Events: epollMask(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("reactor: modify fd %d: %w", fd, err)
	}
	return nil
}

// Unregister stops monitoring fd. Unregistering a descriptor that is not
// registered, or that was already closed, is not an error.
func (r *Reactor) Unregister(fd int) error {
	err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == nil || errors.Is(err, unix.ENOENT) || errors.Is(err, unix.EBADF) {
		return nil
	}
	return fmt.Errorf("reactor: unregister fd %d: %w", fd, err)
}

// Wait blocks until at least one registered descriptor is ready or the
// timeout elapses, and appends the ready events to dst[:0].
//
// A negative timeout blocks indefinitely and a zero timeout polls.
// An interrupted wait returns an empty slice and no error.
func (r *Reactor) Wait(timeout time.Duration, dst []Event) ([]Event, error) {
	dst = dst[:0]
	n, err := unix.EpollWait(r.epfd, r.events, timeoutMillis(timeout))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return dst, nil
		}
		return dst, fmt.Errorf("reactor: epoll_wait: %w", err)
	}
	for i := 0; i < n; i++ {
		ev := r.events[i]
		dst = append(dst, Event{
			Fd:       int(ev.Fd),
			Readable: ev.Events&(unix.EPOLLIN|unix.EPOLLPRI) != 0,
			Writable: ev.Events&unix.EPOLLOUT != 0,
			Hangup:   ev.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
			Err:      ev.Events&unix.EPOLLERR != 0,
		})
	}
	return dst, nil
}

// Close releases the epoll instance. Registered descriptors are not closed.
func (r *Reactor) Close() error {
	if r.epfd < 0 {
		return nil
	}
	err := unix.Close(r.epfd)
	r.epfd = -1
	return err
}

func epollMask(interest Interest) uint32 {
	var mask uint32
	if interest&Readable != 0 {
		mask |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if interest&Writable != 0 {
		mask |= unix.EPOLLOUT
	}
	return mask
}

func timeoutMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	if d == 0 {
		return 0
	}
	// Round up so a sub-millisecond timeout does not turn into a busy poll.
	ms := (d + time.Millisecond - 1) / time.Millisecond
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}
