//go:build linux

package reactor

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Waker interrupts a blocked Wait from another goroutine.
type Waker struct {
	fd int
}

// NewWaker creates a non-blocking eventfd. Register Fd with Readable
// interest to have Wake reported as a readable event.
func NewWaker() (*Waker, error) {
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("reactor: eventfd: %w", err)
	}
	return &Waker{fd: fd}, nil
}

// Fd returns the eventfd descriptor.
func (w *Waker) Fd() int {
	return w.fd
}

// Wake makes the eventfd readable. Safe to call from any goroutine.
func (w *Waker) Wake() error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	for {
		_, err := unix.Write(w.fd, buf[:])
		switch {
		case err == nil:
			return nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			// Counter is saturated, the fd is readable already.
			return nil
		default:
			return fmt.Errorf("reactor: wake: %w", err)
		}
	}
}

// Drain resets the eventfd counter so it stops being reported readable.
func (w *Waker) Drain() {
	var buf [8]byte
	for {
		_, err := unix.Read(w.fd, buf[:])
		if err == nil || !errors.Is(err, unix.EINTR) {
			return
		}
	}
}

// Close closes the eventfd.
func (w *Waker) Close() error {
	if w.fd < 0 {
		return nil
	}
	err := unix.Close(w.fd)
	w.fd = -1
	return err
}
