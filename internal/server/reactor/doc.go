// Package reactor provides a level-triggered readiness reactor for reactorkv.
//
// A Reactor wraps one Linux epoll instance. Callers register file
// descriptors with a read and/or write interest and then block in Wait
// until at least one of them is ready or the timeout elapses. A descriptor
// with unread data is reported on every Wait call until it is drained.
//
// The Waker is an eventfd that can be registered alongside sockets so
// another goroutine can interrupt a blocked Wait (used for shutdown).
//
// A Reactor is not safe for concurrent use; it is owned by the single
// goroutine running the event loop. Waker.Wake is the exception and may be
// called from any goroutine.
package reactor
