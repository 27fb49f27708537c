package reactor

import "strings"

// Interest selects which readiness conditions a descriptor is monitored for.
type Interest uint8

const (
	// Readable reports when the descriptor has data to read or the peer
	// half-closed the connection.
	Readable Interest = 1 << iota
	// Writable reports when the descriptor can accept more output.
	Writable
)

// Event is a single readiness notification returned by Wait.
type Event struct {
	Fd       int
	Readable bool
	Writable bool
	// Hangup is set when the peer closed its side or the connection was
	// torn down.
	Hangup bool
	// Err is set when the kernel reports an error condition on the socket.
	Err bool
}

func (e Event) String() string {
	var flags []string
	if e.Readable {
		flags = append(flags, "read")
	}
	if e.Writable {
		flags = append(flags, "write")
	}
	if e.Hangup {
		flags = append(flags, "hup")
	}
	if e.Err {
		flags = append(flags, "err")
	}
	return strings.Join(flags, "|")
}
