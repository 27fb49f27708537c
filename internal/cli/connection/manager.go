package connection

import (
	"errors"
	"time"

	"github.com/tidwall/resp"
)

// ErrNotConnected is returned when no connection is open.
var ErrNotConnected = errors.New("not connected")

// Manager tracks the current server connection.
type Manager struct {
	timeout time.Duration
	current *Client
}

// NewManager creates a new connection manager.
func NewManager(timeout time.Duration) *Manager {
	return &Manager{timeout: timeout}
}

// Connect dials addr and makes it the current connection, closing any
// previous one. The server must answer PING.
func (m *Manager) Connect(addr string) error {
	c, err := Dial(addr, m.timeout)
	if err != nil {
		return err
	}
	if _, err := c.Do("PING"); err != nil {
		c.Close()
		return err
	}

	m.Disconnect()
	m.current = c
	return nil
}

// Disconnect closes the current connection.
func (m *Manager) Disconnect() {
	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
}

// Current returns the current connection.
func (m *Manager) Current() *Client {
	return m.current
}

// IsConnected returns true if connected to a server.
func (m *Manager) IsConnected() bool {
	return m.current != nil
}

// Do runs a command on the current connection.
func (m *Manager) Do(args ...string) (resp.Value, error) {
	if m.current == nil {
		return resp.Value{}, ErrNotConnected
	}
	return m.current.Do(args...)
}
