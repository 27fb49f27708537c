package connection

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/tidwall/resp"
)

// DefaultTimeout applies to dialing and to each request.
const DefaultTimeout = 5 * time.Second

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("connection closed")

// Client sends commands to a reactorkv server.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	rc      *resp.Conn
}

// Dial connects to addr. A zero timeout uses DefaultTimeout.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{
		addr:    addr,
		timeout: timeout,
		conn:    conn,
		rc:      resp.NewConn(conn),
	}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends one command as a RESP array and reads its reply. Server error
// replies are returned as values, not errors.
func (c *Client) Do(args ...string) (resp.Value, error) {
	if c.rc == nil {
		return resp.Value{}, ErrClosed
	}
	if len(args) == 0 {
		return resp.Value{}, errors.New("empty command")
	}

	vals := make([]resp.Value, len(args))
	for i, a := range args {
		vals[i] = resp.StringValue(a)
	}

	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return resp.Value{}, err
	}
	if err := c.rc.WriteArray(vals); err != nil {
		return resp.Value{}, fmt.Errorf("write: %w", err)
	}
	v, _, err := c.rc.ReadValue()
	if err != nil {
		return resp.Value{}, fmt.Errorf("read: %w", err)
	}
	return v, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.rc = nil
	return err
}
