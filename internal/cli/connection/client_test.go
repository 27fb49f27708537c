package connection

import (
	"errors"
	"testing"
	"time"

	"github.com/tidwall/resp"
)

func TestClient_Do(t *testing.T) {
	srv := newFakeServer(t, map[string]string{
		"PING": "+PONG\r\n",
		"GET":  "$5\r\nhello\r\n",
		"DEL":  ":1\r\n",
		"NOPE": "$-1\r\n",
		"BAD":  "-ERR wrong number of arguments for 'bad' command\r\n",
	})

	c, err := Dial(srv.addr(), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	if c.Addr() != srv.addr() {
		t.Errorf("Addr() = %q, want %q", c.Addr(), srv.addr())
	}

	tests := []struct {
		args     []string
		wantType resp.Type
		want     string
	}{
		{[]string{"PING"}, resp.SimpleString, "PONG"},
		{[]string{"GET", "k"}, resp.BulkString, "hello"},
		{[]string{"DEL", "k"}, resp.Integer, "1"},
		{[]string{"BAD"}, resp.Error, "ERR wrong number of arguments for 'bad' command"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			v, err := c.Do(tt.args...)
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if v.Type() != tt.wantType {
				t.Errorf("type = %s, want %s", v.Type(), tt.wantType)
			}
			if v.String() != tt.want {
				t.Errorf("value = %q, want %q", v.String(), tt.want)
			}
		})
	}

	v, err := c.Do("NOPE")
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !v.IsNull() {
		t.Errorf("NOPE reply should be null, got %q", v.String())
	}
}

func TestClient_EmptyCommand(t *testing.T) {
	srv := newFakeServer(t, nil)
	c, err := Dial(srv.addr(), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	if _, err := c.Do(); err == nil {
		t.Error("Do() with no args should fail")
	}
}

func TestClient_Closed(t *testing.T) {
	srv := newFakeServer(t, map[string]string{"PING": "+PONG\r\n"})
	c, err := Dial(srv.addr(), time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := c.Do("PING"); !errors.Is(err, ErrClosed) {
		t.Errorf("Do() after Close = %v, want ErrClosed", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	// A server that never replies.
	srv := newFakeServer(t, map[string]string{"PING": ""})
	c, err := Dial(srv.addr(), 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	start := time.Now()
	if _, err := c.Do("PING"); err == nil {
		t.Fatal("Do() should time out")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestDial_Refused(t *testing.T) {
	srv := newFakeServer(t, nil)
	addr := srv.addr()
	srv.ln.Close()

	if _, err := Dial(addr, time.Second); err == nil {
		t.Error("Dial() to a closed port should fail")
	}
}
