package command

import (
	"bufio"
	"bytes"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tidwall/resp"
)

// fakeServer records every command it receives and answers with a canned
// reply keyed by the upper-case command name.
type fakeServer struct {
	ln      net.Listener
	replies map[string]string

	mu       sync.Mutex
	received [][]string
}

func newFakeServer(t *testing.T, replies map[string]string) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeServer{ln: ln, replies: replies}
	t.Cleanup(func() { ln.Close() })
	go s.serve()
	return s
}

func (s *fakeServer) addr() string {
	return s.ln.Addr().String()
}

func (s *fakeServer) commands() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.received...)
}

func (s *fakeServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeServer) handle(conn net.Conn) {
	defer conn.Close()
	rd := resp.NewReader(conn)
	w := bufio.NewWriter(conn)
	for {
		v, _, err := rd.ReadValue()
		if err != nil {
			return
		}
		var args []string
		for _, a := range v.Array() {
			args = append(args, a.String())
		}
		if len(args) == 0 {
			continue
		}
		s.mu.Lock()
		s.received = append(s.received, args)
		s.mu.Unlock()

		reply, ok := s.replies[strings.ToUpper(args[0])]
		if !ok {
			reply = "+OK\r\n"
		}
		w.WriteString(reply)
		w.Flush()
	}
}

// runApp runs the CLI with args against addr and returns its output.
func runApp(t *testing.T, addr, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(input)
	app.Writer = &out
	app.ErrWriter = &out

	full := []string{
		"reactorkv-cli",
		"--config", filepath.Join(t.TempDir(), "cli.yaml"),
		"--addr", addr,
	}
	full = append(full, args...)
	err := app.Run(full)
	return out.String(), err
}
