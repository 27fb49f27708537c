package connection

import (
	"bufio"
	"net"
	"strings"
	"testing"

	"github.com/tidwall/resp"
)

// fakeServer answers each RESP command with a canned reply keyed by the
// upper-case command name.
type fakeServer struct {
	ln      net.Listener
	replies map[string]string
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
		args := v.Array()
		if len(args) == 0 {
			continue
		}
		reply, ok := s.replies[strings.ToUpper(args[0].String())]
		if !ok {
			reply = "-ERR unknown command\r\n"
		}
		w.WriteString(reply)
		w.Flush()
	}
}
