package redisserver

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/reactorkv/internal/storage/memory"
)

// Error replies shared by several commands.
const (
	errSyntax        = "ERR syntax error"
	errNotInteger    = "ERR value is not an integer or out of range"
	errInvalidExpire = "ERR invalid expire time in 'set' command"
)

// maxUnknownArgLen bounds how much of each argument is echoed back in an
// unknown command error.
const maxUnknownArgLen = 128

// CommandFunc executes one command and appends exactly one reply to out.
// args[0] is the command name as sent by the client.
type CommandFunc func(store *memory.Store, args [][]byte, out []byte) []byte

// Command describes an entry in the dispatch table.
type Command struct {
	// Name is the upper-case command name.
	Name string
	// Arity counts the name itself. A positive value is the exact number
	// of arguments; a negative value -N means at least N.
	Arity int
	// Handler runs the command.
	Handler CommandFunc
	// CloseAfter asks the server to close the connection once the reply
	// has been written.
	CloseAfter bool
}

// Dispatcher maps command names to handlers and runs them against a store.
//
// Dispatch has no state of its own besides the table: everything a
// command reads or writes lives in the store it is given. Like the store,
// it is used from the event loop goroutine only.
type Dispatcher struct {
	store    *memory.Store
	commands map[string]*Command
	observe  func(name string)
}

// NewDispatcher creates a dispatcher with the built-in command set.
func NewDispatcher(store *memory.Store) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		commands: make(map[string]*Command),
	}

	d.Register(Command{Name: "PING", Arity: -1, Handler: handlePing})
	d.Register(Command{Name: "ECHO", Arity: 2, Handler: handleEcho})
	d.Register(Command{Name: "SET", Arity: -3, Handler: handleSet})
	d.Register(Command{Name: "GET", Arity: 2, Handler: handleGet})
	d.Register(Command{Name: "QUIT", Arity: -1, Handler: handleQuit, CloseAfter: true})
	d.Register(Command{Name: "COMMAND", Arity: -1, Handler: d.handleCommand})

	return d
}

// Register adds or replaces a command. The name is matched
// case-insensitively.
func (d *Dispatcher) Register(cmd Command) {
	cmd.Name = strings.ToUpper(cmd.Name)
	d.commands[cmd.Name] = &cmd
}

// OnDispatch registers fn to be called with the upper-case name of every
// dispatched command, or "unknown" for names not in the table.
func (d *Dispatcher) OnDispatch(fn func(name string)) {
	d.observe = fn
}

// Names returns the registered command names in sorted order.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the command registered under name, if any.
func (d *Dispatcher) Lookup(name []byte) (*Command, bool) {
	cmd, ok := d.commands[normalizeCommandName(name)]
	return cmd, ok
}

// Dispatch runs args against the store and appends the reply to out.
// It reports whether the connection should be closed after the reply is
// written. An empty args is ignored and produces no reply.
func (d *Dispatcher) Dispatch(out []byte, args [][]byte) ([]byte, bool) {
	if len(args) == 0 {
		return out, false
	}

	cmd, ok := d.Lookup(args[0])
	if !ok {
		d.count("unknown")
		return AppendError(out, unknownCommandError(args)), false
	}
	d.count(cmd.Name)

	if !arityOK(cmd.Arity, len(args)) {
		return AppendError(out, arityError(cmd.Name)), false
	}

	return cmd.Handler(d.store, args, out), cmd.CloseAfter
}

func (d *Dispatcher) count(name string) {
	if d.observe != nil {
		d.observe(name)
	}
}

func arityOK(arity, n int) bool {
	if arity >= 0 {
		return n == arity
	}
	return n >= -arity
}

func arityError(name string) string {
	return "ERR wrong number of arguments for '" + strings.ToLower(name) + "' command"
}

func unknownCommandError(args [][]byte) string {
	var sb strings.Builder
	sb.WriteString("ERR unknown command '")
	sb.Write(truncate(args[0]))
	sb.WriteString("', with args beginning with: ")
	for _, a := range args[1:] {
		sb.WriteByte('\'')
		sb.Write(truncate(a))
		sb.WriteString("' ")
	}
	return sb.String()
}

func truncate(b []byte) []byte {
	if len(b) > maxUnknownArgLen {
		return b[:maxUnknownArgLen]
	}
	return b
}

func handlePing(_ *memory.Store, args [][]byte, out []byte) []byte {
	switch len(args) {
	case 1:
		return AppendSimpleString(out, "PONG")
	case 2:
		return AppendBulk(out, args[1])
	default:
		return AppendError(out, arityError("PING"))
	}
}

func handleEcho(_ *memory.Store, args [][]byte, out []byte) []byte {
	return AppendBulk(out, args[1])
}

func handleQuit(_ *memory.Store, _ [][]byte, out []byte) []byte {
	return AppendSimpleString(out, "OK")
}

// handleSet implements SET key value [EX seconds | PX milliseconds] [KEEPTTL].
// Options are validated completely before the store is touched.
func handleSet(store *memory.Store, args [][]byte, out []byte) []byte {
	var (
		opts    memory.SetOptions
		ttlSeen bool
	)

	for i := 3; i < len(args); i++ {
		switch opt := normalizeCommandName(args[i]); opt {
		case "EX", "PX":
			if ttlSeen || i+1 >= len(args) {
				return AppendError(out, errSyntax)
			}
			n, err := strconv.ParseInt(string(args[i+1]), 10, 64)
			if err != nil {
				return AppendError(out, errNotInteger)
			}
			unit := time.Second
			if opt == "PX" {
				unit = time.Millisecond
			}
			if n <= 0 || n > math.MaxInt64/int64(unit) {
				return AppendError(out, errInvalidExpire)
			}
			opts.TTL = time.Duration(n) * unit
			ttlSeen = true
			i++
		case "KEEPTTL":
			if ttlSeen {
				return AppendError(out, errSyntax)
			}
			opts.KeepTTL = true
			ttlSeen = true
		default:
			return AppendError(out, errSyntax)
		}
	}

	if err := store.Set(string(args[1]), args[2], opts); err != nil {
		return AppendError(out, errInvalidExpire)
	}
	return AppendSimpleString(out, "OK")
}

func handleGet(store *memory.Store, args [][]byte, out []byte) []byte {
	value, lookup := store.Get(string(args[1]))
	if lookup != memory.Hit {
		return AppendNullBulk(out)
	}
	return AppendBulk(out, value)
}

// handleCommand answers the introspection probes sent by redis-cli on
// connect. Only COMMAND COUNT carries information.
func (d *Dispatcher) handleCommand(_ *memory.Store, args [][]byte, out []byte) []byte {
	if len(args) >= 2 && normalizeCommandName(args[1]) == "COUNT" {
		return AppendInteger(out, int64(len(d.commands)))
	}
	return AppendArrayHeader(out, 0)
}
