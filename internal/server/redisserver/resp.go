package redisserver

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Protocol limits. Requests beyond them are rejected as protocol errors
// so one client cannot make the server buffer without bound.
const (
	// DefaultMaxArrayLen limits the number of elements in a request array.
	DefaultMaxArrayLen = 1024 * 1024

	// DefaultMaxBulkLen limits the size of a single bulk string (512MB).
	DefaultMaxBulkLen = 512 * 1024 * 1024

	// DefaultMaxInlineLen limits an unterminated inline or header line (64KB).
	DefaultMaxInlineLen = 64 * 1024
)

// compactThreshold is how many consumed bytes may sit at the front of the
// decoder buffer before Feed shifts the unread tail down.
const compactThreshold = 4096

var (
	// ErrIncomplete is returned by Decoder.Next when the buffered bytes do
	// not hold a complete command yet.
	ErrIncomplete = errors.New("resp: incomplete command")

	crlf = []byte("\r\n")
)

// ProtocolError is a fatal violation of the request grammar. The
// connection that produced it cannot be resynchronized.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string {
	return "Protocol error: " + e.Detail
}

func protocolErrorf(format string, args ...any) *ProtocolError {
	return &ProtocolError{Detail: fmt.Sprintf(format, args...)}
}

// Limits bounds what a Decoder accepts.
type Limits struct {
	MaxArrayLen  int
	MaxBulkLen   int
	MaxInlineLen int
}

// DefaultLimits returns the default protocol limits.
func DefaultLimits() Limits {
	return Limits{
		MaxArrayLen:  DefaultMaxArrayLen,
		MaxBulkLen:   DefaultMaxBulkLen,
		MaxInlineLen: DefaultMaxInlineLen,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxArrayLen <= 0 {
		l.MaxArrayLen = d.MaxArrayLen
	}
	if l.MaxBulkLen <= 0 {
		l.MaxBulkLen = d.MaxBulkLen
	}
	if l.MaxInlineLen <= 0 {
		l.MaxInlineLen = d.MaxInlineLen
	}
	return l
}

// phase is where the decoder stands inside the request grammar.
type phase uint8

const (
	// phaseIdle expects the start of a new command (array or inline).
	phaseIdle phase = iota
	// phaseBulkHeader expects a "$<len>\r\n" line inside an array.
	phaseBulkHeader
	// phaseBulkBody expects <len> payload bytes followed by CRLF.
	phaseBulkBody
)

// Decoder incrementally turns a connection's byte stream into commands.
//
// Bytes are appended with Feed and commands are taken out with Next.
// Progress inside a partially received array survives between calls, so
// the caller never replays input. A Decoder is owned by one connection
// and is not safe for concurrent use.
type Decoder struct {
	buf []byte
	off int

	phase       phase
	pendingArgs int
	bulkLen     int
	args        [][]byte

	limits Limits
	err    error
}

// NewDecoder creates a decoder enforcing the given limits. Zero fields
// fall back to the defaults.
func NewDecoder(limits Limits) *Decoder {
	return &Decoder{
		bulkLen: -1,
		limits:  limits.withDefaults(),
	}
}

// Feed appends bytes read from the connection. It does not parse.
func (d *Decoder) Feed(p []byte) {
	if d.off > 0 && (d.off == len(d.buf) || (d.off >= compactThreshold && d.off*2 >= len(d.buf))) {
		n := copy(d.buf, d.buf[d.off:])
		d.buf = d.buf[:n]
		d.off = 0
	}
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of fed bytes not yet attributed to a
// completed command.
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.off
}

// Reset discards all buffered bytes and parsing progress.
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
	d.off = 0
	d.phase = phaseIdle
	d.pendingArgs = 0
	d.bulkLen = -1
	d.args = nil
	d.err = nil
}

// Next decodes at most one command from the buffered bytes.
//
// It returns the command arguments, ErrIncomplete when more bytes are
// needed, or a *ProtocolError. A zero-length command (null array) carries
// no work and must be ignored by the caller. Once a protocol error is
// returned every later call returns it again. Call Next until it returns
// an error: one Feed may complete several commands.
//
// Returned argument slices are owned by the caller.
func (d *Decoder) Next() ([][]byte, error) {
	if d.err != nil {
		return nil, d.err
	}

	for {
		switch d.phase {
		case phaseIdle:
			if d.off == len(d.buf) {
				d.buf = d.buf[:0]
				d.off = 0
				return nil, ErrIncomplete
			}

			if d.buf[d.off] != '*' {
				args, ok, err := d.readInline()
				if err != nil {
					return nil, d.fail(err)
				}
				if !ok {
					return nil, ErrIncomplete
				}
				if len(args) == 0 {
					continue
				}
				return args, nil
			}

			n, ok, err := d.readHeader("multibulk")
			if err != nil {
				return nil, d.fail(err)
			}
			if !ok {
				return nil, ErrIncomplete
			}
			switch {
			case n == -1:
				return [][]byte{}, nil
			case n < -1 || n > int64(d.limits.MaxArrayLen):
				return nil, d.fail(protocolErrorf("invalid multibulk length"))
			case n == 0:
				continue
			}

			d.pendingArgs = int(n)
			d.bulkLen = -1
			d.args = make([][]byte, 0, min(d.pendingArgs, 64))
			d.phase = phaseBulkHeader

		case phaseBulkHeader:
			if d.off == len(d.buf) {
				return nil, ErrIncomplete
			}
			if c := d.buf[d.off]; c != '$' {
				return nil, d.fail(protocolErrorf("expected '$', got '%c'", c))
			}

			n, ok, err := d.readHeader("bulk")
			if err != nil {
				return nil, d.fail(err)
			}
			if !ok {
				return nil, ErrIncomplete
			}
			if n < -1 || n > int64(d.limits.MaxBulkLen) {
				return nil, d.fail(protocolErrorf("invalid bulk length"))
			}

			if n == -1 {
				// A null element is passed on as an empty argument.
				if args, done := d.appendArg([]byte{}); done {
					return args, nil
				}
				continue
			}
			d.bulkLen = int(n)
			d.phase = phaseBulkBody

		case phaseBulkBody:
			if len(d.buf)-d.off < d.bulkLen+2 {
				return nil, ErrIncomplete
			}
			end := d.off + d.bulkLen
			if d.buf[end] != '\r' || d.buf[end+1] != '\n' {
				return nil, d.fail(protocolErrorf("invalid bulk string end CRLF"))
			}

			arg := make([]byte, d.bulkLen)
			copy(arg, d.buf[d.off:end])
			d.off = end + 2
			d.bulkLen = -1

			if args, done := d.appendArg(arg); done {
				return args, nil
			}
			d.phase = phaseBulkHeader
		}
	}
}

// appendArg adds one array element and reports whether the command is
// complete.
func (d *Decoder) appendArg(arg []byte) ([][]byte, bool) {
	d.args = append(d.args, arg)
	d.pendingArgs--
	if d.pendingArgs > 0 {
		return nil, false
	}
	args := d.args
	d.args = nil
	d.phase = phaseIdle
	return args, true
}

// readHeader parses a "*<n>\r\n" or "$<n>\r\n" line at the read offset.
// Only CRLF terminates a header; a bare LF leaves the line incomplete.
func (d *Decoder) readHeader(kind string) (int64, bool, error) {
	rest := d.buf[d.off:]
	i := bytes.Index(rest, crlf)
	if i < 0 || bytes.IndexByte(rest[:i], '\n') >= 0 {
		if len(rest) > d.limits.MaxInlineLen {
			return 0, false, protocolErrorf("too big %s count string", countKind(kind))
		}
		return 0, false, nil
	}

	digits := rest[1:i]
	if len(digits) > 0 && digits[0] == '+' {
		return 0, false, protocolErrorf("invalid %s length", kind)
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, false, protocolErrorf("invalid %s length", kind)
	}
	d.off += i + 2
	return n, true, nil
}

// readInline parses one whitespace-separated line terminated by LF or CRLF.
func (d *Decoder) readInline() ([][]byte, bool, error) {
	rest := d.buf[d.off:]
	i := bytes.IndexByte(rest, '\n')
	if i < 0 {
		if len(rest) > d.limits.MaxInlineLen {
			return nil, false, protocolErrorf("too big inline request")
		}
		return nil, false, nil
	}

	line := rest[:i]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	d.off += i + 1

	fields := bytes.FieldsFunc(line, isSpace)
	args := make([][]byte, len(fields))
	for j, f := range fields {
		args[j] = append([]byte(nil), f...)
	}
	return args, true, nil
}

func (d *Decoder) fail(err error) error {
	d.err = err
	return err
}

func countKind(kind string) string {
	if kind == "multibulk" {
		return "mbulk"
	}
	return kind
}

// isSpace matches the C locale isspace set.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// AppendSimpleString appends a "+<s>\r\n" status reply.
func AppendSimpleString(b []byte, s string) []byte {
	b = append(b, '+')
	b = append(b, s...)
	return append(b, '\r', '\n')
}

// AppendError appends a "-<msg>\r\n" error reply. CR and LF inside msg
// are replaced with spaces so the reply stays one line.
func AppendError(b []byte, msg string) []byte {
	b = append(b, '-')
	b = append(b, strings.NewReplacer("\r", " ", "\n", " ").Replace(msg)...)
	return append(b, '\r', '\n')
}

// AppendInteger appends a ":<n>\r\n" integer reply.
func AppendInteger(b []byte, n int64) []byte {
	b = append(b, ':')
	b = strconv.AppendInt(b, n, 10)
	return append(b, '\r', '\n')
}

// AppendNullBulk appends the "$-1\r\n" null bulk reply.
func AppendNullBulk(b []byte) []byte {
	return append(b, "$-1\r\n"...)
}

// AppendBulk appends a bulk string reply. A nil slice encodes as null bulk.
func AppendBulk(b []byte, p []byte) []byte {
	if p == nil {
		return AppendNullBulk(b)
	}
	b = append(b, '$')
	b = strconv.AppendInt(b, int64(len(p)), 10)
	b = append(b, '\r', '\n')
	b = append(b, p...)
	return append(b, '\r', '\n')
}

// AppendBulkString appends s as a bulk string reply.
func AppendBulkString(b []byte, s string) []byte {
	b = append(b, '$')
	b = strconv.AppendInt(b, int64(len(s)), 10)
	b = append(b, '\r', '\n')
	b = append(b, s...)
	return append(b, '\r', '\n')
}

// AppendArrayHeader appends a "*<n>\r\n" array header.
func AppendArrayHeader(b []byte, n int) []byte {
	b = append(b, '*')
	b = strconv.AppendInt(b, int64(n), 10)
	return append(b, '\r', '\n')
}

// EncodeCommand encodes args as a request array of bulk strings.
func EncodeCommand(args ...[]byte) []byte {
	b := AppendArrayHeader(nil, len(args))
	for _, a := range args {
		if a == nil {
			a = []byte{}
		}
		b = AppendBulk(b, a)
	}
	return b
}

func normalizeCommandName(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	// Uppercase ASCII without allocating for already uppercased tokens.
	if bytes.ContainsAny(b, "abcdefghijklmnopqrstuvwxyz") {
		return strings.ToUpper(string(b))
	}
	return string(b)
}
