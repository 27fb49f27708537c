package repl

import (
	"errors"
	"strings"
)

// ErrUnbalancedQuotes is returned by Split for an unterminated quote.
var ErrUnbalancedQuotes = errors.New("unbalanced quotes")

// Split breaks a line into arguments on whitespace. Double-quoted
// arguments may contain spaces and the escapes \" \\ \n \r \t; single
// quotes are literal except for \'.
func Split(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   byte
		escaped bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]

		if quote != 0 {
			if escaped {
				escaped = false
				switch {
				case quote == '\'' && ch != '\'':
					cur.WriteByte('\\')
					cur.WriteByte(ch)
				case ch == 'n':
					cur.WriteByte('\n')
				case ch == 'r':
					cur.WriteByte('\r')
				case ch == 't':
					cur.WriteByte('\t')
				default:
					cur.WriteByte(ch)
				}
				continue
			}
			switch ch {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			default:
				cur.WriteByte(ch)
			}
			continue
		}

		switch ch {
		case ' ', '\t', '\r', '\n':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		case '"', '\'':
			quote = ch
			inArg = true
		default:
			cur.WriteByte(ch)
			inArg = true
		}
	}

	if quote != 0 {
		return nil, ErrUnbalancedQuotes
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
