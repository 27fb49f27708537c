package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RawFormatter prints replies the way redis-cli does on a terminal.
type RawFormatter struct{}

// Format writes data followed by a newline.
func (f *RawFormatter) Format(w io.Writer, data any) error {
	r, ok := toReply(data)
	if !ok {
		_, err := fmt.Fprintln(w, data)
		return err
	}
	var sb strings.Builder
	writeRaw(&sb, r, 0)
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeRaw(sb *strings.Builder, r Reply, indent int) {
	switch r.Type {
	case TypeString:
		fmt.Fprintf(sb, "%v\n", r.Value)
	case TypeError:
		fmt.Fprintf(sb, "(error) %v\n", r.Value)
	case TypeInteger:
		fmt.Fprintf(sb, "(integer) %v\n", r.Value)
	case TypeNil:
		sb.WriteString("(nil)\n")
	case TypeArray:
		if len(r.Elements) == 0 {
			sb.WriteString("(empty array)\n")
			return
		}
		width := len(strconv.Itoa(len(r.Elements)))
		for i, e := range r.Elements {
			if i > 0 {
				sb.WriteString(strings.Repeat(" ", indent))
			}
			fmt.Fprintf(sb, "%*d) ", width, i+1)
			writeRaw(sb, e, indent+width+2)
		}
	default:
		s, _ := r.Value.(string)
		sb.WriteString(strconv.Quote(s))
		sb.WriteByte('\n')
	}
}
