package output

import (
	"fmt"
	"io"
	"strings"
)

// Format represents the output format.
type Format string

const (
	FormatRaw  Format = "raw"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formatter formats data for output. Formatters accept a resp.Value, a
// Reply, or for JSON and YAML any encodable value.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatRaw, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatRaw, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want raw, json or yaml)", s)
	}
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &RawFormatter{}
	}
}
