package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/tidwall/resp"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"raw", FormatRaw, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"", FormatRaw, false},
		{"table", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("expected JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("expected YAMLFormatter")
	}
	if _, ok := NewFormatter(FormatRaw).(*RawFormatter); !ok {
		t.Error("expected RawFormatter")
	}
	if _, ok := NewFormatter("unknown").(*RawFormatter); !ok {
		t.Error("unknown format should default to RawFormatter")
	}
}

func TestFromValue(t *testing.T) {
	tests := []struct {
		name string
		in   resp.Value
		want Reply
	}{
		{"simple", resp.SimpleStringValue("PONG"), Reply{Type: TypeString, Value: "PONG"}},
		{"error", resp.ErrorValue(errors.New("ERR boom")), Reply{Type: TypeError, Value: "ERR boom"}},
		{"integer", resp.IntegerValue(6), Reply{Type: TypeInteger, Value: 6}},
		{"bulk", resp.StringValue("v"), Reply{Type: TypeBulk, Value: "v"}},
		{"nil", resp.NullValue(), Reply{Type: TypeNil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromValue(tt.in)
			if got.Type != tt.want.Type || got.Value != tt.want.Value {
				t.Errorf("FromValue() = %+v, want %+v", got, tt.want)
			}
		})
	}

	arr := FromValue(resp.ArrayValue([]resp.Value{resp.StringValue("a"), resp.IntegerValue(2)}))
	if arr.Type != TypeArray || len(arr.Elements) != 2 {
		t.Fatalf("array = %+v", arr)
	}
	if arr.Elements[1].Type != TypeInteger {
		t.Errorf("element type = %q, want integer", arr.Elements[1].Type)
	}
}

func TestRawFormatter(t *testing.T) {
	tests := []struct {
		name string
		in   resp.Value
		want string
	}{
		{"simple", resp.SimpleStringValue("OK"), "OK\n"},
		{"error", resp.ErrorValue(errors.New("ERR unknown command 'FOO'")), "(error) ERR unknown command 'FOO'\n"},
		{"integer", resp.IntegerValue(6), "(integer) 6\n"},
		{"bulk", resp.StringValue("hello world"), "\"hello world\"\n"},
		{"bulk escapes", resp.StringValue("a\r\nb"), "\"a\\r\\nb\"\n"},
		{"nil", resp.NullValue(), "(nil)\n"},
		{"empty array", resp.ArrayValue(nil), "(empty array)\n"},
		{"array", resp.ArrayValue([]resp.Value{resp.StringValue("a"), resp.StringValue("b")}), "1) \"a\"\n2) \"b\"\n"},
		{"nested", resp.ArrayValue([]resp.Value{
			resp.StringValue("a"),
			resp.ArrayValue([]resp.Value{resp.StringValue("b"), resp.IntegerValue(3)}),
		}), "1) \"a\"\n2) 1) \"b\"\n   2) (integer) 3\n"},
	}

	f := &RawFormatter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := f.Format(&buf, tt.in); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Format() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRawFormatter_WideIndex(t *testing.T) {
	vals := make([]resp.Value, 10)
	for i := range vals {
		vals[i] = resp.IntegerValue(i)
	}

	var buf bytes.Buffer
	if err := (&RawFormatter{}).Format(&buf, resp.ArrayValue(vals)); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if lines[0] != " 1) (integer) 0" {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[9] != "10) (integer) 9" {
		t.Errorf("last line = %q", lines[9])
	}
}

func TestRawFormatter_PlainValue(t *testing.T) {
	var buf bytes.Buffer
	if err := (&RawFormatter{}).Format(&buf, "connected"); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.String() != "connected\n" {
		t.Errorf("Format() = %q", buf.String())
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	in := resp.ArrayValue([]resp.Value{resp.StringValue("v"), resp.NullValue()})
	if err := (&JSONFormatter{}).Format(&buf, in); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var got struct {
		Type     string `json:"type"`
		Elements []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"elements"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if got.Type != TypeArray || len(got.Elements) != 2 {
		t.Fatalf("decoded = %+v", got)
	}
	if got.Elements[0].Value != "v" || got.Elements[1].Type != TypeNil {
		t.Errorf("elements = %+v", got.Elements)
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, resp.IntegerValue(42)); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var got Reply
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML %q: %v", buf.String(), err)
	}
	if got.Type != TypeInteger || got.Value != 42 {
		t.Errorf("decoded = %+v", got)
	}
}
