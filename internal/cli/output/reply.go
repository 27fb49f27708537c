package output

import (
	"github.com/tidwall/resp"
)

// Reply types.
const (
	TypeString  = "string"
	TypeError   = "error"
	TypeInteger = "integer"
	TypeBulk    = "bulk"
	TypeNil     = "nil"
	TypeArray   = "array"
)

// Reply is a structured view of a RESP reply.
type Reply struct {
	Type     string  `json:"type" yaml:"type"`
	Value    any     `json:"value,omitempty" yaml:"value,omitempty"`
	Elements []Reply `json:"elements,omitempty" yaml:"elements,omitempty"`
}

// FromValue converts a RESP value.
func FromValue(v resp.Value) Reply {
	switch v.Type() {
	case resp.SimpleString:
		return Reply{Type: TypeString, Value: v.String()}
	case resp.Error:
		return Reply{Type: TypeError, Value: v.String()}
	case resp.Integer:
		return Reply{Type: TypeInteger, Value: v.Integer()}
	case resp.Array:
		if v.IsNull() {
			return Reply{Type: TypeNil}
		}
		vals := v.Array()
		r := Reply{Type: TypeArray, Elements: make([]Reply, len(vals))}
		for i, e := range vals {
			r.Elements[i] = FromValue(e)
		}
		return r
	default:
		if v.IsNull() {
			return Reply{Type: TypeNil}
		}
		return Reply{Type: TypeBulk, Value: v.String()}
	}
}

func toReply(data any) (Reply, bool) {
	switch d := data.(type) {
	case resp.Value:
		return FromValue(d), true
	case Reply:
		return d, true
	case *Reply:
		return *d, true
	default:
		return Reply{}, false
	}
}
