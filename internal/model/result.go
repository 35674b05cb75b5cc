package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueKind tags which variant a Value holds.
type ValueKind int

const (
	// ValueAbsent means the member was missing from the response.
	ValueAbsent ValueKind = iota
	// ValueSequence is a JSON array.
	ValueSequence
	// ValueStructured is any other JSON value (object, scalar or null).
	ValueStructured
)

func (k ValueKind) String() string {
	switch k {
	case ValueSequence:
		return "sequence"
	case ValueStructured:
		return "structured"
	default:
		return "absent"
	}
}

// Value is the "input" or "result" member of an execution response.
//
// The execution service returns either an ordered list (sorting algorithms)
// or an arbitrary structure (search results, graph output). Rather than
// inspecting an `any` at render time, we decide the variant once, while
// decoding, and keep the raw JSON so nothing is lost.
type Value struct {
	Kind  ValueKind
	Items []json.RawMessage // set when Kind == ValueSequence
	Raw   json.RawMessage   // the full member as received
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return fmt.Errorf("model: invalid JSON value")
	}

	raw := make(json.RawMessage, len(trimmed))
	copy(raw, trimmed)

	if len(raw) > 0 && raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("model: decoding sequence: %w", err)
		}
		*v = Value{Kind: ValueSequence, Items: items, Raw: raw}
		return nil
	}

	*v = Value{Kind: ValueStructured, Raw: raw}
	return nil
}

// MarshalJSON implements json.Marshaler so a Value round-trips unchanged.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == ValueAbsent || len(v.Raw) == 0 {
		return []byte("null"), nil
	}
	return v.Raw, nil
}

// SequenceOf builds a sequence Value from Go values. Used by tests and by the
// stand-in server.
func SequenceOf(items ...any) Value {
	if items == nil {
		items = []any{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return Value{}
	}
	var v Value
	if err := v.UnmarshalJSON(raw); err != nil {
		return Value{}
	}
	return v
}

// StructuredOf builds a structured Value from any JSON-encodable Go value.
func StructuredOf(x any) Value {
	raw, err := json.Marshal(x)
	if err != nil {
		return Value{}
	}
	return Value{Kind: ValueStructured, Raw: raw}
}

// DisplayText is opaque text shown to the operator as-is.
//
// The execution service documents executionTime as a string ("0.42ms"), but
// a bare number is accepted too and kept as its literal text.
type DisplayText string

// UnmarshalJSON implements json.Unmarshaler.
func (d *DisplayText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("model: empty display text")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("model: decoding display text: %w", err)
		}
		*d = DisplayText(s)
	case 'n':
		*d = ""
	case '{', '[':
		return fmt.Errorf("model: display text must be a scalar")
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("model: decoding display text: %w", err)
		}
		*d = DisplayText(n.String())
	}
	return nil
}

// ExecutionResult is the success body of POST /api/run-algorithm.
type ExecutionResult struct {
	Input         Value       `json:"input"`
	Result        Value       `json:"result"`
	ExecutionTime DisplayText `json:"executionTime"`
	Timestamp     string      `json:"timestamp"`
}
