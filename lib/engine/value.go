package engine

import "bytes"

// --------------------------------------------------------------------------
// Value Kinds
// --------------------------------------------------------------------------

// Kind tags the type of data held by a Value.
type Kind uint8

const (
	// KindNone is the zero Kind. A Value with this kind holds no data.
	KindNone Kind = iota
	// KindText marks a Value holding a string.
	KindText
	// KindBytes marks a Value holding a raw byte slice.
	KindBytes
	// KindInteger marks a Value holding a signed 64-bit integer.
	KindInteger
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindBytes:
		return "Bytes"
	case KindInteger:
		return "Integer"
	case KindNone:
		return "None"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Value Type (tagged union over the three storable kinds)
// --------------------------------------------------------------------------

// Value is an immutable tagged union holding exactly one of a string, a byte
// slice or an int64. The kind is fixed at construction time; overwriting a
// key with a Value of another kind replaces both kind and content.
type Value struct {
	kind Kind
	text string
	raw  []byte
	num  int64
}

// TextValue creates a Value holding a string.
func TextValue(s string) Value {
	return Value{kind: KindText, text: s}
}

// BytesValue creates a Value holding raw bytes.
// The slice is copied so later modifications by the caller cannot
// change the stored data.
func BytesValue(b []byte) Value {
	c := make([]byte, len(b))
	copy(c, b)
	return Value{kind: KindBytes, raw: c}
}

// IntegerValue creates a Value holding a signed 64-bit integer.
func IntegerValue(n int64) Value {
	return Value{kind: KindInteger, num: n}
}

// Kind returns the kind tag of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// Text returns the stored string. The boolean return value indicates
// whether the value actually holds a string.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindText
}

// Bytes returns a copy of the stored bytes. The boolean return value
// indicates whether the value actually holds raw bytes.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	c := make([]byte, len(v.raw))
	copy(c, v.raw)
	return c, true
}

// Integer returns the stored integer. The boolean return value indicates
// whether the value actually holds an integer.
func (v Value) Integer() (int64, bool) {
	return v.num, v.kind == KindInteger
}

// IsZero reports whether the value is the zero Value (no kind, no data).
func (v Value) IsZero() bool {
	return v.kind == KindNone
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindBytes:
		return bytes.Equal(v.raw, o.raw)
	case KindInteger:
		return v.num == o.num
	default:
		return true
	}
}

// Size returns the approximate payload size of the value in bytes.
// Used for engine statistics.
func (v Value) Size() int {
	switch v.kind {
	case KindText:
		return len(v.text)
	case KindBytes:
		return len(v.raw)
	case KindInteger:
		return 8
	default:
		return 0
	}
}
