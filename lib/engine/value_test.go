package engine

import (
	"bytes"
	"testing"
)

func TestValueKinds(t *testing.T) {
	text := TextValue("hello")
	if text.Kind() != KindText {
		t.Errorf("Expected KindText, got %s", text.Kind())
	}
	if s, ok := text.Text(); !ok || s != "hello" {
		t.Errorf("Expected text hello, got %q (ok=%v)", s, ok)
	}
	if _, ok := text.Integer(); ok {
		t.Errorf("Text value must not report an integer")
	}
	if _, ok := text.Bytes(); ok {
		t.Errorf("Text value must not report bytes")
	}

	raw := BytesValue([]byte{1, 2, 3})
	if raw.Kind() != KindBytes {
		t.Errorf("Expected KindBytes, got %s", raw.Kind())
	}
	if b, ok := raw.Bytes(); !ok || !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Errorf("Expected bytes {1,2,3}, got %v (ok=%v)", b, ok)
	}

	num := IntegerValue(-7)
	if num.Kind() != KindInteger {
		t.Errorf("Expected KindInteger, got %s", num.Kind())
	}
	if n, ok := num.Integer(); !ok || n != -7 {
		t.Errorf("Expected integer -7, got %d (ok=%v)", n, ok)
	}

	var zero Value
	if !zero.IsZero() {
		t.Errorf("Zero value must report IsZero")
	}
	if zero.Kind() != KindNone {
		t.Errorf("Expected KindNone for zero value, got %s", zero.Kind())
	}
}

func TestValueBytesCopied(t *testing.T) {
	src := []byte("original")
	v := BytesValue(src)

	// mutating the source after construction must not change the value
	src[0] = 'X'
	if b, _ := v.Bytes(); b[0] != 'o' {
		t.Errorf("BytesValue must copy its input")
	}

	// mutating an accessor result must not change the value
	b1, _ := v.Bytes()
	b1[0] = 'Y'
	if b2, _ := v.Bytes(); b2[0] != 'o' {
		t.Errorf("Bytes must return a fresh copy")
	}
}

func TestValueEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"SameText", TextValue("a"), TextValue("a"), true},
		{"DifferentText", TextValue("a"), TextValue("b"), false},
		{"SameBytes", BytesValue([]byte{1}), BytesValue([]byte{1}), true},
		{"DifferentBytes", BytesValue([]byte{1}), BytesValue([]byte{2}), false},
		{"SameInteger", IntegerValue(1), IntegerValue(1), true},
		{"DifferentInteger", IntegerValue(1), IntegerValue(2), false},
		{"KindMismatch", TextValue("1"), IntegerValue(1), false},
		{"BothZero", Value{}, Value{}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Equal(c.b); got != c.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestValueSize(t *testing.T) {
	if n := TextValue("abcd").Size(); n != 4 {
		t.Errorf("Expected size 4 for text, got %d", n)
	}
	if n := BytesValue(make([]byte, 10)).Size(); n != 10 {
		t.Errorf("Expected size 10 for bytes, got %d", n)
	}
	if n := IntegerValue(0).Size(); n != 8 {
		t.Errorf("Expected size 8 for integer, got %d", n)
	}
	if n := (Value{}).Size(); n != 0 {
		t.Errorf("Expected size 0 for zero value, got %d", n)
	}
}
