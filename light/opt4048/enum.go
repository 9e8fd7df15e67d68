package opt4048

import (
	"fmt"
	"strings"
)

type enumEntry[T ~uint8] struct {
	value T
	code  uint32
	name  string
}

// enumTable maps the values of a typed register field to their on-wire codes
// and text names. Lookups go through the table in both directions, so a code
// with no entry is reported instead of being reinterpreted as a value.
type enumTable[T ~uint8] struct {
	field   string
	entries []enumEntry[T]
}

func (t enumTable[T]) encode(v T) (uint32, error) {
	for _, e := range t.entries {
		if e.value == v {
			return e.code, nil
		}
	}
	return 0, &ConversionError{Field: t.field, Value: uint32(v)}
}

func (t enumTable[T]) decode(code uint32) (T, error) {
	for _, e := range t.entries {
		if e.code == code {
			return e.value, nil
		}
	}
	return 0, &ConversionError{Field: t.field, Value: code}
}

func (t enumTable[T]) name(v T) string {
	for _, e := range t.entries {
		if e.value == v {
			return e.name
		}
	}
	return fmt.Sprintf("%s(%d)", t.field, uint8(v))
}

func (t enumTable[T]) parse(text []byte) (T, error) {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for _, e := range t.entries {
		if e.name == s {
			return e.value, nil
		}
	}
	return 0, fmt.Errorf("opt4048: unknown %s %q", t.field, s)
}

func (t enumTable[T]) names() []string {
	out := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.name)
	}
	return out
}
