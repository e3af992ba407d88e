// Package optional provides a JSON field wrapper that records whether the
// field was present in the payload, so partial updates can tell "absent" from
// "set to the zero value" and from "explicitly null".
package optional

import (
	"bytes"
	"encoding/json"
)

// Value is an optionally present field. Set is true whenever the key appeared
// in the JSON object; Null is true when its value was the literal null.
type Value[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Of returns a present, non-null Value.
func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, Value: v}
}

// Null returns a present Value holding JSON null.
func Null[T any]() Value[T] {
	return Value[T]{Set: true, Null: true}
}

// UnmarshalJSON implements json.Unmarshaler. encoding/json calls it only for
// keys present in the object, null included.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.Null = true
		var zero T
		v.Value = zero
		return nil
	}
	v.Null = false
	return json.Unmarshal(data, &v.Value)
}

// MarshalJSON implements json.Marshaler.
func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.Set || v.Null {
		return []byte("null"), nil
	}
	return json.Marshal(v.Value)
}

// Present reports whether the field carries a non-null value.
func (v Value[T]) Present() bool { return v.Set && !v.Null }
