// Package optional distinguishes a JSON field that was absent from one that
// was set, and a set value from an explicit null. PATCH payloads use it so
// only the fields a client sent are applied.
//
//	type LeadPatch struct {
//	    Stage optional.Field[string] `json:"stage"`
//	}
//
//	{}               → Stage.Set == false
//	{"stage": null}  → Stage.Set == true, Stage.Null == true
//	{"stage": "hot"} → Stage.Set == true, Stage.Value == "hot"
package optional

import (
	"bytes"
	"encoding/json"
)

// Field is a tri-state JSON value.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Of returns a set, non-null field.
func Of[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// UnmarshalJSON is only called when the key is present.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Value, f.Null = zero, true
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON writes null for absent or null fields.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Present reports whether the field carries a non-null value.
func (f Field[T]) Present() bool { return f.Set && !f.Null }

// Ptr returns nil for null, otherwise a pointer to the value. Call it only
// when Set; an absent field also yields nil.
func (f Field[T]) Ptr() *T {
	if !f.Present() {
		return nil
	}
	v := f.Value
	return &v
}
