// Package optional carries request fields that must distinguish a key
// absent from the payload from one explicitly set to null.
package optional

import "encoding/json"

// Field is tri-state: absent (Set false), null (Set true, Value nil), or a
// concrete value. UnmarshalJSON only runs when the key is present, which is
// what makes the absent case detectable.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Of builds a present field holding v.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null builds a present field set to null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(b) == "null" {
		f.Value = nil
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}
