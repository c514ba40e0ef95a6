package audit

import (
	"reflect"

	"github.com/estate-backoffice/backend/internal/models"
)

// Diff computes the field-level change set between two record snapshots.
//
// With a nil old snapshot (create path) every non-nil field of the new
// snapshot becomes a change from nil. With both present, only fields in the
// new snapshot that structurally differ from the old value are included.
// Returns nil, not an empty map, when nothing changed — callers must treat
// nil as "do not write an audit row".
func Diff(oldRecord, newRecord map[string]any) models.ChangeSet {
	changes := models.ChangeSet{}

	if oldRecord == nil {
		for field, value := range newRecord {
			if isNil(value) {
				continue
			}
			changes[field] = models.FieldChange{Old: nil, New: value}
		}
	} else {
		for field, newValue := range newRecord {
			oldValue := normalize(oldRecord[field])
			newValue = normalize(newValue)
			if !reflect.DeepEqual(oldValue, newValue) {
				changes[field] = models.FieldChange{Old: oldValue, New: newValue}
			}
		}
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}

// normalize collapses typed nils (nil *string inside an any, etc.) to a bare
// nil so they compare and serialize consistently.
func normalize(v any) any {
	if isNil(v) {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		return rv.Elem().Interface()
	}
	return v
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
