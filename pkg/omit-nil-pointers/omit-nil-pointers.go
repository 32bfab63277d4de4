package omitnilpointers

import (
	"reflect"
)

// OmitNilPointers prepares optional response fields for encoding. Nil values, nil pointers and
// empty strings are dropped; pointers are followed down to the value they hold.
func OmitNilPointers(fields map[string]any) map[string]any {
	omitted := make(map[string]any, len(fields))
	for key, value := range fields {
		if v, ok := deref(value); ok {
			omitted[key] = v
		}
	}

	return omitted
}

func deref(value any) (any, bool) {
	v := reflect.ValueOf(value)
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	if !v.IsValid() {
		return nil, false
	}
	if v.Kind() == reflect.String && v.Len() == 0 {
		return nil, false
	}

	return v.Interface(), true
}
