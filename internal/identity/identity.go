// Package identity implements reference-style identity comparison for
// arbitrary Go values.
package identity

import (
	"math"
	"reflect"
)

// Is reports whether a and b are the same value in the sense of a
// reference comparison: maps, slices, funcs, channels and pointers are
// identical only when they share the same underlying reference, and
// scalar values are identical when they are equal. NaN is identical to NaN.
//
// Structs and arrays are identical when every field or element is, so a
// struct holding a slice is identical to a copy of itself that shares the
// slice. Is never panics.
func Is(a, b any) bool {
	return Values(reflect.ValueOf(a), reflect.ValueOf(b))
}

// Values is Is for reflect values. It never calls Interface, so it works on
// values read from unexported fields.
func Values(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return !a.IsValid() && !b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()
	case reflect.Float32, reflect.Float64:
		fa, fb := a.Float(), b.Float()
		if math.IsNaN(fa) && math.IsNaN(fb) {
			return true
		}
		return fa == fb
	case reflect.Complex64, reflect.Complex128:
		return a.Complex() == b.Complex()
	case reflect.String:
		return a.String() == b.String()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Slice:
		if a.Len() != b.Len() {
			return false
		}
		if a.Len() == 0 {
			return a.IsNil() == b.IsNil()
		}
		return a.Pointer() == b.Pointer()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return Values(a.Elem(), b.Elem())
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !Values(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if !Values(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	}
	return false
}
