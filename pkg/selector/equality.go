package selector

import (
	"reflect"

	"github.com/go-drift/storesync/internal/identity"
)

// EqualityFn decides whether two selections count as the same value.
// It must be pure; a panic inside it reaches the caller of Select unchanged.
type EqualityFn[T any] func(a, b T) bool

// RefEqual is the default equality policy: reference identity for maps,
// slices, pointers, funcs and channels, and == for everything else.
func RefEqual[T any](a, b T) bool {
	return identity.Is(a, b)
}

// ShallowEqual reports whether a and b are identical or hold identical
// members one level deep: map entries, slice and array elements, or struct
// fields. Pointers are followed once, so two pointers to structs with
// identical fields are shallowly equal.
func ShallowEqual[T any](a, b T) bool {
	va, vb := reflect.ValueOf(&a).Elem(), reflect.ValueOf(&b).Elem()
	if identity.Values(va, vb) {
		return true
	}
	if va.Kind() == reflect.Interface {
		if va.IsNil() || vb.IsNil() {
			return false
		}
		va, vb = va.Elem(), vb.Elem()
		if va.Type() != vb.Type() {
			return false
		}
	}
	if va.Kind() == reflect.Pointer {
		if va.IsNil() || vb.IsNil() {
			return false
		}
		va, vb = va.Elem(), vb.Elem()
	}

	switch va.Kind() {
	case reflect.Map:
		if va.IsNil() != vb.IsNil() || va.Len() != vb.Len() {
			return false
		}
		iter := va.MapRange()
		for iter.Next() {
			other := vb.MapIndex(iter.Key())
			if !other.IsValid() || !identity.Values(iter.Value(), other) {
				return false
			}
		}
		return true
	case reflect.Slice, reflect.Array:
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !identity.Values(va.Index(i), vb.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < va.NumField(); i++ {
			if !identity.Values(va.Field(i), vb.Field(i)) {
				return false
			}
		}
		return true
	}
	return identity.Values(va, vb)
}
