package reactive

import (
	"math"
	"reflect"
)

// SameValue reports whether a and b are strictly equal: comparable values
// by ==, NaN equal to itself, and maps, slices and funcs by identity.
func SameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv || (math.IsNaN(av) && math.IsNaN(bv))
		}
		return false
	case float32:
		if bv, ok := b.(float32); ok {
			return av == bv || (av != av && bv != bv)
		}
		return false
	case int, string, bool, int64, uint64, int32, *Object, *List:
		return a == b
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return safeEqual(a, b)
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	return false
}

// safeEqual compares two values of the same comparable type. Structs
// holding interface fields with incomparable dynamic values panic on ==;
// those are treated as different.
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// isContainer reports whether v may be mutated in place without its
// reference changing. Watcher callbacks always fire for such values.
func isContainer(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case *Object, *List:
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer:
		return true
	}
	return false
}
