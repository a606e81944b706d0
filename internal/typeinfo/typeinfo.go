// Package typeinfo answers one question at Ring.Allocate time: does the
// element type hold anything the garbage collector needs to know about?
// Every fixed-payload ring this codebase has shipped historically
// ([24]byte, [32]byte, [56]byte) is pointer-free, so this is normally a
// fast "no" computed once and cached; it exists so a caller who
// instantiates a Ring over a pointer-bearing type at least gets its
// popped slots cleared instead of silently retaining stale references.
package typeinfo

import "reflect"

// HasPointers reports whether T's memory representation can contain a
// value the Go garbage collector must trace (pointers, slices, maps,
// channels, interfaces, strings, function values).
func HasPointers[T any]() bool {
	var zero T
	return hasPointers(reflect.TypeOf(&zero).Elem())
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan,
		reflect.Interface, reflect.String, reflect.Func, reflect.UnsafePointer:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
