package mem

import (
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"
)

var pointerFreeCache = xsync.NewMapOf[reflect.Type, bool]()

// PointerFree reports whether values of t contain no Go pointers, so they may
// live in memory the garbage collector does not scan. Strings, slices, maps,
// channels, funcs, interfaces and all pointer kinds disqualify a type.
func PointerFree(t reflect.Type) bool {
	if t == nil {
		return false
	}
	v, _ := pointerFreeCache.LoadOrCompute(t, func() bool {
		return pointerFree(t)
	})
	return v
}

// PointerFreeOf is PointerFree for a type parameter.
func PointerFreeOf[T any]() bool {
	return PointerFree(reflect.TypeFor[T]())
}

func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
