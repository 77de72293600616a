package mem

import (
	"unsafe"

	"github.com/joshuapare/memkit/internal/buf"
)

const (
	// DefaultAlignment is used whenever a caller passes alignment 0.
	DefaultAlignment = 16

	// PointerSize is the size of a machine pointer in bytes.
	PointerSize = int(unsafe.Sizeof(uintptr(0)))
)

// IsAligned reports whether p is a multiple of align. align must be a power of two.
func IsAligned(p unsafe.Pointer, align int) bool {
	return uintptr(p)&(uintptr(align)-1) == 0
}

// AlignForward rounds n up to a multiple of align. align must be a power of two.
func AlignForward(n, align int) int {
	return buf.AlignUp(n, align)
}

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	return buf.IsPowerOfTwo(v)
}

// SizeOf returns the size of T in bytes.
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// AlignOf returns the natural alignment of T.
func AlignOf[T any]() int {
	var zero T
	return int(unsafe.Alignof(zero))
}
