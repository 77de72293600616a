package alloc

import (
	"unsafe"

	"github.com/joshuapare/memkit/internal/assert"
	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/mem"
)

func requirePointerFree[T any](op string) {
	if assert.Enabled && !mem.PointerFreeOf[T]() {
		var zero T
		assert.Fail(op, ErrNotPointerFree, "%T", zero)
	}
}

// spanOf returns the bytes needed for n values of T. Zero-sized types still
// take one byte so every allocation has a distinct address.
func spanOf[T any](n int) (int, bool) {
	total, err := buf.SpanSize(n, mem.SizeOf[T]())
	if err != nil {
		return 0, false
	}
	return max(total, 1), true
}

// Create allocates space for a T from a, stores v there and returns it.
// T must not contain Go pointers. It returns nil when a is exhausted.
func Create[T any](a Allocator, v T) *T {
	requirePointerFree[T]("alloc.Create")
	size, _ := spanOf[T](1)
	p := a.Allocate(size, mem.AlignOf[T]())
	if p == nil {
		return nil
	}
	t := (*T)(p)
	*t = v
	return t
}

// NCreate allocates n contiguous values of T, each set to v.
func NCreate[T any](a Allocator, n int, v T) []T {
	s := AllocateSlice[T](a, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// AllocateSlice allocates n contiguous values of T without initializing them.
// It returns nil for n <= 0, on overflow, or when a is exhausted.
func AllocateSlice[T any](a Allocator, n int) []T {
	requirePointerFree[T]("alloc.AllocateSlice")
	if n <= 0 {
		return nil
	}
	size, ok := spanOf[T](n)
	if !ok {
		return nil
	}
	p := a.Allocate(size, mem.AlignOf[T]())
	if p == nil {
		return nil
	}
	return unsafe.Slice((*T)(p), n)
}

// Destroy disposes *p when T implements Disposer and returns its memory to a.
func Destroy[T any](a Deallocator, p *T) {
	if assert.Enabled && p == nil {
		assert.Fail("alloc.Destroy", ErrNilPointer, "")
	}
	dispose(p)
	size, _ := spanOf[T](1)
	a.Deallocate(unsafe.Pointer(p), size)
}

// NDestroy disposes every element of s and returns the slice's memory to a.
// s must be exactly the slice returned by NCreate or AllocateSlice.
func NDestroy[T any](a Deallocator, s []T) {
	if len(s) == 0 {
		return
	}
	for i := range s {
		dispose(&s[i])
	}
	size, _ := spanOf[T](len(s))
	a.Deallocate(unsafe.Pointer(unsafe.SliceData(s)), size)
}

func dispose[T any](p *T) {
	if d, ok := any(p).(Disposer); ok && p != nil {
		d.Dispose()
	}
}
