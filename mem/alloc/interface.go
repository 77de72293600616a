package alloc

import "unsafe"

// Allocator hands out raw, aligned memory. Allocate returns nil when the
// request cannot be satisfied; align 0 selects mem.DefaultAlignment.
type Allocator interface {
	Allocate(size, align int) unsafe.Pointer
	Belongs(p unsafe.Pointer) bool
}

// Deallocator is an Allocator that takes memory back one allocation at a time.
// size must be the size passed to Allocate (0 is accepted where the allocator
// tracks sizes itself).
type Deallocator interface {
	Allocator
	Deallocate(p unsafe.Pointer, size int)
}

// Resetter discards every allocation at once.
type Resetter interface {
	Reset()
}

// Disposer is implemented by values that need cleanup before their memory is
// returned. Destroy helpers call Dispose on a pointer to the value.
type Disposer interface {
	Dispose()
}

var (
	_ Allocator   = (*Arena)(nil)
	_ Resetter    = (*Arena)(nil)
	_ Deallocator = (*Stack)(nil)
	_ Deallocator = (*Tier)(nil)
)
