// Package mem provides the aligned buffers every memkit allocator is built on.
//
// # Buffers
//
// A Buffer is a contiguous byte region that is either owned (allocated by this
// package with a requested alignment and released by Release) or provided by
// the caller (wrapped with Provide and never released by memkit):
//
//	b, err := mem.AllocateAligned(64<<10, 64)
//	if err != nil {
//	    return err
//	}
//	defer b.Release()
//
//	p := b.At(128) // unsafe.Pointer into the buffer
//
// Owned buffers come from the Go heap by default. Options.PageBacked maps them
// from the OS instead (anonymous mmap on unix), which keeps large regions out
// of the collector's heap accounting and lets Options.Prefault populate the
// pages up front.
//
// # Pointer-free types
//
// Allocator memory is not scanned by the garbage collector. Only types whose
// values contain no Go pointers may be stored in it; PointerFree reports
// whether a type qualifies and the typed helpers in mem/alloc enforce it.
//
// # Logging
//
// Allocators report exhaustion and destructive resets through log/slog at
// Warn level. SetLogger redirects those records.
package mem
