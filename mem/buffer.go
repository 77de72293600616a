package mem

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/mmfile"
)

// Options controls how AllocateWithOptions obtains memory.
type Options struct {
	Alignment  int  // power of two; 0 selects DefaultAlignment
	PageBacked bool // map from the OS instead of the Go heap
	Prefault   bool // populate every page up front (PageBacked only)
}

// Buffer is a contiguous, aligned byte region backing an allocator.
//
// A Buffer is not safe for concurrent Release; reads through Bytes or At are
// governed by whatever allocator owns the buffer.
type Buffer struct {
	data      []byte
	alignment int
	provided  bool
	mapped    bool
	release   func() error
}

// AllocateAligned returns an owned heap buffer of size bytes whose base is a
// multiple of alignment.
func AllocateAligned(size, alignment int) (*Buffer, error) {
	return AllocateWithOptions(size, Options{Alignment: alignment})
}

// AllocateWithOptions returns an owned buffer of size bytes.
func AllocateWithOptions(size int, opts Options) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	align := opts.Alignment
	if align == 0 {
		align = DefaultAlignment
	}
	if !buf.IsPowerOfTwo(align) {
		return nil, fmt.Errorf("%w: %d", ErrBadAlignment, align)
	}
	total, ok := buf.AddOverflowSafe(size, align-1)
	if !ok {
		return nil, fmt.Errorf("%w: %d bytes with alignment %d overflows", ErrBadSize, size, align)
	}

	if opts.PageBacked {
		return mapAligned(size, total, align, opts.Prefault)
	}

	raw := make([]byte, total)
	off := buf.Padding(uintptr(unsafe.Pointer(unsafe.SliceData(raw))), align)
	return &Buffer{
		data:      raw[off : off+size : off+size],
		alignment: align,
	}, nil
}

func mapAligned(size, total, align int, prefault bool) (*Buffer, error) {
	// Mappings are page aligned, so slack is only needed beyond a page.
	mapSize := size
	if align > mmfile.PageSize() || !mmfile.Supported {
		mapSize = total
	}
	raw, cleanup, err := mmfile.Map(mapSize, prefault)
	if err != nil {
		return nil, err
	}
	off := buf.Padding(uintptr(unsafe.Pointer(unsafe.SliceData(raw))), align)
	return &Buffer{
		data:      raw[off : off+size : off+size],
		alignment: align,
		mapped:    mmfile.Supported,
		release:   cleanup,
	}, nil
}

// Provide wraps a caller-owned slice. The buffer is never released by memkit;
// Release only detaches it.
func Provide(b []byte) (*Buffer, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty provided buffer", ErrBadSize)
	}
	return &Buffer{
		data:      b[:len(b):len(b)],
		alignment: naturalAlignment(uintptr(unsafe.Pointer(unsafe.SliceData(b)))),
		provided:  true,
	}, nil
}

// naturalAlignment returns the largest power of two dividing addr, capped at a page.
func naturalAlignment(addr uintptr) int {
	a := int(addr & -addr)
	if a == 0 || a > mmfile.PageSize() {
		return mmfile.PageSize()
	}
	return a
}

// Bytes returns the buffer contents. The slice aliases allocator memory.
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the buffer size in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Alignment returns the guaranteed alignment of the base address.
func (b *Buffer) Alignment() int { return b.alignment }

// Provided reports whether the memory belongs to the caller.
func (b *Buffer) Provided() bool { return b.provided }

// PageBacked reports whether the memory was mapped from the OS.
func (b *Buffer) PageBacked() bool { return b.mapped }

// Released reports whether Release has been called.
func (b *Buffer) Released() bool { return b.data == nil }

// Base returns a pointer to the first byte, or nil after Release.
func (b *Buffer) Base() unsafe.Pointer {
	if b.data == nil {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(b.data))
}

// At returns a pointer off bytes into the buffer. off must be in [0, Len()).
func (b *Buffer) At(off int) unsafe.Pointer {
	return unsafe.Add(b.Base(), off)
}

// Contains reports whether p points into [Base, Base+Len).
func (b *Buffer) Contains(p unsafe.Pointer) bool {
	if b.data == nil || p == nil {
		return false
	}
	base := uintptr(b.Base())
	addr := uintptr(p)
	return addr >= base && addr-base < uintptr(len(b.data))
}

// Offset returns the distance of p from Base. p must satisfy Contains.
func (b *Buffer) Offset(p unsafe.Pointer) int {
	return int(uintptr(p) - uintptr(b.Base()))
}

// Release frees owned memory. Provided buffers are detached but left intact.
// Calling Release more than once is a no-op.
func (b *Buffer) Release() error {
	if b.data == nil {
		return nil
	}
	b.data = nil
	if b.release == nil {
		return nil
	}
	err := b.release()
	b.release = nil
	return err
}
