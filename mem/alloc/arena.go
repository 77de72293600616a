package alloc

import (
	"unsafe"

	"github.com/joshuapare/memkit/internal/assert"
	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/mem"
)

// ArenaOptions configures NewArenaWithOptions.
type ArenaOptions = BufferOptions

// Arena is a bump allocator over one buffer. Allocations are carved from the
// tail in order and only released all at once by Reset or Release.
//
// Arena is not safe for concurrent use.
type Arena struct {
	buf  *mem.Buffer
	used int
}

// NewArena allocates an owned buffer of size bytes aligned to alignment.
func NewArena(size, alignment int) (*Arena, error) {
	return NewArenaWithOptions(ArenaOptions{Size: size, Alignment: alignment})
}

// NewArenaFromBuffer builds an arena over caller memory.
func NewArenaFromBuffer(b []byte) (*Arena, error) {
	return NewArenaWithOptions(ArenaOptions{Buffer: b})
}

// NewArenaWithOptions builds an arena from opts.
func NewArenaWithOptions(opts ArenaOptions) (*Arena, error) {
	b, err := opts.open()
	if err != nil {
		return nil, err
	}
	return &Arena{buf: b}, nil
}

// Allocate returns size bytes aligned to align, or nil when the remaining
// space (including alignment padding) is too small.
func (a *Arena) Allocate(size, align int) unsafe.Pointer {
	if size <= 0 {
		return nil
	}
	align, ok := normalizeAlign(align)
	if assert.Enabled && !ok {
		assert.Fail("alloc.Arena.Allocate", ErrBadAlignment, "align=%d", align)
	}

	start := a.used + buf.Padding(uintptr(a.buf.Base())+uintptr(a.used), align)
	if _, err := buf.CheckSpan(a.buf.Len(), start, size); err != nil {
		logger.Warn("alloc: arena exhausted",
			"size", size, "align", align, "remaining", a.Remaining())
		return nil
	}
	p := a.buf.At(start)
	a.used = start + size
	return p
}

// Belongs reports whether p lies inside the allocated prefix of the arena.
func (a *Arena) Belongs(p unsafe.Pointer) bool {
	return a.buf.Contains(p) && a.buf.Offset(p) < a.used
}

// Reset forgets every allocation. Memory is not cleared.
func (a *Arena) Reset() { a.used = 0 }

// Release frees an owned buffer. Releasing a non-empty arena is logged.
func (a *Arena) Release() error {
	if a.used > 0 {
		logger.Warn("alloc: releasing non-empty arena", "allocated", a.used)
	}
	a.used = 0
	return a.buf.Release()
}

func (a *Arena) Size() int      { return a.buf.Len() }
func (a *Arena) Allocated() int { return a.used }
func (a *Arena) Remaining() int { return a.buf.Len() - a.used }
func (a *Arena) IsEmpty() bool  { return a.used == 0 }
func (a *Arena) IsFull() bool   { return a.used == a.buf.Len() }

// Buffer returns the backing buffer.
func (a *Arena) Buffer() *mem.Buffer { return a.buf }
