package alloc

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/memkit/internal/assert"
	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/mem"
)

// DefaultMaxEntries bounds the number of live stack allocations when
// StackOptions.MaxEntries is zero.
const DefaultMaxEntries = 128

// StackOptions configures NewStackWithOptions.
type StackOptions struct {
	BufferOptions
	MaxEntries int
}

// Entry records one live stack allocation. AlignmentOffset is the padding
// skipped before Ptr; popping the entry gives back Size+AlignmentOffset bytes.
type Entry struct {
	Ptr             unsafe.Pointer
	Size            int
	AlignmentOffset int
}

// Stack is a LIFO allocator. Every allocation pushes an Entry and only the
// most recent live allocation may be freed.
//
// Stack is not safe for concurrent use.
type Stack struct {
	buf        *mem.Buffer
	entries    []Entry
	maxEntries int
	used       int
}

// NewStack allocates an owned buffer of size bytes. maxEntries 0 selects
// DefaultMaxEntries.
func NewStack(size, alignment, maxEntries int) (*Stack, error) {
	return NewStackWithOptions(StackOptions{
		BufferOptions: BufferOptions{Size: size, Alignment: alignment},
		MaxEntries:    maxEntries,
	})
}

// NewStackFromBuffer builds a stack over caller memory.
func NewStackFromBuffer(b []byte, maxEntries int) (*Stack, error) {
	return NewStackWithOptions(StackOptions{
		BufferOptions: BufferOptions{Buffer: b},
		MaxEntries:    maxEntries,
	})
}

// NewStackWithOptions builds a stack from opts.
func NewStackWithOptions(opts StackOptions) (*Stack, error) {
	limit := opts.MaxEntries
	if limit == 0 {
		limit = DefaultMaxEntries
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: max entries %d", ErrBadConfig, limit)
	}
	b, err := opts.open()
	if err != nil {
		return nil, err
	}
	return &Stack{buf: b, entries: make([]Entry, 0, limit), maxEntries: limit}, nil
}

// Allocate pushes a new entry of size bytes aligned to align. It returns nil
// when the buffer is exhausted or the entry bound is reached.
func (s *Stack) Allocate(size, align int) unsafe.Pointer {
	if size <= 0 {
		return nil
	}
	align, ok := normalizeAlign(align)
	if assert.Enabled && !ok {
		assert.Fail("alloc.Stack.Allocate", ErrBadAlignment, "align=%d", align)
	}
	if len(s.entries) == s.maxEntries {
		logger.Warn("alloc: stack entry limit reached",
			"size", size, "entries", len(s.entries))
		return nil
	}

	pad := buf.Padding(uintptr(s.buf.Base())+uintptr(s.used), align)
	if _, err := buf.CheckSpan(s.buf.Len(), s.used+pad, size); err != nil {
		logger.Warn("alloc: stack exhausted",
			"size", size, "align", align, "remaining", s.Remaining())
		return nil
	}
	p := s.buf.At(s.used + pad)
	s.entries = append(s.entries, Entry{Ptr: p, Size: size, AlignmentOffset: pad})
	s.used += pad + size
	return p
}

// Push is Allocate with the default alignment.
func (s *Stack) Push(size int) unsafe.Pointer {
	return s.Allocate(size, 0)
}

// Deallocate frees p, which must be the most recent live allocation. A
// non-zero size must match the size it was allocated with.
func (s *Stack) Deallocate(p unsafe.Pointer, size int) {
	if assert.Enabled {
		if len(s.entries) == 0 {
			assert.Fail("alloc.Stack.Deallocate", ErrEmpty, "ptr=%p", p)
		}
		top := s.entries[len(s.entries)-1]
		if p != top.Ptr {
			assert.Fail("alloc.Stack.Deallocate", ErrOutOfOrder, "ptr=%p top=%p", p, top.Ptr)
		}
		if size != 0 && size != top.Size {
			assert.Fail("alloc.Stack.Deallocate", ErrBadSize, "size=%d top=%d", size, top.Size)
		}
	}
	s.Pop()
}

// Pop frees the most recent live allocation without checking a pointer.
func (s *Stack) Pop() {
	if assert.Enabled && len(s.entries) == 0 {
		assert.Fail("alloc.Stack.Pop", ErrEmpty, "no entries")
	}
	top := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	s.used -= top.Size + top.AlignmentOffset
}

// Top returns the most recent live entry.
func (s *Stack) Top() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Scope runs fn and then pops every entry fn left behind, including when fn panics.
func (s *Stack) Scope(fn func()) {
	depth := len(s.entries)
	defer func() {
		for len(s.entries) > depth {
			s.Pop()
		}
	}()
	fn()
}

// Belongs reports whether p lies between the buffer start and the end of the
// top entry.
func (s *Stack) Belongs(p unsafe.Pointer) bool {
	return s.buf.Contains(p) && s.buf.Offset(p) < s.used
}

// Release frees an owned buffer. Releasing a stack with live entries is logged.
func (s *Stack) Release() error {
	if len(s.entries) > 0 {
		logger.Warn("alloc: releasing non-empty stack",
			"entries", len(s.entries), "allocated", s.used)
	}
	s.entries = s.entries[:0]
	s.used = 0
	return s.buf.Release()
}

func (s *Stack) Size() int       { return s.buf.Len() }
func (s *Stack) Allocated() int  { return s.used }
func (s *Stack) Remaining() int  { return s.buf.Len() - s.used }
func (s *Stack) Entries() int    { return len(s.entries) }
func (s *Stack) MaxEntries() int { return s.maxEntries }
func (s *Stack) IsEmpty() bool   { return len(s.entries) == 0 }

// IsFull reports whether no further allocation can succeed.
func (s *Stack) IsFull() bool {
	return s.used == s.buf.Len() || len(s.entries) == s.maxEntries
}

// Buffer returns the backing buffer.
func (s *Stack) Buffer() *mem.Buffer { return s.buf }
