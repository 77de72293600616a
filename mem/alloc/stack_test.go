package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/mem"
)

func TestStackLIFO(t *testing.T) {
	s, err := NewStack(1024, 16, 0)
	require.NoError(t, err)
	defer s.Release()
	assert.Equal(t, DefaultMaxEntries, s.MaxEntries())

	a := s.Allocate(10, 0)
	b := s.Allocate(20, 8)
	c := s.Allocate(30, 64)
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotNil(t, c)
	assert.True(t, mem.IsAligned(c, 64))
	assert.Equal(t, 3, s.Entries())

	top, ok := s.Top()
	require.True(t, ok)
	assert.Equal(t, c, top.Ptr)
	assert.Equal(t, 30, top.Size)

	before := s.Allocated()
	s.Deallocate(c, 30)
	assert.Equal(t, before-30-top.AlignmentOffset, s.Allocated())
	s.Deallocate(b, 0)
	s.Deallocate(a, 10)
	assert.True(t, s.IsEmpty())
	assert.Zero(t, s.Allocated())
}

func TestStackOutOfOrderPanics(t *testing.T) {
	s, err := NewStack(256, 16, 4)
	require.NoError(t, err)

	a := s.Allocate(16, 0)
	_ = s.Allocate(16, 0)
	requireContract(t, ErrOutOfOrder, func() { s.Deallocate(a, 16) })
}

func TestStackSizeMismatchPanics(t *testing.T) {
	s, err := NewStack(256, 16, 4)
	require.NoError(t, err)

	a := s.Allocate(16, 0)
	requireContract(t, ErrBadSize, func() { s.Deallocate(a, 8) })
}

func TestStackEmptyPanics(t *testing.T) {
	s, err := NewStack(256, 16, 4)
	require.NoError(t, err)

	requireContract(t, ErrEmpty, func() { s.Pop() })
	requireContract(t, ErrEmpty, func() { s.Deallocate(s.Buffer().Base(), 0) })
}

func TestStackRestoresPadding(t *testing.T) {
	s, err := NewStack(256, 64, 8)
	require.NoError(t, err)

	require.NotNil(t, s.Allocate(1, 1))
	used := s.Allocated()
	p := s.Allocate(8, 64)
	require.NotNil(t, p)
	top, _ := s.Top()
	assert.Equal(t, 63, top.AlignmentOffset)
	s.Deallocate(p, 8)
	assert.Equal(t, used, s.Allocated())
}

func TestStackEntryLimit(t *testing.T) {
	logs := captureLogs(t)

	s, err := NewStack(1024, 16, 2)
	require.NoError(t, err)
	require.NotNil(t, s.Push(8))
	require.NotNil(t, s.Push(8))
	assert.True(t, s.IsFull())
	assert.Nil(t, s.Push(8))
	assert.Contains(t, logs.String(), "entry limit")
}

func TestStackExhaustionRecovery(t *testing.T) {
	quiet(t)

	s, err := NewStack(512, 16, 64)
	require.NoError(t, err)

	var ptrs []unsafe.Pointer
	for {
		p := s.Allocate(40, 8)
		if p == nil {
			break
		}
		ptrs = append(ptrs, p)
	}
	require.NotEmpty(t, ptrs)
	for i := len(ptrs) - 1; i >= 0; i-- {
		require.True(t, s.Belongs(ptrs[i]))
		s.Deallocate(ptrs[i], 40)
	}
	assert.True(t, s.IsEmpty())
	assert.NotNil(t, s.Allocate(40, 8))
}

func TestStackBelongs(t *testing.T) {
	s, err := NewStack(256, 16, 8)
	require.NoError(t, err)

	p := s.Allocate(32, 0)
	assert.True(t, s.Belongs(p))
	assert.True(t, s.Belongs(unsafe.Add(p, 31)))
	assert.False(t, s.Belongs(unsafe.Add(p, 32)))

	var outside int64
	assert.False(t, s.Belongs(unsafe.Pointer(&outside)))
}

func TestStackScope(t *testing.T) {
	s, err := NewStack(512, 16, 16)
	require.NoError(t, err)

	keep := s.Allocate(16, 0)
	s.Scope(func() {
		require.NotNil(t, s.Allocate(32, 0))
		require.NotNil(t, s.Allocate(64, 0))
		assert.Equal(t, 3, s.Entries())
	})
	assert.Equal(t, 1, s.Entries())
	top, _ := s.Top()
	assert.Equal(t, keep, top.Ptr)

	assert.Panics(t, func() {
		s.Scope(func() {
			s.Allocate(8, 0)
			panic("boom")
		})
	})
	assert.Equal(t, 1, s.Entries(), "entries are popped on panic")
}

func TestStackTypedHelpers(t *testing.T) {
	type vec3 struct{ X, Y, Z float32 }

	s, err := NewStack(256, 16, 8)
	require.NoError(t, err)

	v := Create(s, vec3{1, 2, 3})
	arr := NCreate(s, 4, uint16(9))
	require.NotNil(t, v)
	require.Len(t, arr, 4)
	assert.Equal(t, vec3{1, 2, 3}, *v)

	requireContract(t, ErrOutOfOrder, func() { Destroy(s, v) })
	NDestroy(s, arr)
	Destroy(s, v)
	assert.True(t, s.IsEmpty())
}
