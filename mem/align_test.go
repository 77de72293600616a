package mem

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestAlignForward(t *testing.T) {
	tests := []struct {
		n, align, want int
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 16, 16},
		{33, 32, 64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AlignForward(tt.n, tt.align), "AlignForward(%d, %d)", tt.n, tt.align)
	}
}

func TestSizeAndAlignOf(t *testing.T) {
	type pair struct {
		A uint8
		B uint64
	}
	assert.Equal(t, 16, SizeOf[pair]())
	assert.Equal(t, int(unsafe.Alignof(uint64(0))), AlignOf[pair]())
}

func TestPointerFree(t *testing.T) {
	type flat struct {
		X, Y float32
		ID   [4]uint16
	}
	type withString struct {
		Name string
	}
	type nested struct {
		F   flat
		Arr [2]withString
	}

	tests := []struct {
		name string
		typ  reflect.Type
		want bool
	}{
		{"int", reflect.TypeFor[int](), true},
		{"uintptr", reflect.TypeFor[uintptr](), true},
		{"flat struct", reflect.TypeFor[flat](), true},
		{"empty array of strings", reflect.TypeFor[[0]string](), true},
		{"string", reflect.TypeFor[string](), false},
		{"slice", reflect.TypeFor[[]int](), false},
		{"pointer", reflect.TypeFor[*int](), false},
		{"unsafe pointer", reflect.TypeFor[unsafe.Pointer](), false},
		{"map", reflect.TypeFor[map[int]int](), false},
		{"interface", reflect.TypeFor[any](), false},
		{"nested string", reflect.TypeFor[nested](), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PointerFree(tt.typ))
			// Second lookup comes from the cache.
			assert.Equal(t, tt.want, PointerFree(tt.typ))
		})
	}

	assert.True(t, PointerFreeOf[flat]())
	assert.False(t, PointerFreeOf[withString]())
}
