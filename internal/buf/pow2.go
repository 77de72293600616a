// Package buf contains size, alignment and bounds arithmetic shared by the allocators.
package buf

import "math/bits"

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= v. Powers of two map to
// themselves and values <= 1 map to 1.
func NextPowerOfTwo(v int) int {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(v-1))
}

// PrevPowerOfTwo returns the largest power of two <= v, or 0 when v <= 0.
func PrevPowerOfTwo(v int) int {
	if v <= 0 {
		return 0
	}
	return 1 << (bits.Len(uint(v)) - 1)
}

// TrailingZeros returns the number of trailing zero bits of v.
func TrailingZeros(v int) int {
	return bits.TrailingZeros(uint(v))
}

// AlignUp rounds n up to the next multiple of align. align must be a power of two.
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// AlignAddr rounds addr up to the next multiple of align. align must be a power of two.
func AlignAddr(addr uintptr, align int) uintptr {
	mask := uintptr(align) - 1
	return (addr + mask) &^ mask
}

// Padding returns how many bytes must be skipped from addr to reach the next
// align boundary.
func Padding(addr uintptr, align int) int {
	return int(AlignAddr(addr, align) - addr)
}
