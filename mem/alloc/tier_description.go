package alloc

import (
	"fmt"

	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/mem"
)

// maxTiers bounds the number of tiers a description may produce.
const maxTiers = 128

// TierInfo describes one tier: Slots slots of AllocationSize bytes, Size bytes in total.
type TierInfo struct {
	Size           int
	AllocationSize int
	Slots          int
}

// Description is the tier layout computed by CreateDescription. Tiers run
// from MaxAllocation (index 0) down to MinAllocation (last index) and are laid
// out back to back in that order.
type Description struct {
	MaxAllocation int
	MinAllocation int
	Granularity   int
	TierSlotDecay float32
	BufferSize    int
	Tiers         []TierInfo
}

// CreateDescription computes the tier layout for the given parameters.
//
// Each tier's allocation size is the previous one minus NextPowerOfTwo(prev)/granularity,
// so every power-of-two octave is split into granularity/2 tiers. A tier gets
// slots until it holds at least decay times the previous tier's slots and its
// end offset is a multiple of the largest power of two not above its
// allocation size, which keeps the next tier aligned.
func CreateDescription(maxAllocation, minAllocation, granularity int, decay float32) (Description, error) {
	switch {
	case !buf.IsPowerOfTwo(maxAllocation) || !buf.IsPowerOfTwo(minAllocation) || !buf.IsPowerOfTwo(granularity):
		return Description{}, fmt.Errorf("%w: max=%d min=%d granularity=%d must be powers of two",
			ErrBadConfig, maxAllocation, minAllocation, granularity)
	case minAllocation < mem.PointerSize:
		return Description{}, fmt.Errorf("%w: min allocation %d below pointer size", ErrBadConfig, minAllocation)
	case minAllocation > maxAllocation:
		return Description{}, fmt.Errorf("%w: min allocation %d above max %d", ErrBadConfig, minAllocation, maxAllocation)
	case granularity < 2 || granularity > minAllocation:
		return Description{}, fmt.Errorf("%w: granularity %d outside [2, %d]", ErrBadConfig, granularity, minAllocation)
	case !(decay > 0 && decay <= 1):
		return Description{}, fmt.Errorf("%w: tier slot decay %v outside (0, 1]", ErrBadConfig, decay)
	}

	desc := Description{
		MaxAllocation: maxAllocation,
		MinAllocation: minAllocation,
		Granularity:   granularity,
		TierSlotDecay: decay,
		Tiers:         []TierInfo{{Size: maxAllocation, AllocationSize: maxAllocation, Slots: 1}},
	}

	if minAllocation == maxAllocation {
		desc.BufferSize = maxAllocation
		return desc, nil
	}

	next := func(cur int) int {
		return cur - buf.NextPowerOfTwo(cur)/granularity
	}

	size := maxAllocation
	prevSlots := 1
	for cur := next(maxAllocation); ; cur = next(cur) {
		if len(desc.Tiers) == maxTiers {
			return Description{}, fmt.Errorf("%w: more than %d tiers", ErrBadConfig, maxTiers)
		}
		start := size
		align := buf.PrevPowerOfTwo(cur)
		slots := 0
		for int(decay*float32(slots)) < prevSlots || (cur != minAllocation && size%align != 0) {
			slots++
			var ok bool
			if size, ok = buf.AddOverflowSafe(size, cur); !ok {
				return Description{}, fmt.Errorf("%w: buffer size overflows", ErrBadConfig)
			}
		}
		desc.Tiers = append(desc.Tiers, TierInfo{Size: size - start, AllocationSize: cur, Slots: slots})
		if cur == minAllocation {
			break
		}
		prevSlots = slots
	}
	desc.BufferSize = size
	return desc, nil
}

// TierIndex maps an allocation size to its tier without searching. Sizes up
// to MinAllocation map to the last tier; sizes above MaxAllocation return -1.
func (d *Description) TierIndex(size int) int {
	return tierIndex(size, d.MinAllocation, d.MaxAllocation, d.Granularity, len(d.Tiers)-1)
}

func tierIndex(size, minAlloc, maxAlloc, granularity, last int) int {
	if size <= minAlloc {
		return last
	}
	if size > maxAlloc {
		return -1
	}
	np2 := buf.NextPowerOfTwo(size)
	increment := np2 / granularity
	offset := buf.TrailingZeros(minAlloc) - buf.TrailingZeros(granularity)
	return last + (granularity>>1)*(offset-buf.TrailingZeros(increment)) + (np2-size)/increment
}

// TierAlignment returns the alignment guaranteed for every slot of tier i when
// the buffer base is aligned to maxAlignment. Slots sit at multiples of
// AllocationSize past the tier start, so only its lowest set bit carries over.
func (d *Description) TierAlignment(i, maxAlignment int) int {
	n := d.Tiers[i].AllocationSize
	return min(maxAlignment, n&-n)
}

// TierStartAlignment returns the alignment of the first slot of tier i, which
// CreateDescription keeps at min(maxAlignment, PrevPowerOfTwo(AllocationSize)).
func (d *Description) TierStartAlignment(i, maxAlignment int) int {
	return min(maxAlignment, buf.PrevPowerOfTwo(d.Tiers[i].AllocationSize))
}
