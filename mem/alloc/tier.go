package alloc

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/memkit/internal/assert"
	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/mem"
)

// tierState is the runtime view of one tier.
type tierState struct {
	start     int    // offset of the first slot
	end       int    // exclusive
	allocSize int
	align     int
	free      uint64 // offset+1 of the first free slot, 0 when exhausted
	used      int
}

// Tier is a slab allocator whose buffer is split into fixed-size tiers at
// construction. Requests are rounded to their tier in O(1); an exhausted tier
// fails the request instead of borrowing from its neighbours.
//
// Free slots store the offset of the next free slot in their first 8 bytes.
// Tier is not safe for concurrent use.
type Tier struct {
	buf      *mem.Buffer
	desc     Description
	maxAlign int
	tiers    []tierState
	live     int
}

// TierUsage reports the occupancy of one tier.
type TierUsage struct {
	AllocationSize int
	Slots          int
	Used           int
}

// NewTier allocates a buffer for desc aligned to maxAlignment.
func NewTier(desc Description, maxAlignment int) (*Tier, error) {
	return newTier(desc, BufferOptions{Size: desc.BufferSize, Alignment: maxAlignment})
}

// NewTierFromBuffer lays desc out over caller memory. b must hold at least
// desc.BufferSize bytes and start on a maxAlignment boundary.
func NewTierFromBuffer(desc Description, b []byte, maxAlignment int) (*Tier, error) {
	if len(b) < desc.BufferSize {
		return nil, fmt.Errorf("%w: buffer of %d bytes, layout needs %d", ErrBadConfig, len(b), desc.BufferSize)
	}
	return newTier(desc, BufferOptions{Buffer: b[:desc.BufferSize], Alignment: maxAlignment})
}

// NewTierFromConfig computes the description for cfg and builds the allocator.
func NewTierFromConfig(cfg TierConfig) (*Tier, error) {
	desc, err := cfg.Description()
	if err != nil {
		return nil, err
	}
	return newTier(desc, BufferOptions{
		Size:       desc.BufferSize,
		Alignment:  cfg.MaxAlignment,
		PageBacked: cfg.PageBacked,
		Prefault:   cfg.Prefault,
	})
}

func newTier(desc Description, opts BufferOptions) (*Tier, error) {
	if len(desc.Tiers) == 0 || desc.BufferSize <= 0 {
		return nil, fmt.Errorf("%w: empty tier description", ErrBadConfig)
	}
	align, ok := normalizeAlign(opts.Alignment)
	if !ok || align < mem.PointerSize {
		return nil, fmt.Errorf("%w: max alignment %d", ErrBadConfig, opts.Alignment)
	}
	opts.Alignment = align

	b, err := opts.open()
	if err != nil {
		return nil, err
	}
	if !mem.IsAligned(b.Base(), align) {
		return nil, fmt.Errorf("%w: provided buffer %p not aligned to %d", ErrBadConfig, b.Base(), align)
	}

	t := &Tier{
		buf:      b,
		desc:     desc,
		maxAlign: align,
		tiers:    make([]tierState, len(desc.Tiers)),
	}
	t.layout()
	return t, nil
}

// layout slices the buffer per tier and threads each free list in address order.
func (t *Tier) layout() {
	off := 0
	for i, info := range t.desc.Tiers {
		ts := &t.tiers[i]
		*ts = tierState{
			start:     off,
			end:       off + info.Size,
			allocSize: info.AllocationSize,
			align:     t.desc.TierAlignment(i, t.maxAlign),
		}
		var next uint64
		for s := info.Slots - 1; s >= 0; s-- {
			slot := off + s*info.AllocationSize
			t.setLink(slot, next)
			next = uint64(slot) + 1
		}
		ts.free = next
		off += info.Size
	}
}

func (t *Tier) link(off int) uint64 {
	return *(*uint64)(t.buf.At(off))
}

func (t *Tier) setLink(off int, next uint64) {
	*(*uint64)(t.buf.At(off)) = next
}

// Allocate returns a slot from the tier serving size, or nil when that tier
// is exhausted or size exceeds MaxAllocation. align 0 accepts the tier's
// natural alignment; larger values must not exceed it.
func (t *Tier) Allocate(size, align int) unsafe.Pointer {
	if size <= 0 || t.buf.Released() {
		return nil
	}
	idx := t.desc.TierIndex(size)
	if idx < 0 {
		logger.Warn("alloc: request exceeds largest tier",
			"size", size, "max_allocation", t.desc.MaxAllocation)
		return nil
	}
	ts := &t.tiers[idx]
	if assert.Enabled && align > ts.align {
		assert.Fail("alloc.Tier.Allocate", ErrBadAlignment,
			"align=%d tier=%d guarantees %d", align, ts.allocSize, ts.align)
	}
	if ts.free == 0 {
		logger.Warn("alloc: tier exhausted",
			"size", size, "tier", idx, "allocation_size", ts.allocSize)
		return nil
	}
	off := int(ts.free - 1)
	ts.free = t.link(off)
	ts.used++
	t.live++
	return t.buf.At(off)
}

// Deallocate returns p to its tier. size must be the size passed to Allocate.
func (t *Tier) Deallocate(p unsafe.Pointer, size int) {
	const op = "alloc.Tier.Deallocate"
	if assert.Enabled {
		if p == nil {
			assert.Fail(op, ErrNilPointer, "")
		}
		if !t.Belongs(p) {
			assert.Fail(op, ErrForeignPointer, "ptr=%p", p)
		}
	}
	idx := t.desc.TierIndex(size)
	if assert.Enabled && idx < 0 {
		assert.Fail(op, ErrBadSize, "size=%d above max allocation %d", size, t.desc.MaxAllocation)
	}
	ts := &t.tiers[idx]
	off := t.buf.Offset(p)
	if assert.Enabled && (off < ts.start || off >= ts.end || (off-ts.start)%ts.allocSize != 0) {
		assert.Fail(op, ErrBadSize, "ptr=%p is not a %d-byte slot", p, ts.allocSize)
	}
	t.setLink(off, ts.free)
	ts.free = uint64(off) + 1
	ts.used--
	t.live--
}

// Belongs reports whether p lies inside the allocator's buffer.
func (t *Tier) Belongs(p unsafe.Pointer) bool {
	return t.buf.Contains(p)
}

// Release frees an owned buffer. Releasing with live allocations is logged.
func (t *Tier) Release() error {
	if t.live > 0 {
		logger.Warn("alloc: releasing tier allocator with live allocations", "allocations", t.live)
	}
	t.live = 0
	return t.buf.Release()
}

// Usage returns per-tier occupancy, largest tier first.
func (t *Tier) Usage() []TierUsage {
	out := make([]TierUsage, len(t.tiers))
	for i, ts := range t.tiers {
		out[i] = TierUsage{AllocationSize: ts.allocSize, Slots: t.desc.Tiers[i].Slots, Used: ts.used}
	}
	return out
}

func (t *Tier) BufferSize() int          { return t.buf.Len() }
func (t *Tier) Description() Description { return t.desc }
func (t *Tier) TierCount() int           { return len(t.tiers) }
func (t *Tier) Allocations() int         { return t.live }
func (t *Tier) MaxAlignment() int        { return t.maxAlign }
