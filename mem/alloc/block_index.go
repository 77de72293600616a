package alloc

import (
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/memkit/mem"
)

// block is one contiguous run of ChunksPerBlock chunks.
type block struct {
	buf   *mem.Buffer
	base  uintptr
	first uint32 // id of chunk 0

	// next[i] holds the id of the chunk after chunk i while it is free.
	// 0 terminates the list.
	next []atomic.Uint32
}

func (b *block) chunk(i, chunkSize int) unsafe.Pointer {
	return b.buf.At(i * chunkSize)
}

// blockRange maps an address range back to its block for O(log B) lookup.
type blockRange struct {
	start uintptr
	end   uintptr // exclusive
	blk   *block
}

// blockTable is an immutable snapshot of the allocator's blocks. Growth
// publishes a new table; readers never see a block whose chunks are not yet
// reachable through the table.
type blockTable struct {
	blocks []*block      // creation order; blocks[k].first == k*cpb+1
	ranges []blockRange // sorted by start
}

var emptyTable = &blockTable{}

// with returns a copy of t that also contains b.
func (t *blockTable) with(b *block) *blockTable {
	blocks := make([]*block, len(t.blocks), len(t.blocks)+1)
	copy(blocks, t.blocks)
	blocks = append(blocks, b)

	r := blockRange{start: b.base, end: b.base + uintptr(b.buf.Len()), blk: b}
	ranges := make([]blockRange, 0, len(t.ranges)+1)
	inserted := false
	for _, cur := range t.ranges {
		if !inserted && r.start < cur.start {
			ranges = append(ranges, r)
			inserted = true
		}
		ranges = append(ranges, cur)
	}
	if !inserted {
		ranges = append(ranges, r)
	}
	return &blockTable{blocks: blocks, ranges: ranges}
}

// find returns the block containing addr via binary search on ranges.
func (t *blockTable) find(addr uintptr) (*block, bool) {
	lo, hi := 0, len(t.ranges)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		r := t.ranges[mid]
		if addr < r.start {
			hi = mid - 1
		} else if addr >= r.end {
			lo = mid + 1
		} else {
			return r.blk, true
		}
	}
	return nil, false
}

// locate resolves a chunk id to its block and index within the block.
func (t *blockTable) locate(id uint32, cpb int) (*block, int) {
	k := int(id-1) / cpb
	return t.blocks[k], int(id-1) % cpb
}
