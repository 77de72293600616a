package alloc

import (
	"fmt"
	"math"
	"reflect"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/memkit/internal/assert"
	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/mem"
)

// maxChunkID bounds the number of chunks a single allocator can address.
const maxChunkID = math.MaxUint32

// BlockAllocator hands out fixed-size chunks for values of T. It grows by
// whole blocks of ChunksPerBlock chunks and never returns a block to the
// system before Reset.
//
// Methods ending in Serial must not run concurrently with any other method.
// Methods ending in Concurrent are lock-free and may be called from any
// number of goroutines at once, but not mixed with Serial calls or Reset.
type BlockAllocator[T any] struct {
	chunkSize  int
	chunkAlign int
	cpb        int

	// head packs the free-list head as generation<<32 | chunk id (0 = empty).
	// Every change bumps the generation so a stale head never compares equal.
	head        atomic.Uint64
	table       atomic.Pointer[blockTable]
	allocations atomic.Int64
	stats       blockStats
}

// NewBlock returns an empty allocator for T. T must not contain Go pointers.
func NewBlock[T any](chunksPerBlock int) (*BlockAllocator[T], error) {
	if chunksPerBlock <= 0 || chunksPerBlock >= maxChunkID {
		return nil, fmt.Errorf("%w: chunks per block %d", ErrBadConfig, chunksPerBlock)
	}
	if !mem.PointerFreeOf[T]() {
		return nil, fmt.Errorf("%w: %v", ErrNotPointerFree, reflect.TypeFor[T]())
	}
	align := max(mem.AlignOf[T](), mem.PointerSize)
	size := mem.AlignForward(max(mem.SizeOf[T](), mem.PointerSize), align)
	if _, ok := buf.MulOverflowSafe(size, chunksPerBlock); !ok {
		return nil, fmt.Errorf("%w: block of %d x %d bytes overflows", ErrBadConfig, chunksPerBlock, size)
	}

	a := &BlockAllocator[T]{
		chunkSize:  size,
		chunkAlign: align,
		cpb:        chunksPerBlock,
		stats:      newBlockStats(),
	}
	a.table.Store(emptyTable)
	return a, nil
}

func packHead(tag, id uint32) uint64 { return uint64(tag)<<32 | uint64(id) }
func headID(h uint64) uint32         { return uint32(h) }
func headTag(h uint64) uint32        { return uint32(h >> 32) }

// newBlock builds the k-th block with its chunks linked in address order.
// The last chunk's link is left 0.
func (a *BlockAllocator[T]) newBlock(k int) (*block, error) {
	if uint64(k+1)*uint64(a.cpb) > maxChunkID {
		return nil, fmt.Errorf("chunk id space exhausted after %d blocks", k)
	}
	b, err := mem.AllocateAligned(a.BlockSize(), a.chunkAlign)
	if err != nil {
		return nil, err
	}
	blk := &block{
		buf:   b,
		base:  uintptr(b.Base()),
		first: uint32(k*a.cpb + 1),
		next:  make([]atomic.Uint32, a.cpb),
	}
	for i := 0; i < a.cpb-1; i++ {
		blk.next[i].Store(blk.first + uint32(i) + 1)
	}
	return blk, nil
}

func (a *BlockAllocator[T]) growFailed(err error) {
	logger.Warn("alloc: block allocator cannot grow",
		"error", err, "blocks", a.BlockCount(), "block_size", a.BlockSize())
}

// hand counts an allocation of chunk i of blk and returns it.
func (a *BlockAllocator[T]) hand(blk *block, i int) *T {
	a.allocations.Add(1)
	a.stats.allocs.Inc()
	return (*T)(blk.chunk(i, a.chunkSize))
}

// chunkOf resolves p to its block and chunk index, checking the deallocation
// contract.
func (a *BlockAllocator[T]) chunkOf(op string, p *T) (*block, int) {
	if assert.Enabled {
		if p == nil {
			assert.Fail(op, ErrNilPointer, "")
		}
		if a.allocations.Load() <= 0 {
			assert.Fail(op, ErrEmpty, "ptr=%p", p)
		}
	}
	addr := uintptr(unsafe.Pointer(p))
	blk, ok := a.table.Load().find(addr)
	if assert.Enabled && (!ok || int(addr-blk.base)%a.chunkSize != 0) {
		assert.Fail(op, ErrForeignPointer, "ptr=%p", p)
	}
	return blk, int(addr-blk.base) / a.chunkSize
}

// AllocateSerial pops a free chunk, growing by one block when none is left.
// It returns nil only when a new block cannot be created.
func (a *BlockAllocator[T]) AllocateSerial() *T {
	h := a.head.Load()
	if id := headID(h); id != 0 {
		blk, i := a.table.Load().locate(id, a.cpb)
		a.head.Store(packHead(headTag(h)+1, blk.next[i].Load()))
		return a.hand(blk, i)
	}

	tbl := a.table.Load()
	blk, err := a.newBlock(len(tbl.blocks))
	if err != nil {
		a.growFailed(err)
		return nil
	}
	a.table.Store(tbl.with(blk))
	a.stats.grows.Inc()
	if a.cpb > 1 {
		a.head.Store(packHead(headTag(h)+1, blk.first+1))
	}
	return a.hand(blk, 0)
}

// DeallocateSerial returns p to the free list.
func (a *BlockAllocator[T]) DeallocateSerial(p *T) {
	blk, i := a.chunkOf("alloc.BlockAllocator.DeallocateSerial", p)
	h := a.head.Load()
	blk.next[i].Store(headID(h))
	a.head.Store(packHead(headTag(h)+1, blk.first+uint32(i)))
	a.allocations.Add(-1)
	a.stats.frees.Inc()
}

// CreateSerial allocates a chunk and stores v in it.
func (a *BlockAllocator[T]) CreateSerial(v T) *T {
	p := a.AllocateSerial()
	if p != nil {
		*p = v
	}
	return p
}

// DestroySerial disposes *p when T implements Disposer and frees the chunk.
func (a *BlockAllocator[T]) DestroySerial(p *T) {
	dispose(p)
	a.DeallocateSerial(p)
}

// ReserveSerial adds a block when the free list is empty. It reports whether
// at least one free chunk is available afterwards.
func (a *BlockAllocator[T]) ReserveSerial() bool {
	h := a.head.Load()
	if headID(h) != 0 {
		return true
	}
	tbl := a.table.Load()
	blk, err := a.newBlock(len(tbl.blocks))
	if err != nil {
		a.growFailed(err)
		return false
	}
	a.table.Store(tbl.with(blk))
	a.stats.grows.Inc()
	a.head.Store(packHead(headTag(h)+1, blk.first))
	return true
}

// Reset releases every block. Outstanding pointers must not be used
// afterwards; resetting with live allocations is logged.
func (a *BlockAllocator[T]) Reset() {
	if n := a.allocations.Load(); n > 0 {
		logger.Warn("alloc: resetting block allocator with live allocations",
			"allocations", n, "blocks", a.BlockCount())
	}
	tbl := a.table.Swap(emptyTable)
	for _, blk := range tbl.blocks {
		_ = blk.buf.Release()
	}
	h := a.head.Load()
	a.head.Store(packHead(headTag(h)+1, 0))
	a.allocations.Store(0)
	a.stats.reset()
}

// Belongs reports whether p lies inside one of the allocator's blocks. Freed
// chunks still belong.
func (a *BlockAllocator[T]) Belongs(p unsafe.Pointer) bool {
	_, ok := a.table.Load().find(uintptr(p))
	return ok
}

// Owns is Belongs for a typed pointer.
func (a *BlockAllocator[T]) Owns(p *T) bool {
	return a.Belongs(unsafe.Pointer(p))
}

func (a *BlockAllocator[T]) ChunkSize() int      { return a.chunkSize }
func (a *BlockAllocator[T]) ChunkAlignment() int { return a.chunkAlign }
func (a *BlockAllocator[T]) ChunksPerBlock() int { return a.cpb }
func (a *BlockAllocator[T]) BlockSize() int      { return a.chunkSize * a.cpb }
func (a *BlockAllocator[T]) BlockCount() int     { return len(a.table.Load().blocks) }
func (a *BlockAllocator[T]) Capacity() int       { return a.BlockCount() * a.cpb }
func (a *BlockAllocator[T]) Allocations() int    { return int(a.allocations.Load()) }
func (a *BlockAllocator[T]) Empty() bool         { return a.allocations.Load() == 0 }

// Stats returns activity counters since construction or the last Reset.
func (a *BlockAllocator[T]) Stats() BlockStats { return a.stats.snapshot() }
