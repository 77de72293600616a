package alloc

// AllocateConcurrent pops a free chunk with a compare-and-swap loop. When the
// free list is empty the caller races to publish a new block: the block is
// built privately and installed with a single swap of the block table, the
// winner keeps chunk 0 and splices the rest onto the free list, and losers
// discard their block and retry.
func (a *BlockAllocator[T]) AllocateConcurrent() *T {
	for {
		if blk, i, ok := a.popConcurrent(); ok {
			return a.hand(blk, i)
		}
		p, retry := a.growConcurrent()
		if !retry {
			return p
		}
	}
}

func (a *BlockAllocator[T]) popConcurrent() (*block, int, bool) {
	for {
		h := a.head.Load()
		id := headID(h)
		if id == 0 {
			return nil, 0, false
		}
		blk, i := a.table.Load().locate(id, a.cpb)
		// next is stale if id was popped since h was read; the generation in
		// h then no longer matches and the swap fails.
		next := blk.next[i].Load()
		if a.head.CompareAndSwap(h, packHead(headTag(h)+1, next)) {
			return blk, i, true
		}
		a.stats.casRetries.Inc()
	}
}

func (a *BlockAllocator[T]) growConcurrent() (p *T, retry bool) {
	tbl := a.table.Load()
	if headID(a.head.Load()) != 0 {
		return nil, true
	}
	blk, err := a.newBlock(len(tbl.blocks))
	if err != nil {
		a.growFailed(err)
		return nil, false
	}
	if !a.table.CompareAndSwap(tbl, tbl.with(blk)) {
		_ = blk.buf.Release()
		a.stats.growRaces.Inc()
		return nil, true
	}
	a.stats.grows.Inc()
	if a.cpb > 1 {
		a.spliceConcurrent(blk, blk.first+1, a.cpb-1)
	}
	return a.hand(blk, 0), false
}

// spliceConcurrent pushes the already linked chain starting at id first and
// ending at chunk last of blk onto the free list.
func (a *BlockAllocator[T]) spliceConcurrent(blk *block, first uint32, last int) {
	for {
		h := a.head.Load()
		blk.next[last].Store(headID(h))
		if a.head.CompareAndSwap(h, packHead(headTag(h)+1, first)) {
			return
		}
		a.stats.casRetries.Inc()
	}
}

// DeallocateConcurrent pushes p back onto the free list.
func (a *BlockAllocator[T]) DeallocateConcurrent(p *T) {
	blk, i := a.chunkOf("alloc.BlockAllocator.DeallocateConcurrent", p)
	a.spliceConcurrent(blk, blk.first+uint32(i), i)
	a.allocations.Add(-1)
	a.stats.frees.Inc()
}

// CreateConcurrent allocates a chunk and stores v in it.
func (a *BlockAllocator[T]) CreateConcurrent(v T) *T {
	p := a.AllocateConcurrent()
	if p != nil {
		*p = v
	}
	return p
}

// DestroyConcurrent disposes *p when T implements Disposer and frees the chunk.
func (a *BlockAllocator[T]) DestroyConcurrent(p *T) {
	dispose(p)
	a.DeallocateConcurrent(p)
}

// ReserveConcurrent publishes a block when the free list is empty. It reports
// whether free chunks were available or added.
func (a *BlockAllocator[T]) ReserveConcurrent() bool {
	for {
		if headID(a.head.Load()) != 0 {
			return true
		}
		tbl := a.table.Load()
		blk, err := a.newBlock(len(tbl.blocks))
		if err != nil {
			a.growFailed(err)
			return false
		}
		if a.table.CompareAndSwap(tbl, tbl.with(blk)) {
			a.stats.grows.Inc()
			a.spliceConcurrent(blk, blk.first, a.cpb-1)
			return true
		}
		_ = blk.buf.Release()
		a.stats.growRaces.Inc()
	}
}
