package alloc

import "github.com/puzpuzpuz/xsync/v3"

// BlockStats is a point-in-time view of block allocator activity.
type BlockStats struct {
	Allocs     int64 // successful allocations
	Frees      int64 // deallocations
	Grows      int64 // blocks published
	GrowRaces  int64 // blocks built and discarded after losing the publish race
	CASRetries int64 // failed free-list compare-and-swaps
}

// blockStats keeps striped counters so concurrent callers do not contend on
// a single cache line.
type blockStats struct {
	allocs     *xsync.Counter
	frees      *xsync.Counter
	grows      *xsync.Counter
	growRaces  *xsync.Counter
	casRetries *xsync.Counter
}

func newBlockStats() blockStats {
	return blockStats{
		allocs:     xsync.NewCounter(),
		frees:      xsync.NewCounter(),
		grows:      xsync.NewCounter(),
		growRaces:  xsync.NewCounter(),
		casRetries: xsync.NewCounter(),
	}
}

func (s *blockStats) snapshot() BlockStats {
	return BlockStats{
		Allocs:     s.allocs.Value(),
		Frees:      s.frees.Value(),
		Grows:      s.grows.Value(),
		GrowRaces:  s.growRaces.Value(),
		CASRetries: s.casRetries.Value(),
	}
}

func (s *blockStats) reset() {
	s.allocs.Reset()
	s.frees.Reset()
	s.grows.Reset()
	s.growRaces.Reset()
	s.casRetries.Reset()
}
