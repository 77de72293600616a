package mpmc

import "github.com/puzpuzpuz/xsync/v3"

// Stats counts stack activity.
type Stats struct {
	Pushes     int64 // successful PushChain calls
	Acquires   int64 // Acquire calls that returned a chain
	Allocated  int64 // nodes created with new
	Recycled   int64 // nodes reused from a cache or the free list
	CASRetries int64 // failed compare-and-swaps on the head or free list
}

type stackStats struct {
	pushes     *xsync.Counter
	acquires   *xsync.Counter
	allocs     *xsync.Counter
	recycles   *xsync.Counter
	casRetries *xsync.Counter
}

func newStackStats() *stackStats {
	return &stackStats{
		pushes:     xsync.NewCounter(),
		acquires:   xsync.NewCounter(),
		allocs:     xsync.NewCounter(),
		recycles:   xsync.NewCounter(),
		casRetries: xsync.NewCounter(),
	}
}

// Methods are nil-safe so the zero Stack skips accounting.

func (s *stackStats) pushed() {
	if s != nil {
		s.pushes.Inc()
	}
}

func (s *stackStats) acquired() {
	if s != nil {
		s.acquires.Inc()
	}
}

func (s *stackStats) allocated() {
	if s != nil {
		s.allocs.Inc()
	}
}

func (s *stackStats) recycled() {
	if s != nil {
		s.recycles.Inc()
	}
}

func (s *stackStats) retry() {
	if s != nil {
		s.casRetries.Inc()
	}
}

func (s *stackStats) snapshot() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		Pushes:     s.pushes.Value(),
		Acquires:   s.acquires.Value(),
		Allocated:  s.allocs.Value(),
		Recycled:   s.recycles.Value(),
		CASRetries: s.casRetries.Value(),
	}
}
