package alloc

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagged struct {
	Owner uint32
	Seq   uint32
	Check uint64
}

func tagFor(owner, seq uint32) tagged {
	return tagged{Owner: owner, Seq: seq, Check: uint64(owner)<<32 | uint64(seq)}
}

func TestBlockConcurrentUniqueTags(t *testing.T) {
	workers, ops := 8, 20000
	if testing.Short() {
		ops = 2000
	}

	a, err := NewBlock[tagged](32)
	require.NoError(t, err)

	var created, destroyed atomic.Int64
	var aliased atomic.Int64
	var wg sync.WaitGroup

	for w := range workers {
		wg.Add(1)
		go func(owner uint32) {
			defer wg.Done()
			live := make([]*tagged, 0, 16)
			want := make([]tagged, 0, 16)
			for i := range ops {
				seq := uint32(i)
				// Grow the live set for a while, then drain it.
				if len(live) < 16 && (i/16)%2 == 0 {
					v := tagFor(owner, seq)
					p := a.CreateConcurrent(v)
					if p == nil {
						continue
					}
					created.Add(1)
					live = append(live, p)
					want = append(want, v)
					continue
				}
				if len(live) == 0 {
					continue
				}
				last := len(live) - 1
				if *live[last] != want[last] {
					aliased.Add(1)
				}
				a.DestroyConcurrent(live[last])
				destroyed.Add(1)
				live, want = live[:last], want[:last]
			}
			for j, p := range live {
				if *p != want[j] {
					aliased.Add(1)
				}
				a.DestroyConcurrent(p)
				destroyed.Add(1)
			}
		}(uint32(w + 1))
	}
	wg.Wait()

	assert.Zero(t, aliased.Load(), "a live chunk was handed to two owners")
	assert.Equal(t, created.Load(), destroyed.Load())
	assert.True(t, a.Empty())

	st := a.Stats()
	assert.Equal(t, created.Load(), st.Allocs)
	assert.Equal(t, destroyed.Load(), st.Frees)
	// Every worker holds at most 16 chunks, so the pool never needs more
	// than workers*16 chunks plus one block per racing grower.
	assert.LessOrEqual(t, a.Capacity(), workers*16+workers*a.ChunksPerBlock())
}

func TestBlockConcurrentNoAliasing(t *testing.T) {
	workers, rounds := 8, 500
	if testing.Short() {
		rounds = 50
	}

	a, err := NewBlock[uint64](16)
	require.NoError(t, err)

	var seen sync.Map
	var dup atomic.Bool
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			batch := make([]*uint64, 0, 64)
			for r := range rounds {
				for range 64 {
					p := a.AllocateConcurrent()
					if _, loaded := seen.LoadOrStore(p, w); loaded {
						dup.Store(true)
					}
					*p = uint64(w)<<32 | uint64(r)
					batch = append(batch, p)
				}
				for _, p := range batch {
					seen.Delete(p)
					a.DeallocateConcurrent(p)
				}
				batch = batch[:0]
			}
		}(w)
	}
	wg.Wait()

	assert.False(t, dup.Load(), "address handed out twice while live")
	assert.Zero(t, a.Allocations())
}

func TestBlockConcurrentGrowRace(t *testing.T) {
	// One chunk per block forces every allocation through the grow path.
	a, err := NewBlock[uint64](1)
	require.NoError(t, err)

	const workers, per = 8, 200
	var wg sync.WaitGroup
	results := make([][]*uint64, workers)
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for range per {
				results[w] = append(results[w], a.AllocateConcurrent())
			}
		}(w)
	}
	wg.Wait()

	unique := make(map[*uint64]struct{})
	for _, rs := range results {
		for _, p := range rs {
			require.NotNil(t, p)
			unique[p] = struct{}{}
		}
	}
	assert.Len(t, unique, workers*per)
	assert.Equal(t, workers*per, a.BlockCount())
	assert.EqualValues(t, workers*per, a.Stats().Grows)
}
