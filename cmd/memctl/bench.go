package main

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/mem"
	"github.com/joshuapare/memkit/mem/alloc"
	"github.com/joshuapare/memkit/mem/mpmc"
)

type benchOptions struct {
	allocators []string
	ops        int
	workers    int
	size       int
}

var benchOpts benchOptions

// sample is the payload used by the block allocator and MPMC runs.
type sample struct {
	ID      uint64
	Payload [6]uint64
}

// benchFunc performs ops operations and returns how many succeeded.
type benchFunc func(o benchOptions) (int, error)

var benchmarks = map[string]benchFunc{
	"arena":            benchArena,
	"stack":            benchStack,
	"block":            benchBlockSerial,
	"block-concurrent": benchBlockConcurrent,
	"tier":             benchTier,
	"mpmc":             benchMPMC,
}

func init() {
	cmd := newBenchCmd()
	f := cmd.Flags()
	f.StringSliceVar(&benchOpts.allocators, "allocator", []string{"all"},
		"Allocators to run ("+strings.Join(benchNames(), ", ")+", all)")
	f.IntVar(&benchOpts.ops, "ops", 1_000_000, "Operations per allocator")
	f.IntVar(&benchOpts.workers, "workers", 4, "Goroutines for the concurrent runs")
	f.IntVar(&benchOpts.size, "size", 64, "Request size in bytes for arena, stack and tier")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Measure allocator throughput",
		Long: `The bench command runs a tight allocate/free loop against each
allocator and reports operations per second. It is a quick sanity check,
not a replacement for go test -bench.

Example:
  memctl bench
  memctl bench --allocator block-concurrent,mpmc --workers 8
  memctl bench --ops 100000 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(benchOpts)
		},
	}
}

func benchNames() []string {
	names := make([]string, 0, len(benchmarks))
	for name := range benchmarks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BenchResult is one allocator's measurement.
type BenchResult struct {
	Allocator string        `json:"allocator"`
	Ops       int           `json:"ops"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	OpsPerSec float64       `json:"ops_per_sec"`
}

func selectBenchmarks(names []string) ([]string, error) {
	var out []string
	for _, name := range names {
		if name == "all" {
			return benchNames(), nil
		}
		if _, ok := benchmarks[name]; !ok {
			return nil, fmt.Errorf("unknown allocator %q (want one of %s, all)", name, strings.Join(benchNames(), ", "))
		}
		out = append(out, name)
	}
	return out, nil
}

func runBenchmarks(o benchOptions) ([]BenchResult, error) {
	if o.ops <= 0 || o.workers <= 0 || o.size <= 0 {
		return nil, fmt.Errorf("ops, workers and size must be positive")
	}
	names, err := selectBenchmarks(o.allocators)
	if err != nil {
		return nil, err
	}

	results := make([]BenchResult, 0, len(names))
	for _, name := range names {
		printVerbose("Running %s (%d ops)\n", name, o.ops)
		start := time.Now()
		done, err := benchmarks[name](o)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		elapsed := time.Since(start)
		results = append(results, BenchResult{
			Allocator: name,
			Ops:       done,
			Elapsed:   elapsed,
			OpsPerSec: float64(done) / max(elapsed.Seconds(), 1e-9),
		})
	}
	return results, nil
}

func runBench(o benchOptions) error {
	results, err := runBenchmarks(o)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(results)
	}

	printInfo("\n  %-18s  %14s  %12s  %18s\n", "ALLOCATOR", "OPS", "ELAPSED", "RATE")
	for _, r := range results {
		printInfo("  %-18s  %14s  %12s  %18s\n",
			r.Allocator, formatNumber(int64(r.Ops)), r.Elapsed.Round(time.Microsecond), formatRate(r.OpsPerSec))
	}
	return nil
}

func benchArena(o benchOptions) (int, error) {
	a, err := alloc.NewArena(1<<20, 64)
	if err != nil {
		return 0, err
	}
	defer a.Release()
	for range o.ops {
		if a.Remaining() < o.size+mem.DefaultAlignment {
			a.Reset()
		}
		if a.Allocate(o.size, 0) == nil {
			return 0, fmt.Errorf("arena of %d bytes cannot serve size %d", a.Size(), o.size)
		}
	}
	return o.ops, nil
}

func benchStack(o benchOptions) (int, error) {
	s, err := alloc.NewStack(1<<20, 64, 0)
	if err != nil {
		return 0, err
	}
	defer s.Release()
	for range o.ops {
		p := s.Allocate(o.size, 0)
		if p == nil {
			return 0, fmt.Errorf("stack exhausted at size %d", o.size)
		}
		s.Deallocate(p, o.size)
	}
	return o.ops, nil
}

func benchTier(o benchOptions) (int, error) {
	t, err := alloc.NewTierFromConfig(alloc.TierConfigDefault)
	if err != nil {
		return 0, err
	}
	defer t.Release()
	for range o.ops {
		p := t.Allocate(o.size, 0)
		if p == nil {
			return 0, fmt.Errorf("no tier serves size %d", o.size)
		}
		t.Deallocate(p, o.size)
	}
	return o.ops, nil
}

func benchBlockSerial(o benchOptions) (int, error) {
	a, err := alloc.NewBlock[sample](256)
	if err != nil {
		return 0, err
	}
	defer a.Reset()
	for i := range o.ops {
		p := a.CreateSerial(sample{ID: uint64(i)})
		a.DestroySerial(p)
	}
	return o.ops, nil
}

func benchBlockConcurrent(o benchOptions) (int, error) {
	a, err := alloc.NewBlock[sample](256)
	if err != nil {
		return 0, err
	}
	defer a.Reset()

	per := o.ops / o.workers
	var wg sync.WaitGroup
	for w := range o.workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range per {
				p := a.CreateConcurrent(sample{ID: uint64(w*per + i)})
				a.DestroyConcurrent(p)
			}
		}(w)
	}
	wg.Wait()
	printVerbose("  block-concurrent: %d blocks, %d CAS retries\n", a.BlockCount(), a.Stats().CASRetries)
	return per * o.workers, nil
}

func benchMPMC(o benchOptions) (int, error) {
	s := mpmc.New[sample]()
	per := o.ops / o.workers

	var wg sync.WaitGroup
	for w := range o.workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range per {
				s.Push(sample{ID: uint64(w*per + i)})
				if i%64 == 63 {
					s.Reclaim(s.Acquire())
				}
			}
		}(w)
	}
	wg.Wait()
	s.Reclaim(s.Acquire())

	st := s.Stats()
	printVerbose("  mpmc: %d nodes allocated, %d recycled\n", st.Allocated, st.Recycled)
	return per * o.workers, nil
}
