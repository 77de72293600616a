// Package alloc provides special-purpose allocators over aligned buffers.
//
// # Allocators
//
// Arena: bump allocator over one buffer
//
//   - Allocate carves from the tail; no individual free
//   - Reset forgets everything in O(1)
//   - Belongs only covers the allocated prefix
//
// Stack: LIFO allocator over one buffer
//
//   - Every allocation pushes an Entry (bounded by MaxEntries)
//   - Only the most recent live allocation may be freed
//   - Scope pops whatever a callback left behind
//
// BlockAllocator[T]: growing pool of fixed-size chunks
//
//   - Serial methods for single-goroutine use
//   - Concurrent methods are lock-free (compare-and-swap loops)
//   - Blocks are only released by Reset
//
// Tier: slab allocator with a closed-form size-to-tier mapping
//
//   - CreateDescription computes the tier layout from four parameters
//   - Allocate and Deallocate are O(1); exhausted tiers fail the request
//
// # Usage Example
//
//	arena, err := alloc.NewArena(64<<10, 64)
//	if err != nil {
//	    return err
//	}
//	defer arena.Release()
//
//	v := alloc.Create(arena, Vec3{X: 1, Y: 2, Z: 3})
//	if v == nil {
//	    // arena exhausted
//	}
//
//	pool, err := alloc.NewBlock[Particle](256)
//	if err != nil {
//	    return err
//	}
//	p := pool.CreateConcurrent(Particle{})
//	defer pool.DestroyConcurrent(p)
//
// # Failure model
//
// Running out of memory is not an error: Allocate and Create return nil and
// Arena, Stack and Tier log a warning. Breaking an allocator contract (freeing
// a foreign pointer, freeing a stack allocation out of order, freeing into an
// empty allocator) panics with a *ContractError that unwraps to one of the
// sentinel errors. Building with -tags memkit_unchecked removes those checks.
// Misconfiguration at construction is returned as an error wrapping
// ErrBadConfig.
//
// # Memory and the garbage collector
//
// Allocator memory is a []byte or an anonymous mapping, which the collector
// never scans. Only pointer-free types may be stored in it: Create,
// NewBlock and friends reject types holding strings, slices, maps, interfaces
// or pointers.
package alloc
