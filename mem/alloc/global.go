package alloc

import (
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultChunksPerBlock is used by the package-level B* helpers.
const DefaultChunksPerBlock = 64

type registryKey struct {
	typ reflect.Type
	cpb int
}

// resetter is the type-erased view of a *BlockAllocator[T] the registry keeps.
type resetter interface {
	Reset()
	Allocations() int
}

// Registry lazily creates one BlockAllocator per (type, chunks per block)
// pair. It is safe for concurrent use. Pass a Registry to the code that needs
// shared allocators, or use the process-wide one behind GlobalBlock.
type Registry struct {
	m *xsync.MapOf[registryKey, resetter]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{m: xsync.NewMapOf[registryKey, resetter]()}
}

var global = NewRegistry()

// RegistryBlock returns r's allocator for T, creating it on first use.
// Concurrent first calls all receive the same instance.
func RegistryBlock[T any](r *Registry, chunksPerBlock int) (*BlockAllocator[T], error) {
	key := registryKey{typ: reflect.TypeFor[T](), cpb: chunksPerBlock}
	if v, ok := r.m.Load(key); ok {
		return v.(*BlockAllocator[T]), nil
	}

	var err error
	v, _ := r.m.Compute(key, func(old resetter, loaded bool) (resetter, bool) {
		if loaded {
			return old, false
		}
		a, nerr := NewBlock[T](chunksPerBlock)
		if nerr != nil {
			err = nerr
			return nil, true
		}
		return a, false
	})
	if err != nil {
		return nil, err
	}
	return v.(*BlockAllocator[T]), nil
}

// Len returns the number of allocators in the registry.
func (r *Registry) Len() int { return r.m.Size() }

// Reset resets and drops every allocator. Pointers obtained from them must
// not be used afterwards.
func (r *Registry) Reset() {
	r.m.Range(func(key registryKey, a resetter) bool {
		a.Reset()
		r.m.Delete(key)
		return true
	})
}

// GlobalBlock returns the process-wide allocator for T.
func GlobalBlock[T any](chunksPerBlock int) (*BlockAllocator[T], error) {
	return RegistryBlock[T](global, chunksPerBlock)
}

// MustGlobalBlock is GlobalBlock that panics on error.
func MustGlobalBlock[T any](chunksPerBlock int) *BlockAllocator[T] {
	a, err := GlobalBlock[T](chunksPerBlock)
	if err != nil {
		panic(fmt.Sprintf("alloc: global block allocator for %v: %v", reflect.TypeFor[T](), err))
	}
	return a
}

// ResetGlobal tears down the process-wide registry. Call it only once every
// goroutine using global allocators has stopped.
func ResetGlobal() { global.Reset() }

// BCreate stores v in a chunk from the global allocator for T using the
// lock-free path.
func BCreate[T any](v T) *T {
	return MustGlobalBlock[T](DefaultChunksPerBlock).CreateConcurrent(v)
}

// BDestroy returns p to the global allocator for T using the lock-free path.
func BDestroy[T any](p *T) {
	MustGlobalBlock[T](DefaultChunksPerBlock).DestroyConcurrent(p)
}

// BCreateSerial is BCreate for callers that never share the global allocator
// for T across goroutines.
func BCreateSerial[T any](v T) *T {
	return MustGlobalBlock[T](DefaultChunksPerBlock).CreateSerial(v)
}

// BDestroySerial is BDestroy for callers that never share the global allocator
// for T across goroutines.
func BDestroySerial[T any](p *T) {
	MustGlobalBlock[T](DefaultChunksPerBlock).DestroySerial(p)
}
