package alloc

import (
	"errors"

	"github.com/joshuapare/memkit/internal/assert"
)

var (
	// ErrBadConfig indicates invalid constructor parameters (non-power-of-two
	// sizes, zero chunk counts, out-of-range decay, ...).
	ErrBadConfig = errors.New("alloc: invalid configuration")

	// ErrForeignPointer indicates a pointer that was not produced by the allocator
	// it is being returned to.
	ErrForeignPointer = errors.New("alloc: pointer does not belong to allocator")

	// ErrOutOfOrder indicates a stack deallocation that is not the most recent live allocation.
	ErrOutOfOrder = errors.New("alloc: deallocation out of LIFO order")

	// ErrEmpty indicates a deallocation against an allocator with no live allocations.
	ErrEmpty = errors.New("alloc: allocator has no live allocations")

	// ErrNilPointer indicates a nil pointer passed to Deallocate or Destroy.
	ErrNilPointer = errors.New("alloc: nil pointer")

	// ErrNotPointerFree indicates a type holding Go pointers, which cannot live in
	// memory the garbage collector does not scan.
	ErrNotPointerFree = errors.New("alloc: type contains Go pointers")

	// ErrBadSize indicates a deallocation size that differs from the allocation size.
	ErrBadSize = errors.New("alloc: size mismatch")

	// ErrBadAlignment indicates a requested alignment the allocator cannot honor.
	ErrBadAlignment = errors.New("alloc: unsupported alignment")
)

// ContractError is the panic value for allocator contract violations. Use
// errors.Is on it (it unwraps to one of the sentinels above) after recovering.
type ContractError = assert.ContractError
