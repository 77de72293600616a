// Package assert implements the contract checks used by the allocators.
//
// Call sites guard every check with the Enabled constant so the unchecked
// build removes both the condition and the message formatting:
//
//	if assert.Enabled && !a.Belongs(p) {
//	    assert.Fail("alloc.Tier.Deallocate", ErrForeignPointer, "pointer %p", p)
//	}
package assert

import "fmt"

// ContractError is the panic value raised when a caller violates an allocator
// contract (double free, out-of-order stack free, foreign pointer, ...).
// It is distinct from recoverable allocation failure, which is reported by a
// nil result.
type ContractError struct {
	Op     string // operation that detected the violation
	Err    error  // sentinel describing the violation class
	Detail string // formatted context
}

func (e *ContractError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Detail)
}

func (e *ContractError) Unwrap() error { return e.Err }

// Fail panics with a *ContractError.
func Fail(op string, err error, format string, args ...any) {
	panic(&ContractError{Op: op, Err: err, Detail: fmt.Sprintf(format, args...)})
}

// Catch runs fn and returns the *ContractError it panicked with, or nil.
// Other panics propagate.
func Catch(fn func()) (ce *ContractError) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*ContractError)
			if !ok {
				panic(r)
			}
			ce = e
		}
	}()
	fn()
	return nil
}
