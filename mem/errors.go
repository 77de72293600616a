package mem

import "errors"

var (
	// ErrBadSize indicates a non-positive or overflowing buffer size.
	ErrBadSize = errors.New("mem: invalid size")

	// ErrBadAlignment indicates an alignment that is not a power of two.
	ErrBadAlignment = errors.New("mem: alignment must be a power of two")
)
