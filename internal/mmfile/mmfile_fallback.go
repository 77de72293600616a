//go:build !linux && !darwin && !freebsd

// Package mmfile provides platform-specific helpers for page-backed anonymous memory.
package mmfile

import (
	"fmt"
	"os"
)

// Supported reports whether Map returns memory obtained directly from the OS.
const Supported = false

// PageSize returns the OS page size.
func PageSize() int {
	return os.Getpagesize()
}

// Map allocates from the Go heap when anonymous mappings are not available.
// The result is not guaranteed to be page aligned.
func Map(size int, _ bool) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmfile: invalid mapping size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}
