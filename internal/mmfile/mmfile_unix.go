//go:build linux || darwin || freebsd

// Package mmfile provides platform-specific helpers for page-backed anonymous memory.
package mmfile

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Supported reports whether Map returns memory obtained directly from the OS.
const Supported = true

// PageSize returns the OS page size.
func PageSize() int {
	return unix.Getpagesize()
}

// Map maps size bytes of anonymous, private, read-write memory. The mapping is
// page aligned and lives outside the Go heap, so it is never scanned or moved.
// When prefault is set every page is touched up front.
func Map(size int, prefault bool) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmfile: invalid mapping size %d", size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: mmap %d bytes: %w", size, err)
	}
	if prefault {
		if err := populate(data); err != nil {
			_ = unix.Munmap(data)
			return nil, nil, fmt.Errorf("mmfile: prefault: %w", err)
		}
	}
	cleanup := func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		data = nil
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return data, cleanup, nil
}

// touch writes one byte per page so the kernel backs the whole mapping.
func touch(data []byte) {
	step := PageSize()
	for i := 0; i < len(data); i += step {
		data[i] = 0
	}
}
