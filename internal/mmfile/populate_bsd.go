//go:build darwin || freebsd

package mmfile

import "golang.org/x/sys/unix"

// populate hints the kernel and then touches every page.
func populate(data []byte) error {
	// WILLNEED is advisory; a failure here is not fatal.
	_ = unix.Madvise(data, unix.MADV_WILLNEED)
	touch(data)
	return nil
}
