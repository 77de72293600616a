//go:build linux

package mmfile

import (
	"errors"

	"golang.org/x/sys/unix"
)

// populate pre-faults the mapping. MADV_POPULATE_WRITE is available since
// Linux 5.14; older kernels report EINVAL and fall back to touching each page.
func populate(data []byte) error {
	err := unix.Madvise(data, unix.MADV_POPULATE_WRITE)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.EINVAL) && !errors.Is(err, unix.ENOSYS) {
		return err
	}
	touch(data)
	return nil
}
