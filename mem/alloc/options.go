package alloc

import (
	"fmt"

	"github.com/joshuapare/memkit/mem"
)

// BufferOptions selects the memory behind a single-buffer allocator.
// Buffer, when non-nil, is used as-is and never released by the allocator.
type BufferOptions struct {
	Size       int
	Alignment  int
	Buffer     []byte
	PageBacked bool
	Prefault   bool
}

func (o BufferOptions) open() (*mem.Buffer, error) {
	if o.Buffer != nil {
		b, err := mem.Provide(o.Buffer)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadConfig, err)
		}
		return b, nil
	}
	b, err := mem.AllocateWithOptions(o.Size, mem.Options{
		Alignment:  o.Alignment,
		PageBacked: o.PageBacked,
		Prefault:   o.Prefault,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadConfig, err)
	}
	return b, nil
}

// normalizeAlign maps 0 to the default alignment and reports whether the
// result is usable.
func normalizeAlign(align int) (int, bool) {
	if align == 0 {
		return mem.DefaultAlignment, true
	}
	return align, mem.IsPowerOfTwo(align)
}
