//go:build !memkit_unchecked

package assert

// Enabled selects the checked code path. Build with -tags memkit_unchecked to
// compile contract checks out of the allocators.
const Enabled = true
