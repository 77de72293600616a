package alloc

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	checks "github.com/joshuapare/memkit/internal/assert"
	"github.com/joshuapare/memkit/mem"
)

// requireContract runs fn and requires it to panic with a *ContractError
// wrapping want. Skips when checks are compiled out.
func requireContract(t *testing.T, want error, fn func()) {
	t.Helper()
	if !checks.Enabled {
		t.Skip("contract checks compiled out")
	}
	ce := checks.Catch(fn)
	require.NotNil(t, ce, "expected a contract violation")
	require.ErrorIs(t, ce, want)
}

// captureLogs routes allocator logging into a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	mem.SetLogger(slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { mem.SetLogger(nil) })
	return &out
}

// quiet discards allocator logging for the rest of the test.
func quiet(t *testing.T) {
	t.Helper()
	_ = captureLogs(t)
}
