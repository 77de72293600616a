package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledDiscards(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	Init(Options{Enabled: false})
	// Nothing to observe; the call must simply not panic.
	Warn("discarded", "k", 1)
}

func TestInitTextLevelFiltering(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	var out bytes.Buffer
	Init(Options{Enabled: true, Output: &out})

	Info("hidden")
	Warn("shown", "size", 64)

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
	assert.Contains(t, out.String(), "size=64")
}

func TestInitInfoLevel(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	var out bytes.Buffer
	Init(Options{Enabled: true, Output: &out, Level: slog.LevelInfo})
	Debug("hidden")
	Info("hello", "tier", 3)

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "msg=hello")
	assert.Contains(t, out.String(), "tier=3")
}

func TestInitJSON(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	var out bytes.Buffer
	Init(Options{Enabled: true, Output: &out, Level: slog.LevelDebug, JSON: true})
	Debug("record", "align", 16)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "record", rec["msg"])
	assert.EqualValues(t, 16, rec["align"])
}
