package main

import (
	"encoding/json"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVersionFromBuildInfo(t *testing.T) {
	info := &debug.BuildInfo{
		GoVersion: "go1.25.3",
		Main:      debug.Module{Path: "github.com/joshuapare/memkit", Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		},
	}

	v := resolveVersion(info, true)
	assert.Equal(t, "v0.3.1", v.Version)
	assert.Equal(t, "abc123", v.Commit)
	assert.Equal(t, "2026-10-01T12:00:00Z", v.Built)
	assert.Equal(t, "go1.25.3", v.GoVersion)
}

func TestResolveVersionPrefersLinkerValues(t *testing.T) {
	orig := version
	version = "v1.0.0"
	t.Cleanup(func() { version = orig })

	info := &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}
	v := resolveVersion(info, true)
	assert.Equal(t, "v1.0.0", v.Version)
	assert.Equal(t, "none", v.Commit)

	v = resolveVersion(nil, false)
	assert.Equal(t, "v1.0.0", v.Version)
	assert.Empty(t, v.GoVersion)
}

func TestVersionJSON(t *testing.T) {
	withJSON(t)

	out, err := captureOutput(t, runVersion)
	require.NoError(t, err)

	var v VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.NotEmpty(t, v.Version)
	assert.NotEmpty(t, v.Commit)
}
