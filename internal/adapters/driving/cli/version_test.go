package cli

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string, info *debug.BuildInfo) {
	t.Helper()
	origVersion, origRead := version, readBuildInfo
	version = v
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
	t.Cleanup(func() {
		version, readBuildInfo = origVersion, origRead
	})
}

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.Equal(t, "Print the version number", versionCmd.Short)
}

func TestVersionCmd_WithBuildInfo(t *testing.T) {
	withVersion(t, "1.4.0", &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.modified", Value: "true"},
	}})

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "leadsync version 1.4.0")
	assert.Contains(t, out, "commit: 0123456789ab (modified)")
	assert.Contains(t, out, "go: "+runtime.Version())
}

func TestVersionCmd_WithoutBuildInfo(t *testing.T) {
	withVersion(t, "dev", nil)

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "leadsync version dev")
	assert.NotContains(t, out, "commit:")
}

func TestVersionCmd_Short(t *testing.T) {
	withVersion(t, "1.4.0", nil)

	out, err := execute(t, "version", "--short")

	require.NoError(t, err)
	assert.Equal(t, "1.4.0\n", out)
}
