package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.NotEmpty(t, info.Commit)
	assert.NotEmpty(t, info.Date)
}

func TestFillVCS(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	t.Run("fills empty fields", func(t *testing.T) {
		var info Info
		info.fillVCS(settings)

		assert.Equal(t, "0123456789ab", info.Commit)
		assert.Equal(t, "2026-10-01T12:00:00Z", info.Date)
		assert.True(t, info.Dirty)
	})

	t.Run("ldflags win", func(t *testing.T) {
		info := Info{Commit: "abc1234", Date: "2026-01-01"}
		info.fillVCS(settings)

		assert.Equal(t, "abc1234", info.Commit)
		assert.Equal(t, "2026-01-01", info.Date)
	})
}

func TestInfo_String(t *testing.T) {
	info := Info{
		Version:   "1.2.0",
		Commit:    "abc1234",
		Date:      "2026-01-01",
		Dirty:     true,
		GoVersion: "go1.25.0",
		Platform:  "linux/amd64",
	}

	assert.Equal(t, "credcascade 1.2.0 (commit: abc1234-dirty, built: 2026-01-01, go1.25.0, linux/amd64)", info.String())
}

func TestInfo_JSON(t *testing.T) {
	data, err := json.Marshal(Info{Version: "dev", Commit: "unknown", Date: "unknown"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"version", "commit", "date", "go_version", "platform"} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "dirty", "clean builds omit the flag")
}
