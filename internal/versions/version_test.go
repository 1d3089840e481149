package versions

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRelease(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version  string
		expected bool
	}{
		{version: "1.2.3", expected: true},
		{version: "v0.4.0", expected: true},
		{version: "1.0.0-rc.1", expected: false},
		{version: "build-abcdef12", expected: false},
		{version: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsRelease(tt.version))
		})
	}
}

func TestVersionInfo(t *testing.T) {
	t.Parallel()

	t.Run("release build", func(t *testing.T) {
		t.Parallel()

		info := versionInfo("v1.4.0", "0123456789abcdef", "2024-03-06T09:00:00Z", nil)

		assert.Equal(t, "v1.4.0", info.Version)
		assert.Equal(t, "0123456789abcdef", info.Commit)
		assert.Equal(t, "2024-03-06 09:00:00 UTC", info.BuildDate)
		assert.Equal(t, runtime.Version(), info.GoVersion)
		assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
		assert.True(t, info.Release)
	})

	t.Run("dev build reads vcs settings", func(t *testing.T) {
		t.Parallel()

		read := func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "fedcba9876543210"},
				{Key: "vcs.time", Value: "2024-02-01T10:30:00Z"},
			}}, true
		}

		info := versionInfo("dev", unknownStr, unknownStr, read)

		assert.Equal(t, "build-fedcba98", info.Version)
		assert.Equal(t, "fedcba9876543210", info.Commit)
		assert.Equal(t, "2024-02-01 10:30:00 UTC", info.BuildDate)
		assert.False(t, info.Release)
	})

	t.Run("unparseable build date is kept", func(t *testing.T) {
		t.Parallel()

		info := versionInfo("1.0.0", "abc", "yesterday", nil)
		assert.Equal(t, "yesterday", info.BuildDate)
	})
}

func TestUserAgent(t *testing.T) {
	t.Parallel()
	assert.Contains(t, UserAgent(), "wb-sync/")
}
