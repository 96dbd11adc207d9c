package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stamp sets the ldflags variables for one test.
func stamp(t *testing.T, version, commit, date string) {
	t.Helper()
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = oldVersion, oldCommit, oldDate })
}

func TestFromBuildInfo(t *testing.T) {
	gitStamps := []debug.BuildSetting{
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2025-06-01T10:00:00Z"},
	}

	// version, commit, date
	type stamps [3]string
	dev := stamps{"dev", unknown, unknown}

	tests := []struct {
		name     string
		stamped  stamps
		main     string
		settings []debug.BuildSetting
		want     stamps
	}{
		{"go install of a tagged module", dev, "v1.4.0", gitStamps,
			stamps{"1.4.0", "0123456", "2025-06-01T10:00:00Z"}},
		{"local build keeps dev", dev, "(devel)", nil, dev},
		{"ldflags win", stamps{"2.0.0", "feedbee", "2025-01-01"}, "v1.4.0", gitStamps,
			stamps{"2.0.0", "feedbee", "2025-01-01"}},
		{"short revision kept whole", dev, "", []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}},
			stamps{"dev", "abc", unknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp(t, tt.stamped[0], tt.stamped[1], tt.stamped[2])

			fromBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: tt.main}, Settings: tt.settings})

			assert.Equal(t, tt.want, stamps{Version, Commit, Date})
		})
	}
}

func TestDescriptions(t *testing.T) {
	// Given: a stamped release build
	stamp(t, "1.2.3", "abc1234", "2025-06-01")

	// Then: every description reports it
	assert.Equal(t, "wfkit 1.2.3 (commit: abc1234, built: 2025-06-01, go: "+runtime.Version()+")", String())
	assert.Equal(t, "1.2.3", Short())
	assert.Equal(t, "wfkit/1.2.3 ("+runtime.GOOS+"/"+runtime.GOARCH+")", UserAgent())
	assert.Equal(t, BuildInfo{
		Version:   "1.2.3",
		Commit:    "abc1234",
		Date:      "2025-06-01",
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}, GetInfo())
}
