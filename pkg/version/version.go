// Package version reports which build of wfkit is running.
//
// Release builds stamp the values with ldflags:
//
//	-ldflags "-X github.com/Aman-CERP/wfkit/pkg/version.Version=1.0.0
//	          -X github.com/Aman-CERP/wfkit/pkg/version.Commit=abc1234"
//
// Binaries built with "go install" fall back to the module version and VCS
// stamps the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

const unknown = "unknown"

var (
	Version   = "dev"
	Commit    = unknown
	Date      = unknown
	GoVersion = runtime.Version()
)

// BuildInfo is what "wfkit version --json" prints.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

var fillOnce sync.Once

// fill replaces unstamped values with the toolchain's build information.
func fill() {
	fillOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		fromBuildInfo(info)
	})
}

func fromBuildInfo(info *debug.BuildInfo) {
	if Version == "dev" {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			Version = strings.TrimPrefix(v, "v")
		}
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && Commit == unknown:
			Commit = shortCommit(s.Value)
		case s.Key == "vcs.time" && Date == unknown:
			Date = s.Value
		}
	}
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// String is the one-line description printed by "wfkit version".
func String() string {
	fill()
	return fmt.Sprintf("wfkit %s (commit: %s, built: %s, go: %s)", Version, Commit, Date, GoVersion)
}

// Short returns the bare version number.
func Short() string {
	fill()
	return Version
}

// UserAgent identifies wfkit in HTTP requests, e.g. "wfkit/1.0.0 (darwin/arm64)".
func UserAgent() string {
	fill()
	return fmt.Sprintf("wfkit/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}

// GetInfo returns the build description for the current platform.
func GetInfo() BuildInfo {
	fill()
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
