// Package version reports the build identity of the kartlytics binary.
package version

import (
	"runtime/debug"
)

const unknown = "unknown"

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/Sumatoshi-tech/kartlytics/pkg/version.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills metadata the linker did not set from the module
// build info embedded by the Go toolchain.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown && setting.Value != "" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == unknown && setting.Value != "" {
				Date = setting.Value
			}
		}
	}
}

// String returns the one-line version banner.
func String() string {
	return "kartlytics " + Version + " (commit: " + Commit + ", built: " + Date + ")"
}
