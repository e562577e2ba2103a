// FILE: fieldwisp/src/internal/version/version.go
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is set at compile time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String returns the version line printed by the version command
func String() string {
	return fmt.Sprintf("fieldwisp %s (commit: %s, built: %s, %s)", Short(), commit(), BuildTime, runtime.Version())
}

// Short returns just the version tag
func Short() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// commit falls back to the VCS stamp embedded by the go tool
func commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return GitCommit
}
