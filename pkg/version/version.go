// Package version holds build metadata for the exprgraph binaries.
package version

import (
	"fmt"
	"runtime/debug"
)

// Build metadata, overridden with -ldflags "-X" at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	revisionKey = "vcs.revision"
	timeKey     = "vcs.time"
	develModule = "(devel)"
	shortCommit = 12
)

// InitBinaryVersion fills unset metadata from the embedded build info so that
// "go install" builds report something useful.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != develModule {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case revisionKey:
			if Commit == "none" && setting.Value != "" {
				Commit = setting.Value
				if len(Commit) > shortCommit {
					Commit = Commit[:shortCommit]
				}
			}
		case timeKey:
			if Date == "unknown" && setting.Value != "" {
				Date = setting.Value
			}
		}
	}
}

// String formats the metadata for the version command.
func String(binary string) string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s)", binary, Version, Commit, Date)
}
