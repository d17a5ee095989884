// Where: internal/version/version.go
// What: Version information retrieval.
// Why: Surface build-time VCS information through the version command.
package version

import (
	"fmt"
	"runtime/debug"
)

// GetVersion returns the version string derived from build info: the short
// VCS revision, with a "(dirty)" suffix when the tree was modified. It
// returns "dev" when no build info or revision is available.
func GetVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	revision := ""
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = shortRevision(setting.Value)
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}

func shortRevision(revision string) string {
	if len(revision) > 7 {
		return revision[:7]
	}
	return revision
}
