package version

import "fmt"

// Version contains the application version information.
// Set via build-time ldflags in releases:
// go build -ldflags "-X git.home.luguber.info/inful/figicons/internal/version.Version=v0.3.0".
var Version = "dev"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the line printed by --version.
func String() string {
	return fmt.Sprintf("figicons %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
