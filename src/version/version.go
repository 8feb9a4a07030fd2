// Package version reports which forksync build is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/vidaislive/forksync/src/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Resolved returns Version, or the module version recorded by `go install`
// when no version was linked in.
func Resolved() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}

// String is the line printed by `forksync version`.
func String() string {
	return fmt.Sprintf("forksync %s (commit %s, built %s, %s)", Resolved(), Commit, BuildDate, runtime.Version())
}
