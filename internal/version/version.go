package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags at release build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns formatted version information. For non-release builds it
// falls back to the module version recorded by the Go toolchain.
func Info() string {
	return fmt.Sprintf("shadow-detect %s (%s) built on %s with %s",
		Short(), Commit, Date, runtime.Version())
}

// Short returns just the version string.
func Short() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}
