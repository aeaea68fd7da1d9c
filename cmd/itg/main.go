package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	Execute()
}

// versionString reports the release info, falling back to the module
// version embedded by `go install` when no ldflags were passed.
func versionString() string {
	v, c := version, commit
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return fmt.Sprintf("itg %s (%s, %s, %s)", v, c[:min(7, len(c))], date, runtime.Version())
}
