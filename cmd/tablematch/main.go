// Command tablematch reconciles two tabular datasets under a declared
// column mapping and writes a match report.
package main

import "github.com/tablematch/tablematch/cmd/tablematch/cmd"

// Version information set by the build system via ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
