package main

import (
	"github.com/bnema/shade/internal/cli/cmd"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetBuildInfo(version, commit, buildDate)
	cmd.Execute()
}
