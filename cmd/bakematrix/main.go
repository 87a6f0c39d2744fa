package main

import (
	"bakematrix/internal/cli"
	_ "bakematrix/internal/checks/layout"
)

// These variables are populated by the build via -ldflags, e.g.
// -X main.version=v1.0.0 -X main.commit=$(git rev-parse --short HEAD).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	cli.Execute()
}
