package main

import (
	"github.com/docshot/docshot/cmd/docshot/cmd"
	ver "github.com/docshot/docshot/internal/version"
)

// Build-time variables set by ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	if version != "" {
		ver.Version, ver.GitCommit, ver.BuildDate = version, commit, date
	}
	cmd.Execute()
}
