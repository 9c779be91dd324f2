// Package main provides the entry point for the forge CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/forge/internal/cli"
)

// Set by the release build via -ldflags "-X main.version=...".
//
//nolint:gochecknoglobals // build-time values
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	os.Exit(cli.ExitCodeForError(err))
}
