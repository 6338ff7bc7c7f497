// Package main is the entry point for the kconsole CLI.
//
// kconsole creates and inspects cluster resources from the terminal:
// guided wizards for virtual machines and event sources, responsive
// list and detail views, and YAML import.
//
// Commands: create, list, get, apply, version, completion.
//
// For detailed usage information, run:
//
//	kconsole --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/kconsole/cmd/kconsole/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
