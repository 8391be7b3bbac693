package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastertools/modelschemas/internal/cli"
)

// Version information set at build time
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Set version information for commands to use
	cli.SetVersion(version, commit, buildDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute the root command
	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
