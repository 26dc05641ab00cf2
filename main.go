package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"veritas-console/cmd"
)

// Populated at release time via -ldflags "-X main.Version=... -X main.BuildTime=...".
var (
	Version   = "dev"
	BuildTime = ""
)

func main() {
	cmd.SetVersion(Version, BuildTime)

	// Ctrl-C cancels the root context so long-running commands (console,
	// watch) unwind cleanly instead of dying mid-request.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
