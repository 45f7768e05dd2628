// Command splitter validates experiment definitions and simulates traffic
// against the assignment engine.
//
// Usage:
//
//	splitter validate -f experiments.yaml
//	splitter simulate -f experiments.yaml --users 50000 --rate control=0.10 --rate treatment=0.12
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
