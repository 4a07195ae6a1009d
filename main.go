// File: main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/autoedu/autoedu-cli/cmd"
	"github.com/autoedu/autoedu-cli/internal/observability"
)

func main() {
	// Ctrl+C aborts the run between records; the session teardown and
	// the partial report still happen on the way out.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
