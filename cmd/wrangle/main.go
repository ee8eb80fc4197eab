// Command wrangle acquires a tabular dataset, summarizes it and prepares
// scaled train, validate and test partitions for modelling.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/YuminosukeSato/wrangle/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("wrangle failed", log.ErrAttr(err))
		stop()
		os.Exit(1)
	}
}
