// Command worker runs the Queue Dispatcher pool only (spec.md §4.2),
// with no HTTP surface. Shuts down gracefully on SIGINT/SIGTERM,
// letting any in-flight job finish (spec.md "Shutdown").
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopfloor-ops/shopcore/internal/app"
	"github.com/shopfloor-ops/shopcore/internal/jobs/dispatcher"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Log.Info("worker starting", "worker_id", a.Cfg.WorkerID, "worker_count", a.Cfg.WorkerCount)
	if err := dispatcher.RunGroup(ctx, a.Dispatchers); err != nil {
		a.Log.Error("dispatcher group exited", "error", err)
		os.Exit(1)
	}
}
