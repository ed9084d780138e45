// Command server runs the HTTP surface only (spec.md §6). Run the
// worker binary separately to process jobs.
package main

import (
	"fmt"
	"os"

	"github.com/shopfloor-ops/shopcore/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	fmt.Printf("server listening on %s\n", a.Cfg.HTTPAddr)
	if err := a.Run(a.Cfg.HTTPAddr); err != nil {
		a.Log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
