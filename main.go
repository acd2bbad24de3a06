// Command dirmap maps the disk usage of a directory tree as a treemap.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/idelchi/dirmap/internal/cli"
)

// version is set at build time.
//
//nolint:gochecknoglobals // Build-time variable
var version = "unknown - unofficial & generated by unknown"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.New(version).Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
