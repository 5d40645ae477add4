// Command fetch decomposes URLs and sends HTTP/1.1 requests from the
// command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/adamwoolhether/fetch/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// cobra reports the error on stderr.
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
