// Vapixctl queries and configures Axis network devices over VAPIX.
//
// It finds devices on the local network, lists the APIs and parameters they
// offer, updates parameters, inspects disks and application support, and
// records the fixtures that the offline tests replay.
//
// Usage:
//
//	vapixctl [command] [flags]
//
// See 'vapixctl --help' for available commands.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/muurk/vapix/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		reportError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}
