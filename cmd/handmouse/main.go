// Command handmouse drives the mouse, brightness and volume from hand
// gestures seen by a webcam.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "handmouse:", err)
		stop()
		os.Exit(1)
	}
}
