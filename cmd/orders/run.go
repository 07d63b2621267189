package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/fx"
)

// run starts the orders service, blocks until a signal or an fx shutdown
// request arrives, then stops it within the app's stop timeout. It returns
// the process exit code.
func run(ctx context.Context, app *fx.App, stderr io.Writer) int {
	startCtx, cancelStart := context.WithTimeout(ctx, app.StartTimeout())
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintf(stderr, "orders: start failed: %v\n", err)
		return 1
	}

	select {
	case <-ctx.Done():
	case sig := <-app.Done():
		fmt.Fprintf(stderr, "orders: shutting down on %v\n", sig)
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(stderr, "orders: stop failed: %v\n", err)
		return 1
	}
	return 0
}
