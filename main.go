package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fredyk/entrytracker/tracker"
)

func main() {
	app, err := tracker.New(tracker.Options{
		WatchConfig: true,
	})
	if err != nil {
		slog.Error("could not load configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = app.Boot(ctx)
	if err != nil {
		app.Logger().Error("could not boot server", "err", err)
		os.Exit(1)
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		if err := app.Stop(); err != nil {
			app.Logger().Error("error while stopping server", "err", err)
		}
	}()

	app.Logger().Info("entrytracker listening", "port", app.Port())
	if err := app.Start(); err != nil {
		app.Logger().Error("server stopped", "err", err)
		os.Exit(1)
	}

	// Start returns as soon as the listener closes; wait for the datasource
	// to disconnect before exiting.
	stop()
	<-stopped
}
