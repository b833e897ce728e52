package main

import (
	"context"
	"log/slog"
	"time"

	"oralia-konnector/cmd/oralia/commands"
	"oralia-konnector/internal/telemetry"
	"oralia-konnector/lib/serviceutil"
)

func shutdown(tel telemetry.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := tel.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to shutdown telemetry", "err", err)
	}
}

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()

	tel, err := telemetry.SetupFromEnv(ctx, "oralia")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err, cancel)
	}

	err = commands.NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		// spans of a failed run are flushed before exiting
		serviceutil.Fatal("oralia failed", err, cancel, func() { shutdown(tel) })
	}
	shutdown(tel)
}
