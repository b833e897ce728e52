package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context that is cancelled on Ctrl+C or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

var defaultExit = os.Exit

var exit = defaultExit

// Fatal logs err, runs cleanups in order and exits with status 1. Deferred
// functions do not run on exit, anything that must be flushed goes in
// cleanups.
func Fatal(message string, err error, cleanups ...func()) {
	slog.Error(message, "err", err.Error())
	for _, cleanup := range cleanups {
		cleanup()
	}
	exit(1)
}
