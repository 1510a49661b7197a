package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lucas-albers-lz4/uptag/pkg/exitcodes"
	"github.com/lucas-albers-lz4/uptag/pkg/log"
)

// main runs the root command under an interrupt-aware context and turns the
// returned error into the process exit code. Check outcomes (codes 0-3) exit
// silently because the report has already been written; real errors are
// logged before exiting.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := Execute(ctx)
	if err == nil {
		return
	}

	code, ok := exitcodes.IsExitCodeError(err)
	if !ok {
		// Errors without an exit code come from cobra's flag and argument
		// parsing.
		log.Error("command failed", "error", err)
		os.Exit(exitcodes.ExitInputConfigurationError)
	}
	if code > exitcodes.ExitCheckFailures {
		log.Error("command failed", "error", err)
	}
	os.Exit(code)
}
