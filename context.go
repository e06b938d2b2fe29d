// Package compiledriver drives the compilation phase of a resolved
// multi-language project tree: it decides which sources need rebuilding,
// spawns compiler processes under a concurrency cap, parses the dependency
// output each compiler produces, and validates cross-project import
// legality.
package compiledriver

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// InterruptibleContext returns a context which is canceled when the process
// receives SIGINT or SIGTERM. The supervisor (internal/supervisor) only
// consults ctx.Err() between spawns — it never kills an in-flight compiler,
// per the no-mid-compile-cancellation rule.
func InterruptibleContext() (context.Context, context.CancelFunc) {
	ctx, canc := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		// A second signal terminates immediately, in case draining hangs.
		signal.Stop(sig)
		canc()
	}()
	return ctx, canc
}
