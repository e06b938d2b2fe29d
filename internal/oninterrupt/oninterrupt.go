// Package oninterrupt runs registered cleanup callbacks on a hard SIGINT,
// the forceful-exit complement to compiledriver.InterruptibleContext's
// graceful drain: compiledriver.Run registers the temp-file registry's
// Close here so a second Ctrl-C during a stuck drain still reclaims
// response, mapping and config files before the process dies. The first
// SIGINT is left to the graceful drain.
package oninterrupt

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// onInterrupt allows callers to register cleanup handlers which shall be
// run on receiving a second SIGINT, e.g. reclaiming temp files registered with
// internal/tempfile.
var (
	onInterruptMu sync.Mutex
	onInterrupt   []func()
)

func init() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c // the first interrupt is the graceful drain's
		signal := <-c
		onInterruptMu.Lock()
		for _, f := range onInterrupt {
			f()
		}
		onInterruptMu.Unlock()
		// TODO: replace by cancelling a context:
		// https://medium.com/@matryer/make-ctrl-c-cancel-the-context-context-bd006a8ad6ff
		if sig, ok := signal.(*syscall.Signal); ok {
			os.Exit(128 + int(*sig))
		}
		os.Exit(1) // generic EXIT_FAILURE
	}()
}

func Register(cb func()) {
	onInterruptMu.Lock()
	defer onInterruptMu.Unlock()
	onInterrupt = append(onInterrupt, cb)
}
