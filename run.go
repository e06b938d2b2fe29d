package compiledriver

import (
	"context"

	"github.com/gprtools/compiledriver/internal/model"
	"github.com/gprtools/compiledriver/internal/oninterrupt"
	"github.com/gprtools/compiledriver/internal/phase"
	"github.com/gprtools/compiledriver/internal/queue"
	"github.com/gprtools/compiledriver/internal/tempfile"
)

// Run drives the compilation phase over tree's entries under opts: it
// owns the temp-file registry for the whole invocation (response,
// mapping and config files created along the way), registers that
// registry's Close as the hard-interrupt cleanup callback, and reclaims
// it on every return path unless KeepTemporaryFiles was requested.
//
// invocationFor resolves the per-source switches the (out of scope)
// project-description layer would otherwise supply; callers without one
// yet can pass a func that always returns an empty cmdline.Invocation.
func Run(ctx context.Context, tree *model.Tree, entries []queue.Entry, opts Options, invocationFor phase.InvocationFunc) (*phase.Result, error) {
	reg := tempfile.New(opts.KeepTemporaryFiles)
	oninterrupt.Register(func() { reg.Close() })
	defer reg.Close()

	return phase.Run(ctx, tree, reg, entries, phase.Options{
		MaxParallelism:             opts.MaxParallelism,
		KeepGoing:                  opts.KeepGoing,
		CheckSwitches:              opts.CheckSwitches,
		AlwaysCompile:              opts.AlwaysCompile,
		IndirectImports:            opts.IndirectImports,
		NoSplitUnits:               opts.NoSplitUnits,
		WindowsMakefile:            opts.WindowsMakefile,
		UseIncludePathFile:         opts.UseIncludePathFile,
		DisplayCompilationProgress: opts.DisplayCompilationProgress,
	}, invocationFor)
}
