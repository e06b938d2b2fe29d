// Package supervisor implements the bounded-parallelism compile loop: at
// most MaxParallelism processes running at once, at most one per object
// directory (enforced by internal/queue itself), keep-going or fail-fast
// on the first error.
//
// Queue.Queue assumes a single owner and no concurrent access, so
// Extract/MarkFree/Insert only ever run on the one dispatcher goroutine
// inside Run. Spawned compiles run on their own goroutines, collected
// with an errgroup.Group, one errgroup goroutine per in-flight compile
// rather than one per permanent worker slot, since slots come and go with
// the queue's busy-directory bookkeeping. Under fail-fast (!KeepGoing), a
// compile's error propagates through the errgroup and cancels its derived
// context; OSSpawner consults that context only before starting a process,
// so the cancellation stops compiles that have not started yet and never
// kills one already running. The loop waits for every in-flight compile
// before it returns.
package supervisor

import (
	"context"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/gprtools/compiledriver/internal/queue"
)

// Job is one compile to run: the argv and environment overrides an
// internal/cmdline.Plan already resolved, carried alongside the queue
// entry it was built for.
type Job struct {
	Entry queue.Entry
	Argv  []string
	Env   map[string]string
}

// Spawner runs a Job's process to completion. OSSpawner is the production
// implementation; tests inject a fake that never touches the filesystem.
type Spawner interface {
	Spawn(ctx context.Context, job Job) error
}

// Result is one job's outcome, handed back to onResult on the supervisor
// goroutine — never concurrently, so callers may freely mutate shared
// state (mapping-file pools, the temp-file registry, bad_compilations
// bookkeeping) without a lock.
type Result struct {
	Entry   queue.Entry
	Err     error
	Skipped bool
}

// Options controls the loop's two user-facing knobs.
type Options struct {
	MaxParallelism int
	KeepGoing      bool

	// Abort, when non-nil, is polled between dispatch attempts. A true
	// result forces an immediate drain (no new work pulled) regardless of
	// KeepGoing — for error kinds the caller always treats as fatal (a
	// missing dependency extractor, a switches-file write failure)
	// rather than ones keep-going is allowed to run past.
	Abort func() bool
}

// JobFunc builds the next Job for an extracted entry. A JobFunc returning
// ok=false means the entry turned out not to need compiling after all
// (the staleness oracle says it's up-to-date); the entry is dropped
// without ever reaching onResult as a spawned job, but onResult still
// fires once with Result.Skipped set, so post-compile bookkeeping that
// must run for every entry (e.g. continuing a dependency-closure walk)
// has a single place to live.
type JobFunc func(ctx context.Context, e queue.Entry) (job Job, ok bool, err error)

// OnResult receives each job's outcome. It runs synchronously on the
// supervisor goroutine.
type OnResult func(Result)

// Run drains q to completion (or to the first error, if !opts.KeepGoing),
// running up to opts.MaxParallelism jobs concurrently.
func Run(ctx context.Context, q *queue.Queue, opts Options, spawner Spawner, jobFor JobFunc, onResult OnResult) error {
	maxParallelism := opts.MaxParallelism
	if maxParallelism < 1 {
		maxParallelism = 1
	}

	eg, egCtx := errgroup.WithContext(ctx)
	done := make(chan Result)
	running := 0
	var firstErr error

	mustExitBecauseOfError := func() bool {
		if opts.Abort != nil && opts.Abort() {
			return true
		}
		return firstErr != nil && !opts.KeepGoing
	}

	startCompileIfPossible := func() (stop bool) {
		for !mustExitBecauseOfError() && running < maxParallelism {
			e, ok := q.Extract()
			if !ok {
				return false
			}

			job, shouldCompile, err := jobFor(egCtx, e)
			if err != nil {
				q.MarkFree(queue.ObjectDir(e))
				if firstErr == nil {
					firstErr = err
				}
				if !opts.KeepGoing {
					return true
				}
				continue
			}
			if !shouldCompile {
				q.MarkFree(queue.ObjectDir(e))
				onResult(Result{Entry: e, Skipped: true})
				continue
			}

			running++
			eg.Go(func() error {
				err := spawner.Spawn(egCtx, job)
				done <- Result{Entry: e, Err: err}
				if err != nil && !opts.KeepGoing {
					return err
				}
				return nil
			})
		}
		return false
	}

	for {
		// A stop with compiles still in flight falls through to drain them.
		if startCompileIfPossible() && running == 0 {
			break
		}
		if mustExitBecauseOfError() && running == 0 {
			break
		}
		if running == 0 && (q.Len() == 0 || q.IsVirtuallyEmpty()) {
			break
		}

		r := <-done
		running--
		q.MarkFree(queue.ObjectDir(r.Entry))
		if r.Err != nil && firstErr == nil {
			firstErr = r.Err
		}
		onResult(r)
	}

	if err := eg.Wait(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// IsTerminal reports whether fd is a terminal, gating the compilation
// phase's optional progress line (internal/phase): no point repainting a
// line that scrolls off a log file.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd)
}
