package supervisor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// SpawnError wraps a failure to even start the child process (the
// executable is missing, not executable, or similar) — the "Spawn
// failure" error kind, which is fatal regardless of keep-going, unlike a
// compiler that starts and merely exits non-zero.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string { return e.Err.Error() }
func (e *SpawnError) Unwrap() error { return e.Err }

// IsSpawnFailure reports whether err (or something it wraps) is a
// SpawnError, distinguishing it from an ordinary non-zero compiler exit.
func IsSpawnFailure(err error) bool {
	var se *SpawnError
	return errors.As(err, &se)
}

// OSSpawner runs a Job as a real child process. Once a compile starts it
// always runs to completion: spec.md §5 rules out mid-compile
// cancellation even under fail-fast, so ctx is only consulted before
// Start, never used to kill a running child.
type OSSpawner struct {
	Stdout, Stderr *os.File
}

func (s OSSpawner) Spawn(ctx context.Context, job Job) error {
	if len(job.Argv) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(job.Argv[0], job.Argv[1:]...)
	if s.Stdout != nil {
		cmd.Stdout = s.Stdout
	} else {
		cmd.Stdout = os.Stdout
	}
	if s.Stderr != nil {
		cmd.Stderr = s.Stderr
	} else {
		cmd.Stderr = os.Stderr
	}
	if len(job.Env) > 0 {
		env := os.Environ()
		for k, v := range job.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	if err := cmd.Start(); err != nil {
		return &SpawnError{Err: xerrors.Errorf("%v: %w", cmd.Args, err)}
	}
	err := cmd.Wait()
	if err == nil {
		return nil
	}

	if status, ok := cmd.ProcessState.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return xerrors.Errorf("%v: killed by signal %v: %w", cmd.Args, unix.Signal(status.Signal()), err)
	}
	return xerrors.Errorf("%v: %w", cmd.Args, err)
}
