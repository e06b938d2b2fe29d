// Package respfile implements the response-file writer: a temp file
// containing a compiler argument list in one of the supported formats,
// registered with internal/tempfile so it is reclaimed at driver exit
// unless keep-temps was requested.
package respfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"

	"github.com/gprtools/compiledriver/internal/tempfile"
)

// Format selects the on-disk shape of the response file.
type Format int

const (
	// FormatPlain writes one argument per line.
	FormatPlain Format = iota
	// FormatQuoted wraps the whole list in "INPUT ( ... )", one quoted
	// argument per line.
	FormatQuoted
)

// Write creates a new temp file under dir (os.TempDir() if dir is empty)
// containing args in the given format, registers it with reg, and returns
// its path. The file is written atomically via renameio so a disk-full
// mid-write never leaves a partially-written response file observable to
// the compiler.
func Write(reg *tempfile.Registry, dir, pattern string, format Format, args []string) (path string, err error) {
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	path = f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", err
	}

	t, err := renameio.TempFile("", path)
	if err != nil {
		return "", err
	}
	defer t.Cleanup()

	if err := render(t, format, args); err != nil {
		return "", err
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return "", err
	}

	reg.Register(path)
	return path, nil
}

func render(w interface{ Write([]byte) (int, error) }, format Format, args []string) error {
	switch format {
	case FormatPlain:
		for _, a := range args {
			if _, err := fmt.Fprintf(w, "%s\n", a); err != nil {
				return err
			}
		}
	case FormatQuoted:
		if _, err := fmt.Fprintf(w, "INPUT (\n"); err != nil {
			return err
		}
		for _, a := range args {
			if _, err := fmt.Fprintf(w, "%q\n", a); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, ")\n"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("respfile: unknown format %d", format)
	}
	return nil
}

// Path joins dir and name the way the rest of the driver expects response
// files to be named, kept here so callers don't each reinvent it.
func Path(dir, name string) string {
	return filepath.Join(dir, name)
}
