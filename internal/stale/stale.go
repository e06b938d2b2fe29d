// Package stale implements the staleness oracle and the switches-file
// protocol it consults: given a source and its owning project, decide
// whether the source must be (re)compiled, from object/source timestamps,
// the previously recorded dependency file, and (optionally) whether the
// switches that would be passed this time match what was recorded last
// time.
package stale

import (
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/gprtools/compiledriver/internal/depparse"
	"github.com/gprtools/compiledriver/internal/model"
)

// Clock abstracts filesystem timestamp and content reads so the oracle's
// decision order can be tested without touching disk.
type Clock interface {
	ModTime(path string) (time.Time, error)
	ReadFile(path string) ([]byte, error)
}

// OSClock is the production Clock, backed by the real filesystem. It reads
// mtime via unix.Stat rather than os.Stat so the nanosecond component of
// Stat_t.Mtim survives into the stamp Stamp renders — two compiles that
// land within the same second must still compare unequal.
type OSClock struct{}

func (OSClock) ModTime(path string) (time.Time, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, err
	}
	sec, nsec := st.Mtim.Unix()
	return time.Unix(sec, nsec), nil
}

func (OSClock) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// SwitchesToCheck carries the switches-file contents the current
// invocation would produce, for comparison against what's on disk.
type SwitchesToCheck struct {
	ObjectStamp string
	Argv        []string
	Trailing    []string
}

// Decision is the oracle's verdict for one source.
type Decision struct {
	MustCompile bool
	// Manifest is the parsed unit manifest read while checking the dep
	// file, when the source turned out to be up-to-date and its
	// dependency kind is UnitManifest. Callers use it to continue a
	// transitive-closure computation without re-reading the file.
	Manifest *depparse.UnitManifest
}

// Options controls the four user-facing knobs the decision order
// branches on.
type Options struct {
	AlwaysCompile bool
	CheckSwitches bool
	// WindowsMakefile selects the Makefile dep-parser's platform-specific
	// backslash handling.
	WindowsMakefile bool
	// NoSplitUnits requests subunit records from the unit-manifest
	// parser.
	NoSplitUnits bool
}

// Decide runs the staleness decision order for source, owned by project
// and compiled under cfg, consulting clock for filesystem state and tree
// to resolve unit-manifest basenames back to sources.
func Decide(tree *model.Tree, source *model.Source, project *model.Project, cfg model.LanguageConfig, clock Clock, opts Options, check SwitchesToCheck) (Decision, error) {
	// 1. externally built, no always-compile.
	if project.ExternallyBuilt && !opts.AlwaysCompile {
		return Decision{MustCompile: false}, nil
	}

	// 2. object missing or older than source.
	objStamp, err := clock.ModTime(source.ObjectPath)
	if err != nil {
		return Decision{MustCompile: true}, nil
	}
	srcStamp, err := clock.ModTime(source.Path)
	if err != nil {
		return Decision{}, err
	}
	if objStamp.Before(srcStamp) {
		return Decision{MustCompile: true}, nil
	}

	// 3. dep file missing/unreadable/stale.
	var manifest *depparse.UnitManifest
	if cfg.DependencyKind != model.DependencyNone {
		depStamp, err := clock.ModTime(source.DepPath)
		if err != nil {
			return Decision{MustCompile: true}, nil
		}
		data, err := clock.ReadFile(source.DepPath)
		if err != nil {
			return Decision{MustCompile: true}, nil
		}

		switch cfg.DependencyKind {
		case model.DependencyMakefile:
			deps, err := depparse.ParseMakefile(data, opts.WindowsMakefile)
			if err != nil {
				return Decision{MustCompile: true}, nil
			}
			for _, prereq := range deps.Prerequisites {
				mt, err := clock.ModTime(prereq)
				if err != nil {
					return Decision{MustCompile: true}, nil
				}
				if mt.After(depStamp) {
					return Decision{MustCompile: true}, nil
				}
			}
		case model.DependencyUnitManifest:
			m, err := depparse.ParseUnitManifest(data, opts.NoSplitUnits)
			if err != nil {
				return Decision{MustCompile: true}, nil
			}
			manifest = m
			for _, used := range m.Used {
				for _, s := range tree.FindByBasename(used.SourceBasename) {
					mt, err := clock.ModTime(s.Path)
					if err != nil {
						return Decision{MustCompile: true}, nil
					}
					if mt.After(depStamp) {
						return Decision{MustCompile: true}, nil
					}
				}
			}
		}
	}

	// 4. switches-file drift.
	if opts.CheckSwitches {
		data, err := clock.ReadFile(source.SwitchesPath)
		if err != nil {
			return Decision{MustCompile: true}, nil
		}
		ok, err := MatchesSwitches(data, check.ObjectStamp, check.Argv, check.Trailing)
		if err != nil || !ok {
			return Decision{MustCompile: true}, nil
		}
	}

	return Decision{MustCompile: false, Manifest: manifest}, nil
}
