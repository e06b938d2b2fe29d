// Package phase implements the compilation phase: the top-level wiring
// that drains a source queue through the staleness oracle, the
// command-line assembler, the process supervisor, the dependency parsers
// and the import-legality checker, recording every failure into a single
// bad_compilations table.
//
// It resolves what needs building, hands it to a bounded scheduler, reaps
// and post-processes each result, and lets a single table decide the
// final exit status.
package phase

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/gprtools/compiledriver/internal/cmdline"
	"github.com/gprtools/compiledriver/internal/legality"
	"github.com/gprtools/compiledriver/internal/model"
	"github.com/gprtools/compiledriver/internal/queue"
	"github.com/gprtools/compiledriver/internal/stale"
	"github.com/gprtools/compiledriver/internal/supervisor"
	"github.com/gprtools/compiledriver/internal/tempfile"
)

// Options controls the compilation phase, one field per flag spec.md §6
// lists as consumed from the project loader.
type Options struct {
	MaxParallelism int
	KeepGoing      bool
	CheckSwitches  bool
	AlwaysCompile  bool

	IndirectImports bool
	NoSplitUnits    bool
	WindowsMakefile bool

	GlobalConfigFile   string
	LocalConfigFile    string
	UseIncludePathFile bool

	DisplayCompilationProgress bool

	// Spawner runs each compile's process. Nil means supervisor.OSSpawner,
	// the production default; tests inject a fake that runs no real
	// process.
	Spawner supervisor.Spawner
}

// InvocationFunc resolves the per-invocation switches the (out of scope)
// builder/project-description layer supplies for one source, already
// grouped by target language per spec.md §6.
type InvocationFunc func(source *model.Source) cmdline.Invocation

// Result is the phase's outcome. bad_compilations is the single source of
// truth for the final exit status (spec.md §7's closing line): ExitCode
// is 0 iff it is empty.
type Result struct {
	BadCompilations []*model.Source
	Compiled        int
	Skipped         int
}

// ExitCode implements spec.md §6's rule: 0 on success, non-zero on any
// failed compile regardless of which policy (keep-going or fail-fast)
// was in effect.
func (r *Result) ExitCode() int {
	if len(r.BadCompilations) > 0 {
		return 1
	}
	return 0
}

// plannedCompile is the bookkeeping jobFor hands to onResult for a source
// it decided must actually run: onResult needs the language (to return
// the mapping file to its pool) and the fully assembled argv (to write
// the switches file) without re-deriving either.
type plannedCompile struct {
	project  *model.Project
	language *model.Language
	cfg      model.LanguageConfig
	depPath  string

	argv                []string
	lastSwitchesForFile int
	mappingPath         string
}

// Run drains entries to completion (or to the first fatal error) under
// opts. tree owns every project/language/source reachable; reg is the
// temp-file registry backing config/mapping/response files it creates
// along the way.
func Run(ctx context.Context, tree *model.Tree, reg *tempfile.Registry, entries []queue.Entry, opts Options, invocationFor InvocationFunc) (*Result, error) {
	if err := checkBindingPrefixes(tree); err != nil {
		return nil, err
	}

	q := queue.New()
	for _, e := range entries {
		q.Insert(e)
	}

	dirsCache := cmdline.NewIncludeDirsCache(tree)
	configGen := cmdline.NewConfigFileGenerator(reg)
	checker := legality.New(tree, opts.IndirectImports)
	clock := stale.OSClock{}
	namings := collectSourceNamings(tree)
	planOpts := cmdline.Options{
		UseIncludePathFile: opts.UseIncludePathFile,
		GlobalConfigFile:   opts.GlobalConfigFile,
		LocalConfigFile:    opts.LocalConfigFile,
	}
	staleOpts := stale.Options{
		AlwaysCompile:   opts.AlwaysCompile,
		CheckSwitches:   opts.CheckSwitches,
		WindowsMakefile: opts.WindowsMakefile,
		NoSplitUnits:    opts.NoSplitUnits,
	}

	result := &Result{}
	pending := make(map[model.SourceID]*plannedCompile)
	extractorPaths := make(map[model.LanguageID]string)
	progress := newProgressPrinter(opts.DisplayCompilationProgress, len(entries))

	var fatal bool
	var fatalErr error
	markFatal := func(err error) error {
		if !fatal {
			fatal, fatalErr = true, err
		}
		return fatalErr
	}

	jobFor := func(_ context.Context, e queue.Entry) (supervisor.Job, bool, error) {
		source := e.Source
		project := e.Tree.Project(source.ProjectID)
		language := e.Tree.Language(source.LanguageID)
		cfg := language.Config
		inv := invocationFor(source)

		plan, err := cmdline.BuildPlan(e.Tree, reg, dirsCache, configGen, source, project, language, cfg, inv, source.DepPath, namings[language.ID], planOpts)
		if err != nil {
			return supervisor.Job{}, false, markFatal(xerrors.Errorf("phase: assembling command line for %s: %w", source.Path, err))
		}

		check := stale.SwitchesToCheck{
			Argv:     plan.Argv[:plan.LastSwitchesForFile],
			Trailing: plan.Argv[plan.LastSwitchesForFile:],
		}
		if objTime, err := clock.ModTime(source.ObjectPath); err == nil {
			check.ObjectStamp = stale.Stamp(objTime)
		}

		decision, err := stale.Decide(e.Tree, source, project, cfg, clock, staleOpts, check)
		if err != nil {
			return supervisor.Job{}, false, markFatal(xerrors.Errorf("phase: staleness check for %s: %w", source.Path, err))
		}

		if !decision.MustCompile {
			cmdline.PushMapping(language, plan.MappingFilePath)
			if decision.Manifest != nil {
				enqueueUsedUnits(q, e.Tree, decision.Manifest)
			}
			return supervisor.Job{}, false, nil
		}

		pending[source.ID] = &plannedCompile{
			project:             project,
			language:            language,
			cfg:                 cfg,
			depPath:             source.DepPath,
			argv:                plan.Argv,
			lastSwitchesForFile: plan.LastSwitchesForFile,
			mappingPath:         plan.MappingFilePath,
		}
		return supervisor.Job{Entry: e, Argv: plan.Argv, Env: plan.Env}, true, nil
	}

	onResult := func(r supervisor.Result) {
		if r.Skipped {
			result.Skipped++
			return
		}
		progress.advance()

		source := r.Entry.Source
		p := pending[source.ID]
		delete(pending, source.ID)
		if p == nil {
			return
		}

		if r.Err != nil {
			if supervisor.IsSpawnFailure(r.Err) {
				markFatal(r.Err)
			}
			result.BadCompilations = append(result.BadCompilations, source)
			cmdline.PushMapping(p.language, p.mappingPath)
			return
		}

		fatalPostErr, invalid := postProcess(r.Entry, reg, checker, clock, extractorPaths, q, opts, p)
		if fatalPostErr != nil {
			markFatal(fatalPostErr)
			result.BadCompilations = append(result.BadCompilations, source)
			cmdline.PushMapping(p.language, p.mappingPath)
			return
		}
		if invalid {
			result.BadCompilations = append(result.BadCompilations, source)
			cmdline.PushMapping(p.language, p.mappingPath)
			return
		}

		result.Compiled++
		cmdline.PushMapping(p.language, p.mappingPath)
	}

	supOpts := supervisor.Options{
		MaxParallelism: opts.MaxParallelism,
		KeepGoing:      opts.KeepGoing,
		Abort:          func() bool { return fatal },
	}
	spawner := opts.Spawner
	if spawner == nil {
		spawner = supervisor.OSSpawner{}
	}
	_ = supervisor.Run(ctx, q, supOpts, spawner, jobFor, onResult)
	progress.finish()

	if fatalErr != nil {
		return result, fatalErr
	}
	return result, nil
}
