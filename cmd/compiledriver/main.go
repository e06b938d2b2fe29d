// Command compiledriver runs the compilation phase over a resolved
// project tree read from a JSON fixture, in place of the (out of scope)
// project-description loader a real build front-end would supply.
package main

import (
	"flag"
	"fmt"
	"os"

	compiledriver "github.com/gprtools/compiledriver"
	"github.com/gprtools/compiledriver/internal/cmdline"
	"github.com/gprtools/compiledriver/internal/model"
	"github.com/gprtools/compiledriver/internal/projgraph"
	"github.com/gprtools/compiledriver/internal/queue"
)

const help = `compiledriver [-flags] -project=<path.json>

Compile every source reachable from -root (or every source in the
project tree, if -root is unset) described by the project file at
-project.

Example:
  % compiledriver -project=build.json -root=main -jobs=4 -keep-going
`

func usage(fset *flag.FlagSet) func() {
	return func() {
		fmt.Fprintln(os.Stderr, help)
		fmt.Fprintln(os.Stderr, "Flags:")
		fset.PrintDefaults()
	}
}

func funcmain() (exitCode int, err error) {
	fset := flag.NewFlagSet("compiledriver", flag.ExitOnError)
	fset.Usage = usage(fset)

	projectFile := fset.String("project", "", "path to the JSON project-tree fixture to compile")
	root := fset.String("root", "", "name of the root project to compile (every project, if unset)")
	jobs := fset.Int("jobs", 1, "maximum number of compiler processes to run concurrently")
	keepGoing := fset.Bool("keep-going", false, "record failures and keep compiling siblings instead of stopping at the first one")
	checkSwitches := fset.Bool("check-switches", false, "also rebuild when the recorded switches file no longer matches this invocation")
	alwaysCompile := fset.Bool("always-compile", false, "also check sources of externally built projects for staleness instead of skipping them")
	indirectImports := fset.Bool("indirect-imports", false, "relax import legality to allow indirectly-imported sources")
	noSplitUnits := fset.Bool("no-split-units", false, "also extract subunit dependency records from unit manifests")
	windowsMakefile := fset.Bool("windows-makefile", false, "use the Windows backslash-escaping rule when parsing Makefile dep files")
	useIncludePathFile := fset.Bool("use-include-path-file", false, "force the include-path-file discipline even when an -I-style switch is available")
	progress := fset.Bool("progress", false, "print a refreshed compilation progress line on a terminal")
	keepTemps := fset.Bool("keep-temps", false, "don't reclaim response/mapping/config temp files on exit")
	fset.Parse(os.Args[1:])

	if *projectFile == "" {
		fset.Usage()
		return 2, nil
	}

	tree, refs, err := loadFixture(*projectFile, *root)
	if err != nil {
		return 1, fmt.Errorf("loading %s: %w", *projectFile, err)
	}

	entries, err := entriesFor(tree, refs, *root)
	if err != nil {
		return 1, err
	}

	ctx, canc := compiledriver.InterruptibleContext()
	defer canc()

	opts := compiledriver.Options{
		MaxParallelism:             *jobs,
		KeepGoing:                  *keepGoing,
		CheckSwitches:              *checkSwitches,
		AlwaysCompile:              *alwaysCompile,
		IndirectImports:            *indirectImports,
		NoSplitUnits:               *noSplitUnits,
		WindowsMakefile:            *windowsMakefile,
		UseIncludePathFile:         *useIncludePathFile,
		DisplayCompilationProgress: *progress,
		KeepTemporaryFiles:         *keepTemps,
	}

	result, err := compiledriver.Run(ctx, tree, entries, opts, func(*model.Source) cmdline.Invocation {
		return cmdline.Invocation{}
	})
	if err != nil {
		return 1, err
	}

	fmt.Printf("compiled %d, skipped %d, failed %d\n", result.Compiled, result.Skipped, len(result.BadCompilations))
	for _, bad := range result.BadCompilations {
		fmt.Fprintf(os.Stderr, "FAILED: %s\n", bad.Path)
	}
	return result.ExitCode(), nil
}

// entriesFor builds the initial compile entries: every source in refs
// whose project is reachable from root (the whole tree, if root is
// unset), in the order refs lists them; the project graph is used only
// to decide which projects are reachable, not to order the entries.
func entriesFor(tree *model.Tree, refs []sourceRef, root string) ([]queue.Entry, error) {
	if root == "" {
		entries := make([]queue.Entry, 0, len(refs))
		for _, ref := range refs {
			entries = append(entries, queue.Entry{Source: ref.source, Tree: tree})
		}
		return entries, nil
	}

	var rootID model.ProjectID
	for _, p := range tree.Projects() {
		if p.Name == root {
			rootID = p.ID
		}
	}
	if rootID == 0 {
		return nil, fmt.Errorf("unknown root project %q", root)
	}

	reached := make(map[model.ProjectID]bool)
	it := projgraph.New(tree, projgraph.PostOrder, true)
	if err := it.Walk(rootID, func(_ *projgraph.Context, p *model.Project) error {
		reached[p.ID] = true
		return nil
	}); err != nil {
		return nil, err
	}

	var entries []queue.Entry
	for _, ref := range refs {
		if reached[ref.source.ProjectID] {
			entries = append(entries, queue.Entry{Source: ref.source, Tree: tree})
		}
	}
	return entries, nil
}

func main() {
	code, err := funcmain()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}
