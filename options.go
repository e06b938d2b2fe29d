package compiledriver

// Verbosity controls how much progress detail the driver emits.
type Verbosity int

const (
	VerbosityQuiet Verbosity = iota
	VerbosityNormal
	VerbosityVerbose
)

// Options holds the per-invocation flags consumed from the (out of scope)
// command-line/flag layer. Population of this struct from argv happens in
// cmd/compiledriver; the driver itself never parses flags.
type Options struct {
	// MaxParallelism is N in "spawn up to N concurrent compilers".
	MaxParallelism int

	// KeepGoing, if true, records failures and continues compiling
	// siblings instead of draining and aborting on the first failure.
	KeepGoing bool

	// CheckSwitches enables the switches-file drift check.
	CheckSwitches bool

	// AlwaysCompile lifts the externally-built skip, so sources of
	// externally built projects go through the ordinary staleness checks;
	// up-to-date sources are still not recompiled.
	AlwaysCompile bool

	// IndirectImports enables the transitive-import legality relaxation.
	IndirectImports bool

	// NoSplitUnits changes unit-manifest dep parsing to also extract
	// subunit dependency records.
	NoSplitUnits bool

	// DisplayCompilationProgress enables the terminal status refresh in
	// the compilation phase (internal/phase).
	DisplayCompilationProgress bool

	// KeepTemporaryFiles disables reclaiming of registered temp paths at
	// driver exit.
	KeepTemporaryFiles bool

	// UseIncludePathFile forces the include-path-file discipline even
	// when include_option is available, useful for compilers with argv
	// length limits.
	UseIncludePathFile bool

	// WindowsMakefile selects the Makefile dep-parser's platform-specific
	// backslash handling, independent of the host the driver itself runs
	// on (cross-compiling a Windows target from a POSIX host, e.g.).
	WindowsMakefile bool

	Verbosity Verbosity
}
