package cmdline

import (
	"github.com/gprtools/compiledriver/internal/model"
	"github.com/gprtools/compiledriver/internal/tempfile"
)

// Options carries the run-wide knobs that affect how a Plan is built,
// independent of any one source.
type Options struct {
	// UseIncludePathFile forces the include-path-file discipline even when
	// the language also supports an argv -I switch, for compilers with a
	// tight command-line length limit.
	UseIncludePathFile bool
	GlobalConfigFile   string
	LocalConfigFile    string
}

// Plan is everything the process supervisor needs to spawn one compile:
// the assembled argv, the env vars the include-path discipline requires,
// and the mapping-file path to return to the language's pool once the
// compile finishes (success or failure — the file itself survives either
// way, only its *content* goes stale).
type Plan struct {
	Argv                 []string
	LastSwitchesForFile int
	Env                  map[string]string
	MappingFilePath      string
}

// BuildPlan resolves include directories, materializes (or reuses) the
// project's config file, pops a mapping-file path, and assembles argv —
// the full per-compile command-line pipeline in one call. sourceNamings
// feeds the config file's per-source declaration block; pass nil for
// languages whose ConfigFilePatterns don't need one.
func BuildPlan(
	tree *model.Tree,
	reg *tempfile.Registry,
	dirsCache *IncludeDirsCache,
	configGen *ConfigFileGenerator,
	source *model.Source,
	project *model.Project,
	language *model.Language,
	cfg model.LanguageConfig,
	inv Invocation,
	depPath string,
	sourceNamings []SourceNaming,
	opts Options,
) (Plan, error) {
	dirs := dirsCache.Dirs(project.ID, language.ID, cfg)
	includePaths, err := ResolveIncludePaths(reg, cfg, dirs, opts.UseIncludePathFile)
	if err != nil {
		return Plan{}, err
	}

	var configSwitches []string
	if cfg.ConfigFileSwitchTmpl != "" {
		path, err := configGen.Generate(project, cfg, opts.GlobalConfigFile, opts.LocalConfigFile, sourceNamings)
		if err != nil {
			return Plan{}, err
		}
		configSwitches = expandTemplate(cfg.ConfigFileSwitchTmpl, path)
	}

	mappingPath, mappingSwitches, err := PopMapping(reg, language, cfg)
	if err != nil {
		return Plan{}, err
	}

	result := Assemble(source, project, cfg, inv, depPath, includePaths.ArgvSwitches, configSwitches, mappingSwitches)

	var env map[string]string
	if includePaths.EnvVar != "" {
		env = map[string]string{includePaths.EnvVar: includePaths.EnvValue}
	}

	return Plan{
		Argv:                result.Argv,
		LastSwitchesForFile: result.LastSwitchesForFile,
		Env:                 env,
		MappingFilePath:     mappingPath,
	}, nil
}
