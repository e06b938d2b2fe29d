package cmdline

import (
	"os"
	"strings"

	"github.com/gprtools/compiledriver/internal/model"
	"github.com/gprtools/compiledriver/internal/tempfile"
)

// IncludePaths is the resolved result of picking one of the three
// include-path delivery disciplines for a compile.
type IncludePaths struct {
	// ArgvSwitches are -I-style switches to splice into argv (rule 1).
	ArgvSwitches []string
	// EnvVar and EnvValue, when EnvVar is non-empty, are set in the
	// compiler's environment at spawn (rules 2 and 3); only the child's
	// environment carries them, the driver's own is never modified.
	EnvVar   string
	EnvValue string
}

// ResolveIncludePaths picks the discipline cfg declares, in priority
// order: an explicit -I-style option, then an include-path-file env var,
// then a plain joined-path env var. useIncludePathFile forces rule 2 even
// when rule 1 is available, for compilers with argv length limits.
func ResolveIncludePaths(reg *tempfile.Registry, cfg model.LanguageConfig, dirs []string, useIncludePathFile bool) (IncludePaths, error) {
	if cfg.IncludeOptionTmpl != "" && !useIncludePathFile {
		var switches []string
		for _, dir := range dirs {
			switches = append(switches, expandTemplate(cfg.IncludeOptionTmpl, dir)...)
		}
		return IncludePaths{ArgvSwitches: switches}, nil
	}

	if cfg.IncludePathFileEnv != "" {
		path, err := writeIncludePathFile(reg, dirs)
		if err != nil {
			return IncludePaths{}, err
		}
		return IncludePaths{EnvVar: cfg.IncludePathFileEnv, EnvValue: path}, nil
	}

	if cfg.IncludePathEnv != "" {
		return IncludePaths{EnvVar: cfg.IncludePathEnv, EnvValue: joinPathList(dirs)}, nil
	}

	return IncludePaths{}, nil
}

func writeIncludePathFile(reg *tempfile.Registry, dirs []string) (string, error) {
	f, err := os.CreateTemp("", "include-paths-*")
	if err != nil {
		return "", err
	}
	defer f.Close()
	for _, dir := range dirs {
		if _, err := f.WriteString(dir + "\n"); err != nil {
			return "", err
		}
	}
	reg.Register(f.Name())
	return f.Name(), nil
}

func joinPathList(dirs []string) string {
	return strings.Join(dirs, string(os.PathListSeparator))
}
