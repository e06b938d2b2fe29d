package cmdline

import (
	"os"
	"strconv"
	"strings"

	"github.com/google/renameio"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gprtools/compiledriver/internal/model"
	"github.com/gprtools/compiledriver/internal/tempfile"
)

// ConfigFileGenerator materializes the per-project config file described
// in the component design: global/local config content, naming-scheme
// pattern expansions, and per-source naming declarations. Generation runs
// at most once per project per run, guarded both by the cheap
// Project.ConfigChecked flag (the common case, since the supervisor is
// single-threaded) and a singleflight.Group (so a future parallel caller
// can't trigger two concurrent generations for the same project).
type ConfigFileGenerator struct {
	reg   *tempfile.Registry
	group singleflight.Group
}

func NewConfigFileGenerator(reg *tempfile.Registry) *ConfigFileGenerator {
	return &ConfigFileGenerator{reg: reg}
}

// SourceNaming is one source's contribution to the per-source declaration
// block: its unit name, file basename, and multi-unit index.
type SourceNaming struct {
	UnitName string
	FileName string
	Index    int
}

// Generate materializes project's config file the first time it's called
// for that project, returning the temp path to pass via the language's
// config-file-switch template. Subsequent calls for the same project
// return the same path without regenerating.
func (g *ConfigFileGenerator) Generate(project *model.Project, cfg model.LanguageConfig, globalConfig, localConfig string, sources []SourceNaming) (string, error) {
	if project.ConfigChecked && project.GeneratedConfigPath != "" {
		return project.GeneratedConfigPath, nil
	}

	key := strconv.Itoa(int(project.ID))
	v, err, _ := g.group.Do(key, func() (interface{}, error) {
		path, err := g.generate(cfg, globalConfig, localConfig, sources)
		if err != nil {
			return "", err
		}
		project.ConfigChecked = true
		project.GeneratedConfigPath = path
		return path, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (g *ConfigFileGenerator) generate(cfg model.LanguageConfig, globalConfig, localConfig string, sources []SourceNaming) (string, error) {
	var body strings.Builder

	if globalConfig != "" {
		data, err := os.ReadFile(globalConfig)
		if err != nil {
			return "", err
		}
		body.Write(data)
	}
	if localConfig != "" {
		data, err := os.ReadFile(localConfig)
		if err != nil {
			return "", err
		}
		body.Write(data)
	}

	if cfg.ConfigFilePatterns != nil {
		namingReplacer := strings.NewReplacer(
			"%b", cfg.Naming.BodySuffix,
			"%s", cfg.Naming.SpecSuffix,
			"%d", cfg.Naming.DotReplacement,
			"%c", casingImage(cfg.Naming.Casing, cfg.Driver),
			"%%", "%",
		)
		for _, pattern := range []string{cfg.ConfigFilePatterns.Spec, cfg.ConfigFilePatterns.Body, cfg.ConfigFilePatterns.Index} {
			if pattern == "" {
				continue
			}
			body.WriteString(namingReplacer.Replace(pattern))
			body.WriteByte('\n')
		}

		for _, src := range sources {
			sourceReplacer := strings.NewReplacer(
				"%u", src.UnitName,
				"%f", src.FileName,
				"%i", strconv.Itoa(src.Index),
				"%%", "%",
			)
			for _, pattern := range []string{cfg.ConfigFilePatterns.Spec, cfg.ConfigFilePatterns.Body} {
				if pattern == "" {
					continue
				}
				body.WriteString(sourceReplacer.Replace(pattern))
				body.WriteByte('\n')
			}
		}
	}

	// A fresh, unique path is needed before renameio can write beside it;
	// os.CreateTemp is used only to mint that name, then immediately
	// vacated so the atomic write below is the only thing that creates the
	// file for real. This mirrors internal/respfile.Write's same trick for
	// the same reason: spec.md §7's config-file-copy I/O error is fatal,
	// and a half-written config file must never be observable to the
	// compiler that reads it.
	f, err := os.CreateTemp("", "compiler-config-*")
	if err != nil {
		return "", err
	}
	path := f.Name()
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

	if _, err := t.Write([]byte(body.String())); err != nil {
		return "", err
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return "", err
	}

	g.reg.Register(path)
	return path, nil
}

func casingImage(casing model.Casing, s string) string {
	var caser cases.Caser
	switch casing {
	case model.CasingUpper:
		caser = cases.Upper(language.Und)
	case model.CasingMixed:
		caser = cases.Title(language.Und)
	default:
		caser = cases.Lower(language.Und)
	}
	return caser.String(s)
}
