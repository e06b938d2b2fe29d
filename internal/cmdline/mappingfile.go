package cmdline

import (
	"os"

	"github.com/gprtools/compiledriver/internal/model"
	"github.com/gprtools/compiledriver/internal/tempfile"
)

// PopMapping hands back a mapping-file path for lang's next compile: a
// recycled path from lang's pool if one is free, otherwise a freshly
// created temp file registered with reg. It also returns the argv
// switches built from cfg's template, nil when the language doesn't use
// mapping files at all.
func PopMapping(reg *tempfile.Registry, lang *model.Language, cfg model.LanguageConfig) (path string, argvSwitches []string, err error) {
	if cfg.MappingFileSwitchTmpl == "" {
		return "", nil, nil
	}

	path, ok := lang.PopMappingFile()
	if !ok {
		f, err := os.CreateTemp("", "mapping-*")
		if err != nil {
			return "", nil, err
		}
		f.Close()
		reg.Register(f.Name())
		path = f.Name()
	}

	return path, expandTemplate(cfg.MappingFileSwitchTmpl, path), nil
}

// PushMapping returns path to lang's pool once the compile that used it
// has finished, so a later compile in the same language can reuse it
// instead of creating a new temp file.
func PushMapping(lang *model.Language, path string) {
	if path == "" {
		return
	}
	lang.PushMappingFile(path)
}
