package cmdline

import (
	"os"
	"testing"

	"github.com/gprtools/compiledriver/internal/model"
	"github.com/gprtools/compiledriver/internal/tempfile"
)

func TestResolveIncludePathsArgvDiscipline(t *testing.T) {
	reg := tempfile.New(false)
	defer reg.Close()
	cfg := model.LanguageConfig{IncludeOptionTmpl: "-I%s"}

	got, err := ResolveIncludePaths(reg, cfg, []string{"a", "b"}, false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"-Ia", "-Ib"}
	if len(got.ArgvSwitches) != len(want) || got.ArgvSwitches[0] != want[0] || got.ArgvSwitches[1] != want[1] {
		t.Errorf("got %v, want %v", got.ArgvSwitches, want)
	}
	if got.EnvVar != "" {
		t.Errorf("expected no env var set, got %q", got.EnvVar)
	}
}

func TestResolveIncludePathsFileDisciplineForcedByCaller(t *testing.T) {
	reg := tempfile.New(false)
	defer reg.Close()
	cfg := model.LanguageConfig{IncludeOptionTmpl: "-I%s", IncludePathFileEnv: "CPATH_FILE"}

	got, err := ResolveIncludePaths(reg, cfg, []string{"a", "b"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.ArgvSwitches) != 0 {
		t.Errorf("expected no argv switches when forced to file discipline, got %v", got.ArgvSwitches)
	}
	if got.EnvVar != "CPATH_FILE" {
		t.Errorf("expected CPATH_FILE env var, got %q", got.EnvVar)
	}
	data, err := os.ReadFile(got.EnvValue)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a\nb\n" {
		t.Errorf("unexpected include path file content %q", data)
	}
	if paths := reg.Paths(); len(paths) != 1 || paths[0] != got.EnvValue {
		t.Errorf("expected temp file registered, got %v", paths)
	}
}

func TestResolveIncludePathsEnvDiscipline(t *testing.T) {
	reg := tempfile.New(false)
	defer reg.Close()
	cfg := model.LanguageConfig{IncludePathEnv: "CPATH"}

	got, err := ResolveIncludePaths(reg, cfg, []string{"a", "b"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.EnvVar != "CPATH" {
		t.Errorf("expected CPATH, got %q", got.EnvVar)
	}
	want := "a" + string(os.PathListSeparator) + "b"
	if got.EnvValue != want {
		t.Errorf("got %q, want %q", got.EnvValue, want)
	}
}

func TestResolveIncludePathsNoDiscipline(t *testing.T) {
	reg := tempfile.New(false)
	defer reg.Close()

	got, err := ResolveIncludePaths(reg, model.LanguageConfig{}, []string{"a"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.ArgvSwitches) != 0 || got.EnvVar != "" {
		t.Errorf("expected no-op result, got %+v", got)
	}
}
