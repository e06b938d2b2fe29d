package cmdline

import (
	"os"
	"strings"
	"testing"

	"github.com/gprtools/compiledriver/internal/model"
	"github.com/gprtools/compiledriver/internal/tempfile"
)

func readGenerated(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading generated config file: %v", err)
	}
	return string(data)
}

func TestGenerateCopiesGlobalAndLocalConfig(t *testing.T) {
	global, err := os.CreateTemp("", "global-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(global.Name())
	global.WriteString("pragma Global;\n")
	global.Close()

	local, err := os.CreateTemp("", "local-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(local.Name())
	local.WriteString("pragma Local;\n")
	local.Close()

	reg := tempfile.New(false)
	defer reg.Close()
	gen := NewConfigFileGenerator(reg)

	path, err := gen.Generate(&model.Project{}, model.LanguageConfig{}, global.Name(), local.Name(), nil)
	if err != nil {
		t.Fatal(err)
	}
	content := readGenerated(t, path)
	if !strings.Contains(content, "pragma Global;") || !strings.Contains(content, "pragma Local;") {
		t.Errorf("expected both global and local content, got %q", content)
	}
}

func TestGenerateExpandsNamingPatterns(t *testing.T) {
	reg := tempfile.New(false)
	defer reg.Close()
	gen := NewConfigFileGenerator(reg)

	cfg := model.LanguageConfig{
		Driver: "GNAT",
		Naming: model.NamingData{
			SpecSuffix:     ".ads",
			BodySuffix:     ".adb",
			DotReplacement: "-",
			Casing:         model.CasingLower,
		},
		ConfigFilePatterns: &model.ConfigFilePatterns{
			Spec: "pragma Source_File_Name (Spec_File_Name => \"*%s\", Dot_Replacement => \"%d\");",
			Body: "pragma Source_File_Name (Body_File_Name => \"*%b\", Casing => %c);",
		},
	}

	path, err := gen.Generate(&model.Project{}, cfg, "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	content := readGenerated(t, path)
	if !strings.Contains(content, "*.ads") {
		t.Errorf("expected spec suffix substituted, got %q", content)
	}
	if !strings.Contains(content, "Dot_Replacement => \"-\"") {
		t.Errorf("expected dot replacement substituted, got %q", content)
	}
	if !strings.Contains(content, "*.adb") {
		t.Errorf("expected body suffix substituted, got %q", content)
	}
	if !strings.Contains(content, "Casing => gnat") {
		t.Errorf("expected casing image substituted with lowercase driver name, got %q", content)
	}
}

func TestGenerateExpandsPerSourceDeclarations(t *testing.T) {
	reg := tempfile.New(false)
	defer reg.Close()
	gen := NewConfigFileGenerator(reg)

	cfg := model.LanguageConfig{
		ConfigFilePatterns: &model.ConfigFilePatterns{
			Spec: "pragma Source_File_Name (%u, Spec_File_Name => \"%f\", Index => %i);",
		},
	}
	sources := []SourceNaming{
		{UnitName: "Foo.Bar", FileName: "foo-bar.ads", Index: 0},
		{UnitName: "Foo.Bar", FileName: "foo-bar.adb", Index: 2},
	}

	path, err := gen.Generate(&model.Project{}, cfg, "", "", sources)
	if err != nil {
		t.Fatal(err)
	}
	content := readGenerated(t, path)
	if !strings.Contains(content, "(Foo.Bar, Spec_File_Name => \"foo-bar.ads\", Index => 0);") {
		t.Errorf("expected first source declaration, got %q", content)
	}
	if !strings.Contains(content, "(Foo.Bar, Spec_File_Name => \"foo-bar.adb\", Index => 2);") {
		t.Errorf("expected second source declaration, got %q", content)
	}
}

func TestGenerateRunsOnceAndCachesPath(t *testing.T) {
	reg := tempfile.New(false)
	defer reg.Close()
	gen := NewConfigFileGenerator(reg)

	project := &model.Project{ID: 1}
	cfg := model.LanguageConfig{
		ConfigFilePatterns: &model.ConfigFilePatterns{Spec: "pragma One;"},
	}

	first, err := gen.Generate(project, cfg, "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !project.ConfigChecked {
		t.Fatal("expected ConfigChecked set after first generation")
	}

	second, err := gen.Generate(project, cfg, "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("expected second call to reuse cached path: first=%q second=%q", first, second)
	}
}

func TestGenerateNoPatternsProducesEmptyContentWithoutGlobalOrLocal(t *testing.T) {
	reg := tempfile.New(false)
	defer reg.Close()
	gen := NewConfigFileGenerator(reg)

	path, err := gen.Generate(&model.Project{}, model.LanguageConfig{}, "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	content := readGenerated(t, path)
	if content != "" {
		t.Errorf("expected empty config file, got %q", content)
	}
}
