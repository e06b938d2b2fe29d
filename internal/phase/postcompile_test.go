package phase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gprtools/compiledriver/internal/model"
	"github.com/gprtools/compiledriver/internal/queue"
	"github.com/gprtools/compiledriver/internal/tempfile"
)

// multiProjectFixture builds a tree with one project per name, each with a
// single "c" language configured for the Makefile dependency kind, for
// exercising postProcess's dependency-classification orchestration across
// project boundaries.
type multiProjectFixture struct {
	tree     *model.Tree
	projects map[string]*model.Project
	langs    map[string]*model.Language
}

func newMultiProjectFixture(dir string, names ...string) *multiProjectFixture {
	tree := model.New()
	fx := &multiProjectFixture{
		tree:     tree,
		projects: make(map[string]*model.Project),
		langs:    make(map[string]*model.Language),
	}
	for _, name := range names {
		p := &model.Project{Name: name, ObjectDir: dir}
		tree.AddProject(p)
		lang := &model.Language{
			ProjectID: p.ID,
			Name:      "c",
			Config: model.LanguageConfig{
				SourceFileSwitchTmpl: "%s",
				DependencyKind:       model.DependencyMakefile,
			},
		}
		tree.AddLanguage(lang)
		fx.projects[name] = p
		fx.langs[name] = lang
	}
	return fx
}

// addSource writes a real file at dir/name and registers it as a source of
// project, so internal/model.Tree.FindByPath can resolve it back out of a
// Makefile-format prerequisite list.
func (fx *multiProjectFixture) addSource(t *testing.T, dir, project, name string, inInterfaces bool) *model.Source {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := fx.projects[project]
	lang := fx.langs[project]
	src := &model.Source{
		Basename:     name,
		Path:         path,
		ObjectPath:   filepath.Join(dir, name+".o"),
		DepPath:      filepath.Join(dir, name+".d"),
		SwitchesPath: filepath.Join(dir, name+".switches"),
		InInterfaces: inInterfaces,
		ProjectID:    p.ID,
		LanguageID:   lang.ID,
	}
	fx.tree.AddSource(src)
	return src
}

func TestPostProcessMakefileIllegalImportInvalidatesCompile(t *testing.T) {
	dir := t.TempDir()
	fx := newMultiProjectFixture(dir, "p", "unrelated")
	main := fx.addSource(t, dir, "p", "main.c", true)
	header := fx.addSource(t, dir, "unrelated", "header.h", true)

	if err := os.WriteFile(main.DepPath, []byte(main.Basename+".o: "+header.Path+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries := []queue.Entry{{Source: main, Tree: fx.tree}}
	result, err := Run(context.Background(), fx.tree, tempfile.New(false), entries,
		Options{MaxParallelism: 1, Spawner: &fakeSpawner{fail: map[string]error{}}}, noopInvocation)
	if err != nil {
		t.Fatalf("an illegal import must not surface as a fatal phase error: %v", err)
	}
	if len(result.BadCompilations) != 1 || result.BadCompilations[0] != main {
		t.Fatalf("expected main.c recorded as a bad compilation, got %+v", result)
	}
	if result.ExitCode() != 1 {
		t.Errorf("expected a non-zero exit code for an illegal-import compile")
	}
	if _, err := os.Stat(main.ObjectPath); !os.IsNotExist(err) {
		t.Errorf("expected the object file to be deleted on an illegal-import invalidation, stat err = %v", err)
	}
	if _, err := os.Stat(main.DepPath); !os.IsNotExist(err) {
		t.Errorf("expected the dep file to be deleted on an illegal-import invalidation, stat err = %v", err)
	}
	if _, err := os.Stat(main.SwitchesPath); !os.IsNotExist(err) {
		t.Errorf("expected no switches file to be left behind on an illegal-import invalidation, stat err = %v", err)
	}
}

// TestPostProcessMakefileIndirectImportOrderIndependent pins the two-phase
// recheck spec.md §4.10 describes: an indirect dependency listed in the dep
// file before the direct import that legalizes it must still be allowed,
// not just a direct import listed before an indirect one.
func TestPostProcessMakefileIndirectImportOrderIndependent(t *testing.T) {
	dir := t.TempDir()
	fx := newMultiProjectFixture(dir, "p", "q", "r")
	fx.projects["p"].Imports = []model.ProjectID{fx.projects["q"].ID}
	fx.projects["q"].Imports = []model.ProjectID{fx.projects["r"].ID}

	main := fx.addSource(t, dir, "p", "main.c", true)
	qHeader := fx.addSource(t, dir, "q", "q.h", true)
	rHeader := fx.addSource(t, dir, "r", "r.h", true)

	// r.h (only indirectly reachable, through q) is listed before q.h (the
	// direct import that legalizes reaching r.h) on purpose.
	depContent := main.Basename + ".o: " + rHeader.Path + " " + qHeader.Path + "\n"
	if err := os.WriteFile(main.DepPath, []byte(depContent), 0o644); err != nil {
		t.Fatal(err)
	}

	entries := []queue.Entry{{Source: main, Tree: fx.tree}}
	result, err := Run(context.Background(), fx.tree, tempfile.New(false), entries,
		Options{MaxParallelism: 1, IndirectImports: true, Spawner: &fakeSpawner{fail: map[string]error{}}}, noopInvocation)
	if err != nil {
		t.Fatalf("unexpected fatal phase error: %v", err)
	}
	if len(result.BadCompilations) != 0 {
		t.Fatalf("expected the indirect dependency to be legalized regardless of dep-file order, got bad compilations: %+v", result.BadCompilations)
	}
	if result.Compiled != 1 {
		t.Fatalf("expected main.c compiled, got %+v", result)
	}
	if _, err := os.Stat(main.SwitchesPath); err != nil {
		t.Errorf("expected a switches file to be written for the legalized compile: %v", err)
	}
}
