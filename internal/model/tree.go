package model

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Tree owns every Project, Language and Source reachable in one compile
// phase, and answers the cross-cutting lookups the rest of the driver
// needs: ultimate extender resolution, the basename → sources index (the
// file-name hash) used for unit-manifest dependencies, and the path index
// (FindByPath) used for Makefile dependencies, each mapping a discovered
// dependency back to a Source.
type Tree struct {
	projects  map[ProjectID]*Project
	languages map[LanguageID]*Language
	sources   map[SourceID]*Source

	// extendedBy maps a project to the project that directly extends it,
	// the reverse edge of Project.Extends, used to walk to the ultimate
	// extender.
	extendedBy map[ProjectID]ProjectID

	// byBasename indexes sources by xxhash of their basename, the file
	// name hash the unit-manifest post-processor consults to map a
	// dependency record back onto a Source.
	byBasename map[uint64][]SourceID

	// byPath indexes sources by their canonicalized absolute path, the
	// index the Makefile dep-parser's post-processor consults to map a
	// prerequisite path back onto a Source.
	byPath map[string]SourceID

	nextProjectID  ProjectID
	nextLanguageID LanguageID
	nextSourceID   SourceID
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{
		projects:   make(map[ProjectID]*Project),
		languages:  make(map[LanguageID]*Language),
		sources:    make(map[SourceID]*Source),
		extendedBy: make(map[ProjectID]ProjectID),
		byBasename: make(map[uint64][]SourceID),
		byPath:     make(map[string]SourceID),
	}
}

// AddProject assigns p a fresh id, records it, and returns that id. Callers
// (the external project loader / test fixtures) must set p.Extends before
// calling AddProject for every other project, or call SetExtends
// afterwards to keep extendedBy consistent.
func (t *Tree) AddProject(p *Project) ProjectID {
	t.nextProjectID++
	p.ID = t.nextProjectID
	t.projects[p.ID] = p
	if p.Extends.Valid() {
		t.extendedBy[p.Extends] = p.ID
	}
	return p.ID
}

// SetExtends (re)establishes the Extends edge for an already-added
// project, keeping the reverse extendedBy index consistent.
func (t *Tree) SetExtends(child, parent ProjectID) {
	p := t.projects[child]
	if p == nil {
		return
	}
	if p.Extends.Valid() {
		delete(t.extendedBy, p.Extends)
	}
	p.Extends = parent
	if parent.Valid() {
		t.extendedBy[parent] = child
	}
}

// AddLanguage assigns l a fresh id, records it, links it onto its owning
// project, and returns that id.
func (t *Tree) AddLanguage(l *Language) LanguageID {
	t.nextLanguageID++
	l.ID = t.nextLanguageID
	t.languages[l.ID] = l
	if p := t.projects[l.ProjectID]; p != nil {
		p.Languages = append(p.Languages, l.ID)
	}
	return l.ID
}

// AddSource assigns s a fresh id, records it, links it onto its owning
// language, indexes it by basename, and returns that id.
func (t *Tree) AddSource(s *Source) SourceID {
	t.nextSourceID++
	s.ID = t.nextSourceID
	t.sources[s.ID] = s
	if l := t.languages[s.LanguageID]; l != nil {
		l.Sources = append(l.Sources, s.ID)
	}
	h := xxhash.Sum64String(s.Basename)
	t.byBasename[h] = append(t.byBasename[h], s.ID)
	t.byPath[canonicalPathKey(s.Path)] = s.ID
	return s.ID
}

func (t *Tree) Project(id ProjectID) *Project  { return t.projects[id] }
func (t *Tree) Language(id LanguageID) *Language { return t.languages[id] }
func (t *Tree) Source(id SourceID) *Source     { return t.sources[id] }

// Projects returns every project in the tree, in id order (deterministic
// for tests and for dry-run listings).
func (t *Tree) Projects() []*Project {
	out := make([]*Project, 0, len(t.projects))
	for id := ProjectID(1); id <= t.nextProjectID; id++ {
		if p, ok := t.projects[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// UltimateExtender follows the extendedBy chain from id to the last
// project in the extension chain. If nothing extends id, UltimateExtender
// returns id itself.
func (t *Tree) UltimateExtender(id ProjectID) ProjectID {
	seen := map[ProjectID]bool{id: true}
	cur := id
	for {
		next, ok := t.extendedBy[cur]
		if !ok {
			return cur
		}
		if seen[next] {
			// A malformed (cyclic) extension chain: stop rather than loop
			// forever. The project loader is responsible for rejecting
			// cycles; this is a defensive backstop.
			return cur
		}
		seen[next] = true
		cur = next
	}
}

// FindByPath looks up a source by its path, the way the Makefile
// dep-parser's post-processor resolves a prerequisite back onto a Source:
// no symlink resolution (DESIGN.md records this as a deliberate choice),
// case-folded on platforms whose filesystem is case-insensitive.
func (t *Tree) FindByPath(path string) (*Source, bool) {
	id, ok := t.byPath[canonicalPathKey(path)]
	if !ok {
		return nil, false
	}
	return t.sources[id], true
}

// canonicalPathKey normalizes path the way FindByPath's lookup key is
// built: cleaned, and case-folded on the platforms where the filesystem
// itself doesn't distinguish case.
func canonicalPathKey(path string) string {
	clean := filepath.Clean(path)
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return strings.ToLower(clean)
	}
	return clean
}

// FindByBasename returns every source sharing the given basename, via the
// tree's file-name hash.
func (t *Tree) FindByBasename(basename string) []*Source {
	h := xxhash.Sum64String(basename)
	ids := t.byBasename[h]
	if len(ids) == 0 {
		return nil
	}
	out := make([]*Source, 0, len(ids))
	for _, id := range ids {
		if s := t.sources[id]; s != nil && s.Basename == basename {
			out = append(out, s)
		}
	}
	return out
}

// TransitiveImports returns the projects transitively reachable from id
// via Imports edges (not following Extends or Aggregates), computing and
// caching the result on first call.
func (t *Tree) TransitiveImports(id ProjectID) []ProjectID {
	p := t.projects[id]
	if p == nil {
		return nil
	}
	if p.transitiveImportsSet {
		return p.transitiveImports
	}
	visited := make(map[ProjectID]bool)
	var order []ProjectID
	var walk func(ProjectID)
	walk = func(cur ProjectID) {
		cp := t.projects[cur]
		if cp == nil {
			return
		}
		for _, imp := range cp.Imports {
			if visited[imp] {
				continue
			}
			visited[imp] = true
			order = append(order, imp)
			walk(imp)
		}
	}
	walk(id)
	p.transitiveImports = order
	p.transitiveImportsSet = true
	return order
}
