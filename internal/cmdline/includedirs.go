package cmdline

import "github.com/gprtools/compiledriver/internal/model"

type includeDirsKey struct {
	project  model.ProjectID
	language model.LanguageID
}

// IncludeDirsCache memoizes the include-directory set for a (project,
// language) pair, rebuilt only when that pair changes across successive
// compiles — consecutive sources in the same language of the same
// project reuse the same slice.
type IncludeDirsCache struct {
	tree  *model.Tree
	cache map[includeDirsKey][]string
}

func NewIncludeDirsCache(tree *model.Tree) *IncludeDirsCache {
	return &IncludeDirsCache{tree: tree, cache: make(map[includeDirsKey][]string)}
}

// Dirs returns the object directories of project's ultimate extender plus
// every project transitively imported that declares a language in lang's
// compatible-languages set.
func (c *IncludeDirsCache) Dirs(project model.ProjectID, language model.LanguageID, lang model.LanguageConfig) []string {
	key := includeDirsKey{project, language}
	if dirs, ok := c.cache[key]; ok {
		return dirs
	}

	ultimate := c.tree.UltimateExtender(project)
	dirs := []string{}
	if p := c.tree.Project(ultimate); p != nil && p.ObjectDir != "" {
		dirs = append(dirs, p.ObjectDir)
	}

	compatible := make(map[string]bool, len(lang.CompatibleLanguages))
	for _, name := range lang.CompatibleLanguages {
		compatible[name] = true
	}

	for _, impID := range c.tree.TransitiveImports(project) {
		imp := c.tree.Project(impID)
		if imp == nil {
			continue
		}
		for _, langID := range imp.Languages {
			l := c.tree.Language(langID)
			if l != nil && compatible[l.Name] && imp.ObjectDir != "" {
				dirs = append(dirs, imp.ObjectDir)
				break
			}
		}
	}

	c.cache[key] = dirs
	return dirs
}
