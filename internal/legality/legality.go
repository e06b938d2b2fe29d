// Package legality implements the import-legality checker that runs
// after a dependency-file parse discovers a source a compile pulled in.
// Given the project that owns the compiled source and the project that
// owns a discovered dependency, it decides whether the discovery is
// allowed, and if not, which rule it violates.
package legality

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/gprtools/compiledriver/internal/model"
)

// Classification is the outcome of checking one discovered dependency.
type Classification int

const (
	// SameProject covers both literal identity and an extension
	// relationship in either direction: the two projects share an
	// ultimate extender.
	SameProject Classification = iota
	// DirectImport means the compiling project (or one of its directly
	// imported projects' extenders) directly imports the dependency's
	// project.
	DirectImport
	// IndirectImport means indirect imports are enabled and the
	// dependency's project is reachable from some project already
	// recorded as a direct import of this compile.
	IndirectImport
	// InterfaceHidden means the dependency's project is reachable but the
	// dependency source itself is not part of that project's declared
	// interface.
	InterfaceHidden
	// Illegal means none of the above applies: the compile must be
	// invalidated.
	Illegal
)

func (c Classification) String() string {
	switch c {
	case SameProject:
		return "same project"
	case DirectImport:
		return "direct import"
	case IndirectImport:
		return "indirect import"
	case InterfaceHidden:
		return "interface hidden"
	case Illegal:
		return "illegal"
	default:
		return "unknown classification"
	}
}

// Allowed reports whether c permits the compile to stand.
func (c Classification) Allowed() bool {
	return c == SameProject || c == DirectImport || c == IndirectImport
}

// Checker answers import-legality questions against one Tree's import
// graph. It is built once per compile phase and reused across every
// compile's post-processing.
type Checker struct {
	tree            *model.Tree
	graph           *simple.DirectedGraph
	indirectImports bool
}

// New builds a Checker over tree's current import edges. Every project's
// direct Imports are recorded as graph edges, with an additional edge to
// the ultimate extender of each imported project so that importing a
// project also legalizes access through whatever extends it.
func New(tree *model.Tree, indirectImports bool) *Checker {
	g := simple.NewDirectedGraph()
	for _, p := range tree.Projects() {
		for _, imp := range p.Imports {
			addEdge(g, p.ID, imp)
			if ult := tree.UltimateExtender(imp); ult != imp {
				addEdge(g, p.ID, ult)
			}
		}
	}
	return &Checker{tree: tree, graph: g, indirectImports: indirectImports}
}

func addEdge(g *simple.DirectedGraph, from, to model.ProjectID) {
	if from == to {
		return
	}
	g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
}

// ImportsVisited is the per-compile hash set of projects recorded as
// directly imported so far, threaded through successive Classify calls
// for the same compile so later indirect-import checks can reach through
// it.
type ImportsVisited map[model.ProjectID]bool

// Classify decides the classification of a dependency on dep discovered
// while compiling a source owned by compiling. When the returned project
// id is valid, callers must add it to visited before classifying further
// dependencies of the same compile — this holds even for an
// InterfaceHidden result reached through a direct import: the import-graph
// edge the classification records is real and legalizes later indirect
// reaches through depProject, independent of whether this particular
// dependency source is invalidated for not being in depProject's declared
// interface. Interface-hiding is an additional gate applied on top of the
// direct/indirect relationship, never a substitute for it: it must never
// be the first thing checked, or a hidden dependency that happens to
// appear before a legitimately-direct-imported one in the same dep file
// would silently drop that project from visited.
func (c *Checker) Classify(compiling model.ProjectID, visited ImportsVisited, dep *model.Source) (Classification, model.ProjectID) {
	depProject := dep.ProjectID

	if c.tree.UltimateExtender(compiling) == c.tree.UltimateExtender(depProject) {
		return SameProject, 0
	}

	if c.graph.HasEdgeFromTo(int64(compiling), int64(depProject)) {
		if !dep.InInterfaces {
			return InterfaceHidden, depProject
		}
		return DirectImport, depProject
	}

	if c.indirectImports {
		for from := range visited {
			if c.reachable(from, depProject) {
				if !dep.InInterfaces {
					return InterfaceHidden, 0
				}
				return IndirectImport, 0
			}
		}
	}

	return Illegal, 0
}

// reachable reports whether to is reachable from from by following
// recorded import edges.
func (c *Checker) reachable(from, to model.ProjectID) bool {
	if from == to {
		return true
	}
	if c.graph.Node(int64(from)) == nil {
		return false
	}
	found := false
	bfs := traverse.BFS{}
	bfs.Walk(c.graph, simple.Node(from), func(n graph.Node, _ int) bool {
		if model.ProjectID(n.ID()) == to {
			found = true
			return true
		}
		return false
	})
	return found
}
