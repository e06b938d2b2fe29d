// Package projgraph implements the project-graph iterator: a depth-first
// walk from a root project over Imports edges (and, optionally, Aggregates
// members), substituting the ultimate extender for any non-abstract
// extended project it reaches, propagating an encapsulated-library flag
// downward, and visiting each project at most once per traversal context.
package projgraph

import "github.com/gprtools/compiledriver/internal/model"

// Order selects whether Visit runs before or after a project's children
// are walked.
type Order int

const (
	PreOrder Order = iota
	PostOrder
)

// Context carries the state threaded through one traversal context: the
// by-name visited set that enforces "each project visited once per
// context", and whether an ancestor is a standalone-encapsulated library.
type Context struct {
	seen              map[string]bool
	InEncapsulatedLib bool
}

func newContext(inEncapsulatedLib bool) *Context {
	return &Context{seen: make(map[string]bool), InEncapsulatedLib: inEncapsulatedLib}
}

// sibling returns a Context sharing this context's seen set (for
// descending through an ordinary import edge, where dedup must span the
// whole subtree rooted at the original root).
func (c *Context) sibling(inEncapsulatedLib bool) *Context {
	return &Context{seen: c.seen, InEncapsulatedLib: inEncapsulatedLib}
}

// Visit is called once per visited project, in the order selected by the
// Iterator. Returning an error aborts the walk.
type Visit func(ctx *Context, p *model.Project) error

// Iterator walks a Tree's project graph.
type Iterator struct {
	tree               *model.Tree
	order              Order
	descendAggregates  bool
}

// New returns an Iterator over tree, visiting in order and, when
// descendAggregates is set, recursing into the member projects of any
// aggregate project it reaches.
func New(tree *model.Tree, order Order, descendAggregates bool) *Iterator {
	return &Iterator{tree: tree, order: order, descendAggregates: descendAggregates}
}

// Walk traverses the graph starting at root, calling visit once per
// project reached (subject to the one-visit-per-context rule).
func (it *Iterator) Walk(root model.ProjectID, visit Visit) error {
	return it.walk(newContext(false), root, visit)
}

func (it *Iterator) walk(ctx *Context, id model.ProjectID, visit Visit) error {
	p := it.tree.Project(id)
	if p == nil {
		return nil
	}

	resolvedID := id
	if p.Qualifier != model.QualifierAbstract {
		resolvedID = it.tree.UltimateExtender(id)
	}
	resolved := it.tree.Project(resolvedID)
	if resolved == nil {
		resolved = p
		resolvedID = id
	}

	if ctx.seen[resolved.Name] {
		return nil
	}
	ctx.seen[resolved.Name] = true

	inEncapsulatedLib := ctx.InEncapsulatedLib || resolved.Encapsulated

	if it.order == PreOrder {
		if err := visit(ctx, resolved); err != nil {
			return err
		}
	}

	for _, imp := range resolved.Imports {
		if err := it.walk(ctx.sibling(inEncapsulatedLib), imp, visit); err != nil {
			return err
		}
	}

	if it.descendAggregates && resolved.Qualifier.IsAggregate() {
		for _, member := range resolved.Aggregates {
			if err := it.walk(newContext(inEncapsulatedLib), member, visit); err != nil {
				return err
			}
		}
	}

	if it.order == PostOrder {
		if err := visit(ctx, resolved); err != nil {
			return err
		}
	}

	return nil
}
