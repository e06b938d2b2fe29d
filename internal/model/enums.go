// Package model implements the data model: Project, Language, Source and
// the enumerations that describe them, plus the Tree that owns all three
// and answers the graph questions the rest of the driver needs (ultimate
// extender, file-name lookup).
//
// Entities are kept in id-keyed arenas rather than linked purely by
// pointer: Source ↔ Unit and Project ↔ Language ↔ Source naturally form
// cycles, and representing them as ids resolved through the Tree keeps
// traversal state (visited sets, iterator contexts) as plain id-sets
// instead of pointer-identity bookkeeping.
package model

// Qualifier is the closed set of project kinds.
type Qualifier int

const (
	QualifierStandard Qualifier = iota
	QualifierLibrary
	QualifierAbstract
	QualifierAggregate
	QualifierAggregateLibrary
)

func (q Qualifier) String() string {
	switch q {
	case QualifierStandard:
		return "standard"
	case QualifierLibrary:
		return "library"
	case QualifierAbstract:
		return "abstract"
	case QualifierAggregate:
		return "aggregate"
	case QualifierAggregateLibrary:
		return "aggregate library"
	default:
		return "unknown qualifier"
	}
}

// IsAggregate reports whether q is one of the two aggregate qualifiers.
func (q Qualifier) IsAggregate() bool {
	return q == QualifierAggregate || q == QualifierAggregateLibrary
}

// LibraryKind is the closed set of library kinds, meaningful only when a
// Project's Qualifier is QualifierLibrary or QualifierAggregateLibrary.
type LibraryKind int

const (
	LibraryKindStatic LibraryKind = iota
	LibraryKindDynamic
	LibraryKindRelocatable
	LibraryKindStaticPic
)

// DependencyKind selects which dep-parser (internal/depparse) applies to a
// Language's successful compiles.
type DependencyKind int

const (
	DependencyNone DependencyKind = iota
	DependencyMakefile
	DependencyUnitManifest
)

// PathSyntax selects how a source path is rendered in the source-name
// switch.
type PathSyntax int

const (
	PathSyntaxCanonical PathSyntax = iota
	PathSyntaxHost
)

// Compilable is the tri-state cache on Source, set to Yes/No only after
// the source's timestamp has been observed.
type Compilable int

const (
	CompilableUnknown Compilable = iota
	CompilableYes
	CompilableNo
)

// SourceKind distinguishes specification, implementation and separate
// (subunit) source files.
type SourceKind int

const (
	SourceKindSpec SourceKind = iota
	SourceKindImpl
	SourceKindSeparate
)

// Casing is the naming "casing image" used by %c in config-file pattern
// expansion.
type Casing int

const (
	CasingLower Casing = iota
	CasingUpper
	CasingMixed
)

// Purpose distinguishes an ordinary compile from a post-compile
// dependency-extraction re-spawn.
type Purpose int

const (
	PurposeCompilation Purpose = iota
	PurposeDependencyExtraction
)
