// Package depparse implements the two dependency-file post-processors that
// run after a successful compile: Makefile-style `.d` output and the
// structured compiler-unit-manifest format. Both parsers extract the set
// of sources a compile pulled in; internal/legality then checks each one
// against the project-import graph.
package depparse

// MakefileDeps is the result of parsing a Make-style dependency file.
type MakefileDeps struct {
	Target        string
	Prerequisites []string
}

// UsedUnit is one `with`ed-unit sub-record of a unit-manifest record: the
// basename of the source that was imported and the basename of its own
// dep file.
type UsedUnit struct {
	SourceBasename  string
	DepFileBasename string
}

// SubunitDependency is a subunit dependency record, only present when
// subunits are being tracked independently of their parent unit.
type SubunitDependency struct {
	SubunitName    string
	ParentUnitName string
	SourceBasename string
}

// UnitManifest is the result of parsing a compiler-unit-manifest
// dependency file for one compiled unit.
type UnitManifest struct {
	UnitName string
	Used     []UsedUnit
	Subunits []SubunitDependency
}
