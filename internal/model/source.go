package model

import "time"

// Unit is the spec/body pair (plus optional subunit parent) for a
// compilation unit, referenced by Source.Unit.
type Unit struct {
	Name     string
	SpecFile SourceID // 0 if this unit has no separate spec
	BodyFile SourceID // 0 if this unit has no separate body
}

// Source is a single input file tracked by the driver.
type Source struct {
	ID SourceID

	Basename        string
	DisplayBasename string
	Path            string // absolute
	Kind            SourceKind

	Unit *Unit
	// UnitIndex is the multi-unit index within Path; 0 means "not a
	// multi-unit member".
	UnitIndex int

	ProjectID  ProjectID
	LanguageID LanguageID

	// ObjectProjectID is resolved once object-path resolution runs, to
	// the ultimate extender of the source's owning project.
	ObjectProjectID ProjectID

	ObjectPath   string
	DepPath      string
	SwitchesPath string

	SourceTimestamp time.Time
	ObjectTimestamp time.Time
	DepTimestamp    time.Time

	LocallyRemoved bool
	InInterfaces   bool

	// ReplacedBy is set when another source supersedes this one (e.g. a
	// generated body overriding a stub); 0 if not replaced.
	ReplacedBy SourceID

	// Compilable is set to Yes/No only after SourceTimestamp has been
	// observed — see SetCompilable.
	Compilable Compilable
}

// SetCompilable enforces the invariant that the compilable cache is only
// ever set once the source's timestamp has been observed.
func (s *Source) SetCompilable(v Compilable) {
	if v != CompilableUnknown && s.SourceTimestamp.IsZero() {
		panic("model: SetCompilable(Yes/No) before source timestamp observed")
	}
	s.Compilable = v
}
