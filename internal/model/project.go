package model

// Project is a unit of the build graph: identity, object directory, the
// languages it declares, and its import/extension/aggregation edges.
type Project struct {
	ID          ProjectID
	Name        string
	Qualifier   Qualifier
	ObjectDir   string
	LibraryKind LibraryKind // meaningful only if Qualifier is QualifierLibrary or QualifierAggregateLibrary

	Languages []LanguageID

	// Imports lists the projects directly imported ("with"ed) by this one.
	Imports []ProjectID

	// Extends is the single project this one extends ("inherits and
	// overrides"), or 0 if this project does not extend anything.
	Extends ProjectID

	// Aggregates lists member projects; populated only when Qualifier is
	// one of the aggregate qualifiers.
	Aggregates []ProjectID

	// Encapsulated marks a standalone-encapsulated library project, as
	// declared by the (out of scope) project loader. The iterator
	// propagates this downward through imports as in_encapsulated_lib.
	Encapsulated bool

	// ConfigChecked guards one-shot config-file generation.
	ConfigChecked bool

	// GeneratedConfigPath caches the path ConfigFileGenerator.Generate
	// produced once ConfigChecked is set, so later compiles in the same
	// project reuse it without regenerating.
	GeneratedConfigPath string

	// ExternallyBuilt marks a project whose objects the driver never
	// recompiles unless always-compile was requested.
	ExternallyBuilt bool

	// transitiveImports caches the result of walking Imports transitively;
	// invalidated only by rebuilding the Tree, never mutated after the
	// first computation.
	transitiveImports    []ProjectID
	transitiveImportsSet bool
}
