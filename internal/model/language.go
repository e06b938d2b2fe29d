package model

// Language is a Project's declared language: its ordered sources and its
// LanguageConfig.
type Language struct {
	ID        LanguageID
	ProjectID ProjectID
	Name      string

	// Sources is the ordered list of sources in this language, forming
	// the next-in-language chain carried on Source.
	Sources []SourceID

	Config LanguageConfig

	// mappingPool is the per-language pool of reusable mapping-file
	// paths, a stack: push on return, pop on request.
	mappingPool []string
}

// PopMappingFile pops a recycled mapping-file path, or returns ("", false)
// if the pool is empty.
func (l *Language) PopMappingFile() (string, bool) {
	n := len(l.mappingPool)
	if n == 0 {
		return "", false
	}
	path := l.mappingPool[n-1]
	l.mappingPool = l.mappingPool[:n-1]
	return path, true
}

// PushMappingFile returns a mapping-file path to the pool for reuse.
func (l *Language) PushMappingFile(path string) {
	l.mappingPool = append(l.mappingPool, path)
}

// NamingData describes the per-language naming scheme used by config-file
// pattern expansion: %b, %s, %d, %c substitutions.
type NamingData struct {
	SpecSuffix     string
	BodySuffix     string
	DotReplacement string
	Casing         Casing
}

// ConfigFilePatterns are the optional per-language config-file body/spec/
// index pattern templates.
type ConfigFilePatterns struct {
	Spec  string
	Body  string
	Index string
}

// LanguageConfig carries every per-language compiler-driving detail.
// Switch "templates" are plain strings with a single `%s` verb where the
// runtime value (a path, typically) is substituted: simple Printf-style
// templates rather than a structured AST.
type LanguageConfig struct {
	Driver string

	LeadingSwitches  []string
	TrailingSwitches []string

	DependencyKind         DependencyKind
	DependencyOptionTmpl   string // e.g. "-MD -MF %s" or "-gnatep=%s"
	SourceFileSwitchTmpl   string // e.g. "%s" (bare) or "-c %s"
	ObjectFileSwitchTmpl   string // e.g. "-o %s"; empty means "-o <obj>" fallback for multi-unit members only
	MultiUnitSwitchTmpl    string // e.g. "-gnateI%s"
	IncludeOptionTmpl      string // e.g. "-I%s"; empty disables the -I switch discipline
	MappingFileSwitchTmpl  string // e.g. "-gnatem=%s"
	ConfigFileSwitchTmpl   string // e.g. "-gnatec=%s"
	IncludePathEnv         string // env var for the include-path-env discipline
	IncludePathFileEnv     string // env var for the include-path-file discipline

	PICOptions          []string
	CompatibleLanguages []string
	PathSyntax          PathSyntax

	ConfigFilePatterns *ConfigFilePatterns

	ObjectSuffix string
	Naming       NamingData

	// ComputeDependencyArgv, when non-empty, names a post-compile
	// dependency-extractor tool run once after every successful compile
	// whose dep file isn't already a side effect of the compile itself
	// (the Makefile kind, typically). %s is replaced with the source
	// path; the tool's stdout is redirected to the dep file.
	ComputeDependencyArgv []string
}
