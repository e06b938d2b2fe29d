package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gprtools/compiledriver/internal/model"
)

// treeFixture is the on-disk shape a resolved project tree is read from.
// It stands in for the (out of scope) project-description loader: a real
// driver receives an already-resolved model.Tree from that layer, so this
// JSON document only needs to be detailed enough to exercise every
// MODULE this command wires together, not to be a faithful project-file
// parser.
type treeFixture struct {
	Projects []projectFixture `json:"projects"`
}

type projectFixture struct {
	Name            string             `json:"name"`
	Qualifier       string             `json:"qualifier"` // standard|library|abstract|aggregate|aggregate_library
	LibraryKind     string             `json:"library_kind"`
	ObjectDir       string             `json:"object_dir"`
	Imports         []string           `json:"imports"`
	Extends         string             `json:"extends"`
	Aggregates      []string           `json:"aggregates"`
	Encapsulated    bool               `json:"encapsulated"`
	ExternallyBuilt bool               `json:"externally_built"`
	Languages       []languageFixture  `json:"languages"`
}

type languageFixture struct {
	Name    string             `json:"name"`
	Config  languageConfigFixture `json:"config"`
	Sources []sourceFixture    `json:"sources"`
}

type languageConfigFixture struct {
	Driver                string   `json:"driver"`
	LeadingSwitches       []string `json:"leading_switches"`
	TrailingSwitches      []string `json:"trailing_switches"`
	DependencyKind        string   `json:"dependency_kind"` // none|makefile|unit_manifest
	DependencyOptionTmpl  string   `json:"dependency_option_tmpl"`
	SourceFileSwitchTmpl  string   `json:"source_file_switch_tmpl"`
	ObjectFileSwitchTmpl  string   `json:"object_file_switch_tmpl"`
	MultiUnitSwitchTmpl   string   `json:"multi_unit_switch_tmpl"`
	IncludeOptionTmpl     string   `json:"include_option_tmpl"`
	MappingFileSwitchTmpl string   `json:"mapping_file_switch_tmpl"`
	ConfigFileSwitchTmpl  string   `json:"config_file_switch_tmpl"`
	IncludePathEnv        string   `json:"include_path_env"`
	IncludePathFileEnv    string   `json:"include_path_file_env"`
	PICOptions            []string `json:"pic_options"`
	CompatibleLanguages   []string `json:"compatible_languages"`
	PathSyntax            string   `json:"path_syntax"` // canonical|host
	ObjectSuffix          string   `json:"object_suffix"`
	ComputeDependencyArgv []string `json:"compute_dependency_argv"`
}

type sourceFixture struct {
	Path         string `json:"path"`
	Basename     string `json:"basename"`
	Kind         string `json:"kind"` // spec|impl|separate
	ObjectPath   string `json:"object_path"`
	DepPath      string `json:"dep_path"`
	SwitchesPath string `json:"switches_path"`
	InInterfaces bool   `json:"in_interfaces"`
	UnitName     string `json:"unit_name"`
}

// loadFixture reads path and builds a model.Tree plus a reference to
// every source in the fixture, in fixture order. rootProject, when set, is
// only checked to name a project; entriesFor does the filtering by
// reachability.
func loadFixture(path, rootProject string) (*model.Tree, []sourceRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var fx treeFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	tree := model.New()
	byName := make(map[string]model.ProjectID, len(fx.Projects))
	var refs []sourceRef

	for _, pf := range fx.Projects {
		qualifier, err := parseQualifier(pf.Qualifier)
		if err != nil {
			return nil, nil, fmt.Errorf("project %s: %w", pf.Name, err)
		}
		libKind, err := parseLibraryKind(pf.LibraryKind)
		if err != nil {
			return nil, nil, fmt.Errorf("project %s: %w", pf.Name, err)
		}
		p := &model.Project{
			Name:            pf.Name,
			Qualifier:       qualifier,
			LibraryKind:     libKind,
			ObjectDir:       pf.ObjectDir,
			Encapsulated:    pf.Encapsulated,
			ExternallyBuilt: pf.ExternallyBuilt,
		}
		id := tree.AddProject(p)
		byName[pf.Name] = id
	}

	for _, pf := range fx.Projects {
		p := tree.Project(byName[pf.Name])
		for _, imp := range pf.Imports {
			impID, ok := byName[imp]
			if !ok {
				return nil, nil, fmt.Errorf("project %s imports unknown project %s", pf.Name, imp)
			}
			p.Imports = append(p.Imports, impID)
		}
		for _, agg := range pf.Aggregates {
			aggID, ok := byName[agg]
			if !ok {
				return nil, nil, fmt.Errorf("project %s aggregates unknown project %s", pf.Name, agg)
			}
			p.Aggregates = append(p.Aggregates, aggID)
		}
		if pf.Extends != "" {
			parentID, ok := byName[pf.Extends]
			if !ok {
				return nil, nil, fmt.Errorf("project %s extends unknown project %s", pf.Name, pf.Extends)
			}
			tree.SetExtends(p.ID, parentID)
		}
	}

	for _, pf := range fx.Projects {
		projectID := byName[pf.Name]
		for _, lf := range pf.Languages {
			cfg, err := parseLanguageConfig(lf.Config)
			if err != nil {
				return nil, nil, fmt.Errorf("project %s language %s: %w", pf.Name, lf.Name, err)
			}
			lang := &model.Language{ProjectID: projectID, Name: lf.Name, Config: cfg}
			langID := tree.AddLanguage(lang)

			for _, sf := range lf.Sources {
				kind, err := parseSourceKind(sf.Kind)
				if err != nil {
					return nil, nil, fmt.Errorf("project %s source %s: %w", pf.Name, sf.Path, err)
				}
				basename := sf.Basename
				if basename == "" {
					basename = sf.Path
				}
				src := &model.Source{
					Basename:     basename,
					Path:         sf.Path,
					Kind:         kind,
					ObjectPath:   sf.ObjectPath,
					DepPath:      sf.DepPath,
					SwitchesPath: sf.SwitchesPath,
					InInterfaces: sf.InInterfaces,
					ProjectID:    projectID,
					LanguageID:   langID,
				}
				if sf.UnitName != "" {
					src.Unit = &model.Unit{Name: sf.UnitName}
				}

				// Compilable determination (spec/body pairing, stub
				// resolution) belongs to the out-of-scope project loader;
				// this fixture only needs the timestamp observed so
				// SetCompilable's invariant holds.
				if stat, err := os.Stat(sf.Path); err == nil {
					src.SourceTimestamp = stat.ModTime()
				} else {
					src.SourceTimestamp = time.Now()
				}
				src.SetCompilable(model.CompilableYes)

				tree.AddSource(src)
				refs = append(refs, sourceRef{project: pf.Name, language: lf.Name, source: src})
			}
		}
	}

	if rootProject != "" {
		if _, ok := byName[rootProject]; !ok {
			return nil, nil, fmt.Errorf("unknown root project %q", rootProject)
		}
	}

	return tree, refs, nil
}

// sourceRef keeps a source alongside the project/language names it came
// from, so invocationFor (and diagnostics) don't need to re-derive them
// from the tree.
type sourceRef struct {
	project  string
	language string
	source   *model.Source
}

func parseQualifier(s string) (model.Qualifier, error) {
	switch s {
	case "", "standard":
		return model.QualifierStandard, nil
	case "library":
		return model.QualifierLibrary, nil
	case "abstract":
		return model.QualifierAbstract, nil
	case "aggregate":
		return model.QualifierAggregate, nil
	case "aggregate_library":
		return model.QualifierAggregateLibrary, nil
	default:
		return 0, fmt.Errorf("unknown qualifier %q", s)
	}
}

func parseLibraryKind(s string) (model.LibraryKind, error) {
	switch s {
	case "", "static":
		return model.LibraryKindStatic, nil
	case "dynamic":
		return model.LibraryKindDynamic, nil
	case "relocatable":
		return model.LibraryKindRelocatable, nil
	case "static_pic":
		return model.LibraryKindStaticPic, nil
	default:
		return 0, fmt.Errorf("unknown library kind %q", s)
	}
}

func parseSourceKind(s string) (model.SourceKind, error) {
	switch s {
	case "", "impl":
		return model.SourceKindImpl, nil
	case "spec":
		return model.SourceKindSpec, nil
	case "separate":
		return model.SourceKindSeparate, nil
	default:
		return 0, fmt.Errorf("unknown source kind %q", s)
	}
}

func parsePathSyntax(s string) (model.PathSyntax, error) {
	switch s {
	case "", "canonical":
		return model.PathSyntaxCanonical, nil
	case "host":
		return model.PathSyntaxHost, nil
	default:
		return 0, fmt.Errorf("unknown path syntax %q", s)
	}
}

func parseDependencyKind(s string) (model.DependencyKind, error) {
	switch s {
	case "", "none":
		return model.DependencyNone, nil
	case "makefile":
		return model.DependencyMakefile, nil
	case "unit_manifest":
		return model.DependencyUnitManifest, nil
	default:
		return 0, fmt.Errorf("unknown dependency kind %q", s)
	}
}

func parseLanguageConfig(lf languageConfigFixture) (model.LanguageConfig, error) {
	depKind, err := parseDependencyKind(lf.DependencyKind)
	if err != nil {
		return model.LanguageConfig{}, err
	}
	syntax, err := parsePathSyntax(lf.PathSyntax)
	if err != nil {
		return model.LanguageConfig{}, err
	}
	return model.LanguageConfig{
		Driver:                lf.Driver,
		LeadingSwitches:       lf.LeadingSwitches,
		TrailingSwitches:      lf.TrailingSwitches,
		DependencyKind:        depKind,
		DependencyOptionTmpl:  lf.DependencyOptionTmpl,
		SourceFileSwitchTmpl:  lf.SourceFileSwitchTmpl,
		ObjectFileSwitchTmpl:  lf.ObjectFileSwitchTmpl,
		MultiUnitSwitchTmpl:   lf.MultiUnitSwitchTmpl,
		IncludeOptionTmpl:     lf.IncludeOptionTmpl,
		MappingFileSwitchTmpl: lf.MappingFileSwitchTmpl,
		ConfigFileSwitchTmpl:  lf.ConfigFileSwitchTmpl,
		IncludePathEnv:        lf.IncludePathEnv,
		IncludePathFileEnv:    lf.IncludePathFileEnv,
		PICOptions:            lf.PICOptions,
		CompatibleLanguages:   lf.CompatibleLanguages,
		PathSyntax:            syntax,
		ObjectSuffix:          lf.ObjectSuffix,
		ComputeDependencyArgv: lf.ComputeDependencyArgv,
	}, nil
}
