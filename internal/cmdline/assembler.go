// Package cmdline implements the command-line assembler, the include-path
// delivery disciplines, config-file materialization, and mapping-file
// switch handling that together build the argv (and side-channel env
// vars / temp files) for a single compile.
package cmdline

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gprtools/compiledriver/internal/model"
)

// Invocation carries the per-invocation switch lists that come from
// outside this driver (the builder/project-description layer): switches
// that apply uniformly across all languages or all sources, and the
// per-source or per-language override already resolved by the caller.
type Invocation struct {
	BuilderAllLanguages []string
	BuilderThisLanguage []string
	// SourceSwitches is the result of resolving Compiler'Switches(file) if
	// present, else falling back to Compiler'Switches(language); that
	// precedence is a property of the (out of scope) project-description
	// model, so the caller resolves it before calling Assemble.
	SourceSwitches      []string
	AllLanguagesCompile []string
	ThisLanguageCompile []string
}

// Result is the assembled argv plus the boundary the staleness oracle
// needs: the count of leading elements that make up
// `last_switches_for_file`, i.e. everything through the mapping-file
// switch but excluding the trailing/source-name/object/multi-unit
// switches appended after it.
type Result struct {
	Argv                 []string
	LastSwitchesForFile int
}

// Assemble builds the compiler argv for source in the 15-step order.
// includeSwitches, configSwitches and mappingSwitches are precomputed by
// ResolveIncludePaths and the ConfigFileGenerator/PopMapping template
// expansions respectively (nil when the corresponding discipline doesn't
// place a switch in argv at all).
func Assemble(source *model.Source, project *model.Project, cfg model.LanguageConfig, inv Invocation, depPath string, includeSwitches []string, configSwitches []string, mappingSwitches []string) Result {
	var argv []string

	// 1. leading required switches.
	argv = append(argv, cfg.LeadingSwitches...)
	// 2. builder-level switches for all languages.
	argv = append(argv, inv.BuilderAllLanguages...)
	// 3. builder-level switches for this language.
	argv = append(argv, inv.BuilderThisLanguage...)
	// 4. PIC option, non-static library projects only.
	if isNonStaticLibrary(project) {
		argv = append(argv, cfg.PICOptions...)
	}
	// 5. per-source (or per-language default) switches.
	argv = append(argv, inv.SourceSwitches...)
	// 6. all-languages compile switches from the invocation.
	argv = append(argv, inv.AllLanguagesCompile...)
	// 7. per-language compile switches from the invocation.
	argv = append(argv, inv.ThisLanguageCompile...)
	// 8. dependency-generation switch.
	if cfg.DependencyOptionTmpl != "" && depPath != "" {
		argv = append(argv, expandTemplate(cfg.DependencyOptionTmpl, depPath)...)
	}
	// 9. include-directory switches (rule 1 only; rules 2/3 go via env).
	argv = append(argv, includeSwitches...)
	// 10. config-file switch.
	argv = append(argv, configSwitches...)
	// 11. mapping-file switch.
	argv = append(argv, mappingSwitches...)

	lastSwitchesForFile := len(argv)

	// 12. trailing required switches.
	argv = append(argv, cfg.TrailingSwitches...)
	// 13. source-name switch.
	argv = append(argv, expandTemplate(cfg.SourceFileSwitchTmpl, renderPath(source.Path, cfg.PathSyntax))...)
	// 14. object-file switch.
	if cfg.ObjectFileSwitchTmpl != "" {
		argv = append(argv, expandTemplate(cfg.ObjectFileSwitchTmpl, source.ObjectPath)...)
	} else if source.UnitIndex != 0 {
		argv = append(argv, "-o", source.ObjectPath)
	}
	// 15. multi-unit index switch.
	if source.UnitIndex != 0 && cfg.MultiUnitSwitchTmpl != "" {
		argv = append(argv, expandTemplate(cfg.MultiUnitSwitchTmpl, strconv.Itoa(source.UnitIndex))...)
	}

	return Result{Argv: argv, LastSwitchesForFile: lastSwitchesForFile}
}

func isNonStaticLibrary(p *model.Project) bool {
	isLibrary := p.Qualifier == model.QualifierLibrary || p.Qualifier == model.QualifierAggregateLibrary
	return isLibrary && p.LibraryKind != model.LibraryKindStatic
}

// expandTemplate substitutes value into tmpl's single %s verb, then
// splits the result on whitespace: a template like "-MD -MF %s" yields
// three tokens, while "-gnatep=%s" yields one.
func expandTemplate(tmpl, value string) []string {
	if tmpl == "" {
		return nil
	}
	return strings.Fields(fmt.Sprintf(tmpl, value))
}

// renderPath renders path in the syntax a language config declares for
// its source-name switch.
func renderPath(path string, syntax model.PathSyntax) string {
	if syntax == model.PathSyntaxCanonical {
		return filepath.ToSlash(path)
	}
	return filepath.FromSlash(path)
}
