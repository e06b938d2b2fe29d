package depparse

import (
	"bufio"
	"fmt"
	"strings"
)

// ParseUnitManifest parses a compiler-unit-manifest dependency file: a
// structured record per compiled unit with sub-records for each imported
// unit (source basename and dep-file basename) and, when includeSubunits
// is set (driven by the no_split_units flag), subunit dependency records.
//
// The concrete line format — one directive per line, fields
// whitespace-separated — is this driver's own rendering; no textual
// syntax is dictated upstream, so the format is designed to be the
// simplest thing that carries every field a manifest record needs:
//
//	UNIT <name>
//	WITH <source-basename> <dep-file-basename>
//	SUBUNIT <subunit-name> OF <parent-unit-name> <source-basename>
func ParseUnitManifest(data []byte, includeSubunits bool) (*UnitManifest, error) {
	m := &UnitManifest{}
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "UNIT":
			if len(fields) != 2 {
				return nil, fmt.Errorf("depparse: line %d: UNIT wants 1 field, got %d", lineNo, len(fields)-1)
			}
			m.UnitName = fields[1]
		case "WITH":
			if len(fields) != 3 {
				return nil, fmt.Errorf("depparse: line %d: WITH wants 2 fields, got %d", lineNo, len(fields)-1)
			}
			m.Used = append(m.Used, UsedUnit{
				SourceBasename:  fields[1],
				DepFileBasename: fields[2],
			})
		case "SUBUNIT":
			if !includeSubunits {
				continue
			}
			// SUBUNIT <name> OF <parent> <source-basename>
			if len(fields) != 5 || fields[2] != "OF" {
				return nil, fmt.Errorf("depparse: line %d: malformed SUBUNIT record", lineNo)
			}
			m.Subunits = append(m.Subunits, SubunitDependency{
				SubunitName:    fields[1],
				ParentUnitName: fields[3],
				SourceBasename: fields[4],
			})
		default:
			return nil, fmt.Errorf("depparse: line %d: unknown directive %q", lineNo, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if m.UnitName == "" {
		return nil, fmt.Errorf("depparse: unit manifest missing UNIT record")
	}
	return m, nil
}
