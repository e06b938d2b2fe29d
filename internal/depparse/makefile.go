package depparse

import "strings"

// ParseMakefile parses Make-style dependency output: lines of the form
// `<target>: <prereq> <prereq> ...`, with `\` at end of line indicating
// continuation, leading `#` lines and blank continuation-only lines
// ignored, the first colon separating target from prerequisites, and
// prerequisite tokens whitespace-separated.
//
// windows selects the platform-conditional escaping rule: `\\` is a
// literal pair and a lone `\` not followed by `\` or space is part of the
// path. The scope of this rule is deliberately narrow: it special-cases
// `\\` only when it occurs at the very first character of a prerequisite
// token, not anywhere inside one. DESIGN.md records the decision to
// reproduce that narrow scope exactly rather than widen it.
func ParseMakefile(data []byte, windows bool) (*MakefileDeps, error) {
	logical := joinContinuations(string(data))

	var target string
	var prereqText string
	for _, line := range logical {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			// Continuation of a previous target's prerequisite list with
			// no colon on this particular logical line.
			prereqText += " " + line
			continue
		}
		target = strings.TrimSpace(line[:idx])
		prereqText += " " + line[idx+1:]
	}

	return &MakefileDeps{
		Target:        target,
		Prerequisites: splitPrerequisites(prereqText, windows),
	}, nil
}

// joinContinuations splits data into physical lines and joins any line
// ending in `\` with the line that follows it, dropping the backslash and
// the newline it preceded (replaced by a single space so tokens on either
// side of the join don't merge).
func joinContinuations(data string) []string {
	raw := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")

	var logical []string
	var cur strings.Builder
	for _, line := range raw {
		if strings.HasSuffix(line, "\\") {
			cur.WriteString(strings.TrimSuffix(line, "\\"))
			cur.WriteByte(' ')
			continue
		}
		cur.WriteString(line)
		logical = append(logical, cur.String())
		cur.Reset()
	}
	if cur.Len() > 0 {
		logical = append(logical, cur.String())
	}
	return logical
}

// splitPrerequisites tokenizes a whitespace-separated prerequisite list,
// applying the windows backslash quirk described on ParseMakefile.
func splitPrerequisites(s string, windows bool) []string {
	var tokens []string
	var cur strings.Builder
	atTokenStart := true

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
			atTokenStart = true
		case c == '\\':
			switch {
			case windows && atTokenStart && i+1 < len(s) && s[i+1] == '\\':
				// Literal pair, collapsed to one backslash — but only
				// recognized at the first character of a token (the
				// quirk this parser reproduces deliberately).
				cur.WriteByte('\\')
				i++
			case i+1 < len(s) && s[i+1] == ' ':
				cur.WriteByte(' ') // escaped space stays part of the token
				i++
			default:
				cur.WriteByte('\\') // part of the path, not an escape
			}
			atTokenStart = false
		default:
			cur.WriteByte(c)
			atTokenStart = false
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}
