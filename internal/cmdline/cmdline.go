// Package cmdline converts between argv slices and the single argument
// string persisted in presets, with shell-style quoting so arguments
// containing spaces round-trip.
package cmdline

import (
	"fmt"
	"strings"
)

// Join renders argv as a single quoted string.
func Join(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	parts := make([]string, 0, len(argv))
	for _, a := range argv {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\r\n'\"\\$`(){}[]*?!;|&<>") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Split parses a quoted argument string back into argv.
func Split(s string) ([]string, error) {
	var out []string

	var buf strings.Builder
	inSingle := false
	inDouble := false
	escaped := false
	quoted := false // current token had quotes; keeps '' as an empty arg

	flush := func() {
		if buf.Len() == 0 && !quoted {
			return
		}
		out = append(out, buf.String())
		buf.Reset()
		quoted = false
	}

	for _, r := range s {
		if escaped {
			buf.WriteRune(r)
			escaped = false
			continue
		}

		if !inSingle && r == '\\' {
			escaped = true
			continue
		}

		if !inDouble && r == '\'' {
			inSingle = !inSingle
			quoted = true
			continue
		}
		if !inSingle && r == '"' {
			inDouble = !inDouble
			quoted = true
			continue
		}

		if !inSingle && !inDouble {
			if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
				flush()
				continue
			}
		}

		buf.WriteRune(r)
	}

	if escaped {
		return nil, fmt.Errorf("unfinished escape in argument string")
	}
	if inSingle || inDouble {
		return nil, fmt.Errorf("unterminated quote in argument string")
	}

	flush()
	return out, nil
}
