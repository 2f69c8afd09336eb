package parser

import (
	"regexp"
	"strings"
)

// quotedPattern matches a double-quoted string; a backslash escapes the next character.
var quotedPattern = regexp.MustCompile(`"([^"\\]*(?:\\.[^"\\]*)*)"`)

// ParseLine extracts the key/value pair from a single `"key" = "value";` line.
// Blank lines return ok == false and a nil error.
func ParseLine(line string) (pair Pair, ok bool, err error) {
	if strings.TrimSpace(line) == "" {
		return Pair{}, false, nil
	}

	keys, values := candidates(line)

	switch {
	case len(keys) > 1 || len(values) > 1:
		return Pair{}, false, &MalformedError{Reason: ReasonCardinality}
	case len(keys) == 0:
		return Pair{}, false, &MalformedError{Reason: ReasonNoKey}
	case len(values) == 0:
		return Pair{}, false, &MalformedError{Reason: ReasonNoValue}
	}

	return Pair{Key: keys[0], Value: values[0]}, true, nil
}

// Format renders a pair in canonical form. It is the inverse of ParseLine.
func Format(p Pair) string {
	var b strings.Builder
	b.Grow(len(p.Key) + len(p.Value) + 8)
	b.WriteByte('"')
	b.WriteString(p.Key)
	b.WriteString(`" = "`)
	b.WriteString(p.Value)
	b.WriteString(`";`)
	return b.String()
}

// candidates splits the quoted substrings of a line around the `=` token.
// Keys are the quoted strings before the first unquoted `=` (all of them when
// there is none); values are the quoted strings after it that are closed
// before the last unquoted `;`.
func candidates(line string) (keys, values []string) {
	locs := quotedPattern.FindAllStringSubmatchIndex(line, -1)
	eq := unquotedIndex(line, locs, '=', false)
	semi := unquotedIndex(line, locs, ';', true)

	for _, loc := range locs {
		text := line[loc[2]:loc[3]]
		switch {
		case eq < 0 || loc[1] <= eq:
			keys = append(keys, text)
		case semi >= loc[1]:
			values = append(values, text)
		case semi >= 0:
			keys = append(keys, text)
		}
	}
	return keys, values
}

// unquotedIndex finds c in the parts of line not covered by a quoted match.
// With last set it returns the final occurrence, otherwise the first.
func unquotedIndex(line string, locs [][]int, c byte, last bool) int {
	found := -1
	start := 0
	for i := 0; i <= len(locs); i++ {
		end, next := len(line), len(line)
		if i < len(locs) {
			end, next = locs[i][0], locs[i][1]
		}

		gap := line[start:end]
		if last {
			if j := strings.LastIndexByte(gap, c); j >= 0 {
				found = start + j
			}
		} else if j := strings.IndexByte(gap, c); j >= 0 {
			return start + j
		}
		start = next
	}
	return found
}
