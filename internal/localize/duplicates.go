package localize

import (
	"fmt"
	"slices"
)

// DuplicatePolicy decides what happens to keys defined more than once.
type DuplicatePolicy string

const (
	// DuplicatesPreserve keeps every duplicate, adjacent and in source order.
	DuplicatesPreserve DuplicatePolicy = "preserve"
	// DuplicatesReject fails the file when any key repeats.
	DuplicatesReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy validates a policy name. An empty name means preserve.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(s); p {
	case "":
		return DuplicatesPreserve, nil
	case DuplicatesPreserve, DuplicatesReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want %q or %q)", s, DuplicatesPreserve, DuplicatesReject)
	}
}

// duplicateDiagnostics expects rows stably sorted by key, so the first row
// of each run of equal keys is the earliest definition.
func duplicateDiagnostics(rows []Row) []Diagnostic {
	var diags []Diagnostic
	first := 0
	for i := 1; i < len(rows); i++ {
		if rows[i].Key != rows[first].Key {
			first = i
			continue
		}
		diags = append(diags, Diagnostic{
			Path:    rows[i].Path,
			Line:    rows[i].Line,
			Message: fmt.Sprintf("%v %q, first defined on line %d", ErrDuplicateKey, rows[i].Key, rows[first].Line),
		})
	}

	slices.SortFunc(diags, func(a, b Diagnostic) int { return a.Line - b.Line })
	return diags
}
