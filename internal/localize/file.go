// Package localize normalizes `"key" = "value";` localization files: it
// parses every line, reports all malformed lines at once, sorts entries by
// key and atomically rewrites the file in canonical form.
package localize

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"strings-sorter/internal/parser"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one entry of a localization file.
type Row struct {
	Key   string
	Value string
	// Path is the file the row was read from.
	Path string
	// Line is the 1-based source line.
	Line int
	// Number is the 1-based position after sorting. It is never written out.
	Number int
}

// File is the result of normalizing one localization file.
type File struct {
	Path string
	// Rows are sorted by key.
	Rows []Row
	// Content is the canonical text of the file.
	Content string
	// Changed reports whether Content differs from what was on disk.
	Changed bool
}

// Options control a single Process run.
type Options struct {
	Duplicates DuplicatePolicy
	// DryRun skips Persist; File.Changed still reports whether a write was due.
	DryRun bool
}

// Process runs the whole pipeline for path: load, sort, serialize, persist.
// A file that is already canonical is left untouched. On failure nothing is
// written and the returned error carries every diagnostic found.
func Process(path string, opts Options) (*File, error) {
	rows, raw, err := load(path)
	if err != nil {
		return nil, err
	}

	Sort(rows)

	if opts.Duplicates == DuplicatesReject {
		if diags := duplicateDiagnostics(rows); len(diags) > 0 {
			return nil, &FileError{Path: path, Diagnostics: diags, Err: ErrDuplicateKey}
		}
	}

	content, err := Serialize(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f := &File{
		Path:    path,
		Rows:    rows,
		Content: content,
		Changed: content != string(raw),
	}

	if f.Changed && !opts.DryRun {
		if err := Persist(path, content); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Load reads path and parses every line. If any line is malformed the
// returned *FileError lists all of them.
func Load(path string) ([]Row, error) {
	rows, _, err := load(path)
	return rows, err
}

func load(path string) ([]Row, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	rows, diags := Parse(path, raw)
	if len(diags) > 0 {
		return nil, nil, &FileError{Path: path, Diagnostics: diags, Err: ErrFileParseFailed}
	}
	return rows, raw, nil
}

// Parse extracts rows from file content. It never stops at the first bad
// line: every malformed line yields one diagnostic.
func Parse(path string, data []byte) ([]Row, []Diagnostic) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var (
		rows  []Row
		diags []Diagnostic
	)
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")

		pair, ok, err := parser.ParseLine(line)
		if err != nil {
			diags = append(diags, Diagnostic{
				Path:    path,
				Line:    i + 1,
				Message: fmt.Sprintf("%v: %v", ErrLineMalformed, err),
			})
			continue
		}
		if !ok {
			continue
		}

		rows = append(rows, Row{
			Key:   pair.Key,
			Value: pair.Value,
			Path:  path,
			Line:  i + 1,
		})
	}
	return rows, diags
}

// Sort orders rows by key using byte comparison. Rows with equal keys keep
// their source order. Number is reassigned to the sorted position.
func Sort(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		return strings.Compare(a.Key, b.Key)
	})
	for i := range rows {
		rows[i].Number = i + 1
	}
}

// Serialize renders sorted rows one per line with no trailing newline.
func Serialize(rows []Row) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: no entries to write", ErrEmptyResult)
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = parser.Format(parser.Pair{Key: r.Key, Value: r.Value})
	}
	return strings.Join(lines, "\n"), nil
}

// IsDiagnostic reports whether err was produced by file content rather
// than by the filesystem.
func IsDiagnostic(err error) bool {
	return errors.Is(err, ErrFileParseFailed) ||
		errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrEmptyResult)
}
