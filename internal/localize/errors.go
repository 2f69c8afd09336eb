package localize

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLineMalformed marks a diagnostic raised for a single unparseable line.
	ErrLineMalformed = errors.New("line malformed")
	// ErrFileParseFailed means at least one line of the file was malformed.
	ErrFileParseFailed = errors.New("file parse failed")
	// ErrDuplicateKey means the file repeats a key under the reject policy.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrEmptyResult means the file produced no entries to write.
	ErrEmptyResult = errors.New("empty result")
	// ErrPersistFailed means the canonical content could not be written back.
	ErrPersistFailed = errors.New("persist failed")
)

// Diagnostic is a problem tied to a line of a localization file.
type Diagnostic struct {
	Path    string
	Line    int
	Message string
}

// String renders the diagnostic the way compilers do, so IDEs can link to it.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: error: %s", d.Path, d.Line, d.Message)
}

// FileError aggregates every diagnostic found in one file.
type FileError struct {
	Path        string
	Diagnostics []Diagnostic
	Err         error
}

func (e *FileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Path, e.Err)
	switch len(e.Diagnostics) {
	case 0:
	case 1:
		fmt.Fprintf(&b, " (line %d: %s)", e.Diagnostics[0].Line, e.Diagnostics[0].Message)
	default:
		fmt.Fprintf(&b, " (%d problems)", len(e.Diagnostics))
	}
	return b.String()
}

func (e *FileError) Unwrap() error { return e.Err }

// DiagnosticsOf extracts reportable diagnostics from any pipeline error.
// Errors without line information are attributed to line 1 of path.
func DiagnosticsOf(path string, err error) []Diagnostic {
	if err == nil {
		return nil
	}
	var fe *FileError
	if errors.As(err, &fe) && len(fe.Diagnostics) > 0 {
		return fe.Diagnostics
	}
	return []Diagnostic{{Path: path, Line: 1, Message: err.Error()}}
}
