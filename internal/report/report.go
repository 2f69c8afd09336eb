// Package report surfaces the result of normalizing each file: compiler-style
// diagnostic lines for IDEs, structured logs, and an optional run ledger.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"strings-sorter/internal/localize"
	"strings-sorter/internal/textutil"
)

// Status is the final state of one file.
type Status string

const (
	StatusSorted    Status = "sorted"
	StatusUnchanged Status = "unchanged"
	// StatusUnsorted is reported in check mode for files that would change.
	StatusUnsorted Status = "unsorted"
	// StatusInvalid means the file content was rejected.
	StatusInvalid Status = "invalid"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome is what one file's pipeline produced.
type Outcome struct {
	Path        string
	Status      Status
	File        *localize.File
	Diagnostics []localize.Diagnostic
	Err         error
	Duration    time.Duration
}

// NewOutcome classifies the result of localize.Process.
func NewOutcome(path string, f *localize.File, err error, check bool, elapsed time.Duration) Outcome {
	o := Outcome{Path: path, File: f, Err: err, Duration: elapsed}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		o.Status = StatusSkipped
	case err != nil:
		o.Status = StatusFailed
		if localize.IsDiagnostic(err) {
			o.Status = StatusInvalid
		}
		o.Diagnostics = localize.DiagnosticsOf(path, err)
	case f.Changed && check:
		o.Status = StatusUnsorted
		o.Diagnostics = []localize.Diagnostic{{Path: path, Line: 1, Message: "file is not sorted"}}
	case f.Changed:
		o.Status = StatusSorted
	default:
		o.Status = StatusUnchanged
	}
	return o
}

// Failed reports whether the outcome should produce a non-zero exit status.
func (o Outcome) Failed() bool {
	switch o.Status {
	case StatusInvalid, StatusFailed, StatusUnsorted:
		return true
	}
	return false
}

// Rows returns the number of entries written, or zero on failure.
func (o Outcome) Rows() int {
	if o.File == nil {
		return 0
	}
	return len(o.File.Rows)
}

// Reporter receives one Outcome per processed file. Implementations must be
// safe for concurrent use.
type Reporter interface {
	Report(ctx context.Context, o Outcome) error
}

// Console writes diagnostics to an io.Writer in `path:line: error: msg` form
// and logs a line per file.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a Console writing diagnostics to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Report(_ context.Context, o Outcome) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range o.Diagnostics {
		if _, err := fmt.Fprintln(c.out, d.String()); err != nil {
			return fmt.Errorf("write diagnostic: %w", err)
		}
	}

	switch o.Status {
	case StatusSorted, StatusUnchanged:
		log.Info().
			Str("file", o.Path).
			Int("rows", o.Rows()).
			Str("status", string(o.Status)).
			Dur("duration", o.Duration).
			Msg("File normalized")
	case StatusSkipped:
		log.Warn().Str("file", o.Path).Msg("File skipped")
	default:
		ev := log.Error().
			Str("file", o.Path).
			Str("status", string(o.Status)).
			Int("diagnostics", len(o.Diagnostics))
		if o.Err != nil {
			ev = ev.Str("error", textutil.Truncate(o.Err.Error(), 200))
		}
		ev.Msg("File not normalized")
	}
	return nil
}

// Multi fans an Outcome out to several reporters. Every reporter is called
// even if an earlier one fails.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, o Outcome) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Summary counts outcomes by status.
type Summary struct {
	Processed int
	Changed   int
	Unchanged int
	Failed    int
	Skipped   int
}

// Add records one outcome.
func (s *Summary) Add(o Outcome) {
	switch o.Status {
	case StatusSkipped:
		s.Skipped++
		return
	case StatusSorted, StatusUnsorted:
		s.Changed++
	case StatusUnchanged:
		s.Unchanged++
	}
	s.Processed++
	if o.Failed() {
		s.Failed++
	}
}

// Log writes the summary as a single log line.
func (s Summary) Log() {
	ev := log.Info()
	if s.Failed > 0 {
		ev = log.Error()
	}
	ev.Int("processed", s.Processed).
		Int("changed", s.Changed).
		Int("unchanged", s.Unchanged).
		Int("failed", s.Failed).
		Int("skipped", s.Skipped).
		Msg("Run complete")
}
