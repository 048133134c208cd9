// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

const (
	// SeverityWarning marks an anomaly that is not an error.
	SeverityWarning Severity = "warning"
	// SeverityError marks an isolated, recoverable failure.
	SeverityError Severity = "error"

	// CodeImportFailed is reported when a discovery candidate fails to import.
	CodeImportFailed DiagnosticCode = "import_failed"
	// CodeEmptySuite is reported when a suite factory returns a nil or empty suite.
	CodeEmptySuite DiagnosticCode = "empty_suite"
	// CodeSuiteBuildFailed is reported when a suite factory fails.
	CodeSuiteBuildFailed DiagnosticCode = "suite_build_failed"
	// CodeNoSuite is reported when a discovered item has no suite factory.
	CodeNoSuite DiagnosticCode = "no_suite"
)

var (
	// ErrInvalidSeverity is returned when a Severity value is not recognized.
	ErrInvalidSeverity = errors.New("invalid severity")
	// ErrInvalidDiagnosticCode is returned when a DiagnosticCode value is not recognized.
	ErrInvalidDiagnosticCode = errors.New("invalid diagnostic code")
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// DiagnosticCode is a machine-readable diagnostic identifier.
	DiagnosticCode string

	// Diagnostic describes one isolated per-item problem of a discovery or
	// build pass.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is the machine-readable category.
		Code DiagnosticCode
		// Name is the dotted name of the item concerned.
		Name string
		// Path is the candidate path, when known.
		Path string
		// Message is the human-readable headline.
		Message string
		// Frame is the last-frame summary of the failure, if any.
		Frame *FrameError
		// Cause is the underlying error, if any.
		Cause error
	}

	// Reporter receives diagnostics as they are produced.
	Reporter interface {
		Report(d Diagnostic)
	}

	// ReporterFunc adapts a function to the Reporter interface.
	ReporterFunc func(d Diagnostic)

	// LogReporter writes diagnostics to a charmbracelet logger.
	LogReporter struct {
		logger *log.Logger
	}

	// Recorder keeps diagnostics in memory, in report order.
	Recorder struct {
		mu    sync.Mutex
		diags []Diagnostic
	}

	multiReporter []Reporter

	discardReporter struct{}
)

// IsValid returns whether the Severity is one of the defined levels.
func (s Severity) IsValid() (bool, []error) {
	switch s {
	case SeverityWarning, SeverityError:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidSeverity, string(s))}
	}
}

// IsValid returns whether the DiagnosticCode is one of the defined codes.
func (c DiagnosticCode) IsValid() (bool, []error) {
	switch c {
	case CodeImportFailed, CodeEmptySuite, CodeSuiteBuildFailed, CodeNoSuite:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidDiagnosticCode, string(c))}
	}
}

// String renders the headline, followed by the frame summary on an indented
// second line when present.
func (d Diagnostic) String() string {
	if d.Frame == nil {
		return d.Message
	}
	return d.Message + "\n    " + d.Frame.Summary()
}

func importFailed(name, path string, err error) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeImportFailed,
		Name:     name,
		Path:     path,
		Message:  "FAILURE to import " + name,
		Frame:    Summarize(err),
		Cause:    err,
	}
}

func emptySuite(name, path string) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     CodeEmptySuite,
		Name:     name,
		Path:     path,
		Message:  "FAILURE without error - shouldn't happen " + name,
	}
}

func suiteBuildFailed(name, path string, err error) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeSuiteBuildFailed,
		Name:     name,
		Path:     path,
		Message:  "FAILURE building test for " + name,
		Frame:    Summarize(err),
		Cause:    err,
	}
}

func noSuite(name, path string) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     CodeNoSuite,
		Name:     name,
		Path:     path,
		Message:  "No test suite found for " + name,
	}
}

// Report calls f.
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// NewLogReporter creates a Reporter that writes to logger.
func NewLogReporter(logger *log.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report logs d at warn or error level. The frame summary, if any, goes in
// the "at" key.
func (r *LogReporter) Report(d Diagnostic) {
	kv := []any{"code", string(d.Code)}
	if d.Frame != nil {
		kv = append(kv, "at", d.Frame.Summary())
	}
	if d.Severity == SeverityWarning {
		r.logger.Warn(d.Message, kv...)
		return
	}
	r.logger.Error(d.Message, kv...)
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Report appends d.
func (r *Recorder) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

// Diagnostics returns a copy of everything reported so far.
func (r *Recorder) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.diags)
}

// Count returns how many diagnostics with code were reported.
func (r *Recorder) Count(code DiagnosticCode) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.diags {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Reset drops all recorded diagnostics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = nil
}

// MultiReporter fans each diagnostic out to all reporters, in order.
func MultiReporter(reporters ...Reporter) Reporter {
	return multiReporter(reporters)
}

func (m multiReporter) Report(d Diagnostic) {
	for _, r := range m {
		r.Report(d)
	}
}

func (discardReporter) Report(Diagnostic) {}
