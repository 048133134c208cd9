// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// SourceError is a CUE failure located in a user file.
type SourceError struct {
	// File is the file being parsed.
	File string
	// Line and Column locate the first reported problem inside File. Both are
	// zero when CUE gave no usable position.
	Line   int
	Column int
	// Syntax is set when the file could not be compiled at all.
	Syntax bool
	// Issues holds one "<json-path>: <message>" line per CUE error.
	Issues []string
	// Cause is the original error.
	Cause error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	switch len(e.Issues) {
	case 0:
		return e.File + ": invalid input"
	case 1:
		return fmt.Sprintf("%s: %s", e.File, e.Issues[0])
	default:
		return fmt.Sprintf("%s: validation failed:\n  %s", e.File, strings.Join(e.Issues, "\n  "))
	}
}

// Unwrap returns the original error.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// Message joins the issues on one line, without the file prefix.
func (e *SourceError) Message() string {
	return strings.Join(e.Issues, "; ")
}

// FormatError converts err into a *SourceError whose issues use JSON-path
// prefixes, e.g. "config.cue: watch.debounce: conflicting values".
func FormatError(err error, filePath string) *SourceError {
	if err == nil {
		return nil
	}

	serr := &SourceError{File: filePath, Cause: err}
	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		serr.Issues = []string{err.Error()}
		return serr
	}

	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path at the start of the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}
		if pathStr != "" {
			msg = pathStr + ": " + msg
		}
		serr.Issues = append(serr.Issues, msg)

		if serr.Line == 0 {
			if pos, ok := positionIn(e, filePath); ok {
				serr.Line, serr.Column = pos.Line(), pos.Column()
			}
		}
	}
	return serr
}

// positionIn returns the most relevant position of e inside filename,
// falling back to the first position CUE reports anywhere.
func positionIn(e errors.Error, filename string) (token.Pos, bool) {
	positions := errors.Positions(e)
	for _, p := range positions {
		if p.Filename() == filename {
			return p, true
		}
	}
	if len(positions) > 0 {
		return positions[0], true
	}
	return token.NoPos, false
}

// formatPath turns ["cases", "0", "want"] into "cases[0].want".
func formatPath(path []string) string {
	var result strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			result.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			result.WriteString(".")
		}
		result.WriteString(part)
	}
	return result.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize rejects data larger than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}
