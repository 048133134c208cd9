// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
)

const (
	// StatusPass marks a case that returned nil.
	StatusPass Status = iota
	// StatusFail marks a case whose expectation did not hold.
	StatusFail
	// StatusError marks a case that failed for any other reason, panics included.
	StatusError
)

// Status classifies a case result.
type Status int

// String returns the word printed after a case name.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "ok"
	case StatusFail:
		return "FAIL"
	case StatusError:
		return "ERROR"
	default:
		return "unknown"
	}
}

// Classify maps a case error to its status. Errors wrapping
// harness.ErrCaseFailed are failures; every other non-nil error is an error.
func Classify(err error) Status {
	switch {
	case err == nil:
		return StatusPass
	case errors.Is(err, harness.ErrCaseFailed):
		return StatusFail
	default:
		return StatusError
	}
}
