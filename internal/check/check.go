// SPDX-License-Identifier: MPL-2.0

package check

import (
	"fmt"
	"math"
	"strings"

	"github.com/stretchr/testify/assert"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
)

// DefaultDecimal is the precision AlmostEqual uses when callers have none.
const DefaultDecimal = 7

// maxRenderedLen bounds how long a rendered value may be before the message
// leaves it out.
const maxRenderedLen = 100

const (
	headItems        = "Items are not equal"
	headArrays       = "Arrays are not equal"
	headArraysAlmost = "Arrays are not almost equal"
)

// MismatchError reports a failed comparison.
type MismatchError struct {
	// Headline names the comparison ("Items are not equal", ...).
	Headline string
	// Shape is set when slice lengths differ.
	Shape bool
	// Message is the caller's context, may be empty.
	Message string
	// Desired and Actual are the compared values.
	Desired any
	Actual  any
	// Index is the first differing slice element, -1 for scalars.
	Index int
}

// Error renders the headline, the caller message and, when both render
// short enough, the desired and actual values.
func (e *MismatchError) Error() string {
	var b strings.Builder
	b.WriteString(e.Headline)
	if e.Shape {
		b.WriteString(" (shapes mismatch)")
	}
	b.WriteString(":\n")
	b.WriteString(e.Message)

	desired, actual := fmt.Sprint(e.Desired), fmt.Sprint(e.Actual)
	if len(desired) < maxRenderedLen && len(actual) > 0 && len(actual) < maxRenderedLen {
		if e.Message != "" && !strings.HasSuffix(e.Message, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("DESIRED: " + desired + "\nACTUAL: " + actual)
	}
	if e.Index >= 0 {
		fmt.Fprintf(&b, "\nFIRST MISMATCH AT: %d", e.Index)
	}
	return b.String()
}

// Unwrap returns harness.ErrCaseFailed.
func (e *MismatchError) Unwrap() error {
	return harness.ErrCaseFailed
}

// Equal fails unless actual and desired are equal. Byte slices compare by
// content; other values by reflect.DeepEqual.
func Equal(actual, desired any, msg string) error {
	if assert.ObjectsAreEqual(desired, actual) {
		return nil
	}
	return &MismatchError{Headline: headItems, Message: msg, Desired: desired, Actual: actual, Index: -1}
}

// AlmostEqual fails unless |desired-actual| rounds to zero at decimal places.
func AlmostEqual(actual, desired float64, decimal int, msg string) error {
	if almostEqual(actual, desired, decimal) {
		return nil
	}
	return &MismatchError{Headline: headItems, Message: msg, Desired: desired, Actual: actual, Index: -1}
}

// SliceEqual fails on a length mismatch or on the first differing element.
func SliceEqual[T comparable](actual, desired []T, msg string) error {
	if len(actual) != len(desired) {
		return &MismatchError{Headline: headArrays, Shape: true, Message: msg, Desired: desired, Actual: actual, Index: -1}
	}
	for i := range actual {
		if actual[i] != desired[i] {
			return &MismatchError{Headline: headArrays, Message: msg, Desired: desired, Actual: actual, Index: i}
		}
	}
	return nil
}

// SliceAlmostEqual is the element-wise AlmostEqual of two float slices.
func SliceAlmostEqual(actual, desired []float64, decimal int, msg string) error {
	if len(actual) != len(desired) {
		return &MismatchError{Headline: headArraysAlmost, Shape: true, Message: msg, Desired: desired, Actual: actual, Index: -1}
	}
	for i := range actual {
		if !almostEqual(actual[i], desired[i], decimal) {
			return &MismatchError{Headline: headArraysAlmost, Message: msg, Desired: desired, Actual: actual, Index: i}
		}
	}
	return nil
}

func almostEqual(actual, desired float64, decimal int) bool {
	if actual == desired {
		return true
	}
	return round(math.Abs(desired-actual), decimal) == 0
}

// round rounds half away from zero at decimal places; negative decimal
// rounds to tens, hundreds and so on.
func round(v float64, decimal int) float64 {
	scale := math.Pow(10, float64(decimal))
	return math.Round(v*scale) / scale
}
