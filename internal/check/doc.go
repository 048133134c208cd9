// SPDX-License-Identifier: MPL-2.0

// Package check provides the comparison predicates test cases use to state
// expectations. Every predicate returns nil on success and a *MismatchError
// otherwise; MismatchError wraps harness.ErrCaseFailed so runners count it as
// a failure rather than an error.
package check
