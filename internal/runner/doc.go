// SPDX-License-Identifier: MPL-2.0

// Package runner executes a composite harness.Suite case by case and reports
// the outcome in the text layout of a classic xUnit runner: one status line
// per case, a failure detail block, then a "Ran N tests" footer.
package runner
