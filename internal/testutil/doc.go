// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that build package trees on
// disk, change process state, or need a deterministic clock.
//
// The Must* helpers fail the test immediately on error and return cleanup
// functions that restore what they changed.
package testutil
