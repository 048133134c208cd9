// SPDX-License-Identifier: MPL-2.0

// Package cuemod imports test modules written as CUE files.
//
// A module file is validated against an embedded schema on import; a file
// that does not compile or validate fails to import with a
// *harness.FrameError pointing at the offending line. A module that declares
// test_suite is a harness.SuiteFactory and a harness.Tester; every case runs
// a shell script through internal/shell and checks its output with
// internal/check.
//
// Packages are directories holding __init__.cue. A package's suite is its own
// cases followed by the suites harvested from its children, unless the
// marker sets harvest: false.
package cuemod
