// SPDX-License-Identifier: MPL-2.0

// Package harness discovers the modules and sub-packages of a package directory
// and aggregates their test suites into one composite suite.
//
// The package combines four small pieces:
//   - Filter: glob-based exclusion of candidate paths (IgnorePatterns, Exclude)
//   - SearchPath: a scoped, reversible list of extra import roots
//   - Discoverer: non-recursive listing and import of child modules and packages
//   - SuiteBuilder: per-item suite factory invocation and aggregation
//
// Importing is delegated to an Importer. Registry is the in-process
// implementation; other packages provide file-backed ones.
//
// A single broken module never aborts a pass. Per-item failures are reported to
// a Reporter as Diagnostics and the item contributes nothing; only an invalid
// package handle (or an unreadable package directory) is returned as an error.
//
// File organization:
//   - layout.go: Layout (file naming conventions)
//   - filter.go: ignore-pattern expansion and matching
//   - searchpath.go: SearchPath
//   - module.go: Package, Module, Importer and capability interfaces
//   - registry.go: Registry importer
//   - frame.go: FrameError and last-frame summaries
//   - diagnostic.go: Diagnostic, Reporter implementations
//   - discover.go: Discoverer
//   - suite.go: Suite, Case, SuiteBuilder
//   - companion.go: per-module companion test lookup
package harness
