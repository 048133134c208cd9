// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the scitest command line: discovering and running the
// test suites of a CUE package tree, listing what discovery finds, running a
// single module's companion tests and managing configuration.
package cmd
