// SPDX-License-Identifier: MPL-2.0

// Command scitest discovers and runs the test suites of a CUE package tree.
package main

import cmd "github.com/jasonmccampbell/numpy-refactor-sprint/cmd/scitest"

func main() {
	cmd.Execute()
}
