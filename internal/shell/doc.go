// SPDX-License-Identifier: MPL-2.0

// Package shell runs case scripts in an in-process POSIX shell (mvdan.cc/sh).
// Scripts see a controlled environment and their output is captured, so a
// case result depends only on the script and the variables it is given.
package shell
