// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing errors for the scitest CLI.
//
// An ActionableError names the failed operation and the resource involved and
// carries suggestions for fixing it. Errors may point at an Issue: a Markdown
// guide rendered to the terminal with glamour when more help is wanted.
package issue
