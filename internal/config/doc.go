// SPDX-License-Identifier: MPL-2.0

// Package config handles scitest configuration using Viper with CUE as the file format.
//
// Configuration is read from the file named by --config, else from
// <config-dir>/scitest/config.cue (XDG on Linux, ~/Library/Application Support
// on macOS, %APPDATA% on Windows), else from ./scitest.cue. Values are
// validated against an embedded CUE schema (config_schema.cue), merged over
// defaults, and can be overridden with SCITEST_ environment variables
// (SCITEST_FAIL_FAST=true, SCITEST_WATCH_DEBOUNCE=1s).
package config
