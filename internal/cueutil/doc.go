// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE parsing flow shared by the config loader and
// the CUE module importer:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with the schema's root definition
//  3. Validate and decode into a Go struct
//
// Failures come back as *SourceError, which keeps the file, the first line
// and column CUE reported inside that file, and whether the input failed to
// compile at all (Syntax) or only failed validation.
//
//	//go:embed module_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[ModuleSpec](schema, data, "#Module",
//	    cueutil.WithFilename(path))
package cueutil
