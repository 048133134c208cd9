// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// globMeta lists the characters doublestar treats specially.
const globMeta = `\*?[]{}`

// IgnorePatterns expands caller-supplied ignore names into the effective
// pattern set for baseDir: the layout's built-ins (setup scripts and the init
// marker) plus, for each name x, "x<ext>" (the module spelling) and "x" (the
// package directory spelling). Every pattern is qualified with baseDir, whose
// own glob metacharacters are escaped.
func IgnorePatterns(layout Layout, names []string, baseDir string) []string {
	base := escapeGlob(filepath.ToSlash(baseDir))
	raw := layout.builtinIgnores()
	for _, name := range names {
		raw = append(raw, name+layout.ModuleExt, name)
	}

	patterns := make([]string, 0, len(raw))
	for _, p := range raw {
		if base == "" {
			patterns = append(patterns, p)
			continue
		}
		patterns = append(patterns, strings.TrimSuffix(base, "/")+"/"+p)
	}
	return patterns
}

// Exclude removes every candidate matching any of the patterns. Patterns are
// applied one after another, each narrowing the remaining set, so order does
// not change the result. Malformed patterns match nothing.
func Exclude(candidates, patterns []string) []string {
	kept := candidates
	for _, pattern := range patterns {
		next := make([]string, 0, len(kept))
		for _, candidate := range kept {
			if !globMatch(pattern, candidate) {
				next = append(next, candidate)
			}
		}
		kept = next
	}
	return kept
}

// Filter applies IgnorePatterns and Exclude in one step.
func Filter(candidates []string, layout Layout, names []string, baseDir string) []string {
	return Exclude(candidates, IgnorePatterns(layout, names, baseDir))
}

func globMatch(pattern, candidate string) bool {
	matched, err := doublestar.Match(pattern, filepath.ToSlash(candidate))
	return err == nil && matched
}

func escapeGlob(s string) string {
	if !strings.ContainsAny(s, globMeta) {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(globMeta, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
