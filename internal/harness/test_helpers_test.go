// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTree creates files under root. Keys ending in "/" create directories.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if strings.HasSuffix(f, "/") {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("# "+f+"\n"), 0o644))
	}
}

// newTestPackage creates a package directory named name under t.TempDir()
// holding files, and returns its handle.
func newTestPackage(t *testing.T, name string, files ...string) Package {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	writeTree(t, dir, append([]string{"__init__.py"}, files...)...)
	return NewPackage(name, dir, DefaultLayout())
}

// staticLoader returns a loader that hands out m on every import.
func staticLoader(m Module) Loader {
	return func(context.Context, ImportRef) (Module, error) { return m, nil }
}

// casesSuite returns a suite named name with n passing cases.
func casesSuite(name string, n int) *Suite {
	s := NewSuite(name)
	for range n {
		s.Cases = append(s.Cases, Case{Name: "case", Run: func(context.Context) error { return nil }})
	}
	return s
}

func names(items []*Imported) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Module.Name())
	}
	return out
}
