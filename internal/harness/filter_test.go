// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnorePatterns_Builtins(t *testing.T) {
	t.Parallel()

	got := IgnorePatterns(DefaultLayout(), nil, "/src/pkg")
	want := []string{"/src/pkg/setup.py", "/src/pkg/setup_*.py", "/src/pkg/__init__.py"}
	assert.Equal(t, want, got)
}

func TestIgnorePatterns_CallerNamesExpandToModuleAndPackage(t *testing.T) {
	t.Parallel()

	got := IgnorePatterns(DefaultLayout(), []string{"foo", "bar"}, "/src/pkg/")
	assert.Contains(t, got, "/src/pkg/foo.py")
	assert.Contains(t, got, "/src/pkg/foo")
	assert.Contains(t, got, "/src/pkg/bar.py")
	assert.Contains(t, got, "/src/pkg/bar")
	assert.Len(t, got, 7)
}

func TestIgnorePatterns_EmptyBaseDir(t *testing.T) {
	t.Parallel()

	got := IgnorePatterns(DefaultLayout(), []string{"x"}, "")
	assert.Equal(t, []string{"setup.py", "setup_*.py", "__init__.py", "x.py", "x"}, got)
}

func TestIgnorePatterns_CustomLayout(t *testing.T) {
	t.Parallel()

	layout := Layout{ModuleExt: ".cue", InitFile: "__init__.cue", TestsDir: "tests", TestPrefix: "test_"}
	got := IgnorePatterns(layout, nil, "/p")
	assert.Equal(t, []string{"/p/setup.cue", "/p/setup_*.cue", "/p/__init__.cue"}, got)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	base := "/src/pkg"
	candidates := []string{
		"/src/pkg/__init__.py",
		"/src/pkg/a.py",
		"/src/pkg/setup.py",
		"/src/pkg/setup_extra.py",
		"/src/pkg/setupx.py",
		"/src/pkg/foo.py",
		"/src/pkg/foo",
		"/src/pkg/foobar.py",
	}

	tests := []struct {
		name   string
		ignore []string
		want   []string
	}{
		{
			name:   "builtins only",
			ignore: nil,
			want:   []string{"/src/pkg/a.py", "/src/pkg/setupx.py", "/src/pkg/foo.py", "/src/pkg/foo", "/src/pkg/foobar.py"},
		},
		{
			name:   "caller name removes module and package spellings",
			ignore: []string{"foo"},
			want:   []string{"/src/pkg/a.py", "/src/pkg/setupx.py", "/src/pkg/foobar.py"},
		},
		{
			name:   "caller glob",
			ignore: []string{"foo*"},
			want:   []string{"/src/pkg/a.py", "/src/pkg/setupx.py"},
		},
		{
			name:   "character class",
			ignore: []string{"[ab]"},
			want:   []string{"/src/pkg/setupx.py", "/src/pkg/foo.py", "/src/pkg/foo", "/src/pkg/foobar.py"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Filter(slices.Clone(candidates), DefaultLayout(), tt.ignore, base)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_EscapesBaseDirMetacharacters(t *testing.T) {
	t.Parallel()

	base := "/tmp/we[ir]d"
	got := Filter([]string{"/tmp/we[ir]d/setup.py", "/tmp/we[ir]d/a.py"}, DefaultLayout(), nil, base)
	assert.Equal(t, []string{"/tmp/we[ir]d/a.py"}, got)
}

func TestExclude_OrderIndependent(t *testing.T) {
	t.Parallel()

	candidates := []string{"/p/a.py", "/p/b.py", "/p/c.py", "/p/d.py"}
	patterns := []string{"/p/a.py", "/p/[bc].py"}
	reversed := slices.Clone(patterns)
	slices.Reverse(reversed)

	assert.Equal(t, Exclude(candidates, patterns), Exclude(candidates, reversed))
	assert.Equal(t, []string{"/p/d.py"}, Exclude(candidates, patterns))
}

func TestExclude_MalformedPatternMatchesNothing(t *testing.T) {
	t.Parallel()

	candidates := []string{"/p/a.py"}
	assert.Equal(t, candidates, Exclude(candidates, []string{"/p/["}))
}

func TestExclude_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	candidates := []string{"/p/a.py", "/p/setup.py"}
	_ = Exclude(candidates, []string{"/p/setup.py"})
	assert.Equal(t, []string{"/p/a.py", "/p/setup.py"}, candidates)
}
