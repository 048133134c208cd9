// SPDX-License-Identifier: MPL-2.0

package cuemod

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/harness"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/runner"
	"github.com/jasonmccampbell/numpy-refactor-sprint/internal/testutil"
)

func importFile(t *testing.T, imp *Importer, name, path string) (harness.Module, error) {
	t.Helper()
	return imp.Import(context.Background(), harness.ImportRef{Name: name, Path: path, Kind: harness.KindModule})
}

const arithmetic = `
description: "arithmetic"
env: {BASE: "10"}
test_suite: [
	{name: "adds", run: "echo $((1+2))", want: "3"},
	{name: "uses env", run: "echo $((BASE*2))", want: "20"},
	{name: "pi", run: "echo 3.14159", want_number: 3.1416, decimal: 3},
	{name: "vec", run: "echo 1 2 3", want_numbers: [1.0, 2.0, 3.0]},
	{name: "exit", run: "exit 0"},
]
`

func TestImporter_SuiteModule(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"arith.cue": arithmetic})

	mod, err := importFile(t, New(), "pkg.arith", filepath.Join(dir, "arith.cue"))
	require.NoError(t, err)
	assert.Equal(t, "pkg.arith", mod.Name())

	factory, ok := mod.(harness.SuiteFactory)
	require.True(t, ok)
	suite, err := factory.TestSuite(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, suite.CountTestCases())
	assert.Equal(t, "pkg.arith", suite.Name)

	report := runner.New().Run(context.Background(), suite)
	for _, res := range report.Results {
		assert.Equal(t, runner.StatusPass, res.Status, "%s: %v", res.Case, res.Err)
	}

	tester, ok := mod.(harness.Tester)
	require.True(t, ok)
	require.NoError(t, tester.Test(context.Background()))
}

func TestImporter_FailingCases(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"bad.cue": `
test_suite: [
	{name: "wrong text", run: "echo 4", want: "5"},
	{name: "wrong number", run: "echo 3.2", want_number: 3.1416, decimal: 3},
	{name: "not a number", run: "echo abc", want_number: 1.0},
	{name: "short vector", run: "echo 1 2", want_numbers: [1.0, 2.0, 3.0]},
	{name: "exits", run: "echo boom >&2; exit 4"},
	{name: "case env wins", run: "echo $X", want: "case", env: {X: "case"}},
]
env: {X: "module"}
`})

	mod, err := importFile(t, New(), "bad", filepath.Join(dir, "bad.cue"))
	require.NoError(t, err)
	suite, err := mod.(harness.SuiteFactory).TestSuite(context.Background())
	require.NoError(t, err)

	report := runner.New().Run(context.Background(), suite)
	require.Len(t, report.Results, 6)
	for _, res := range report.Results[:5] {
		assert.Equal(t, runner.StatusFail, res.Status, res.Case)
	}
	assert.Equal(t, runner.StatusPass, report.Results[5].Status)
	assert.Contains(t, report.Results[0].Err.Error(), "Items are not equal")
	assert.Contains(t, report.Results[4].Err.Error(), "exited with status 4: boom")

	err = mod.(harness.Tester).Test(context.Background())
	var tfe *TestsFailedError
	require.ErrorAs(t, err, &tfe)
	assert.ErrorIs(t, err, harness.ErrCaseFailed)
	assert.Contains(t, err.Error(), "FAILED (failures=5)")
}

func TestImporter_ModuleWithoutSuite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"plain.cue": `description: "helpers only"`})

	mod, err := importFile(t, New(), "plain", filepath.Join(dir, "plain.cue"))
	require.NoError(t, err)
	_, isFactory := mod.(harness.SuiteFactory)
	assert.False(t, isFactory)
	assert.Equal(t, "helpers only", mod.(*Module).Spec().Description)
}

func TestImporter_EmptySuiteIsStillAFactory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"empty.cue": `test_suite: []`})

	mod, err := importFile(t, New(), "empty", filepath.Join(dir, "empty.cue"))
	require.NoError(t, err)
	suite, err := mod.(harness.SuiteFactory).TestSuite(context.Background())
	require.NoError(t, err)
	assert.True(t, suite.Empty())
}

func TestImporter_ImportErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		wantKind string
		wantMsg  string
	}{
		{
			name:     "cue syntax",
			content:  "description: \"x\"\ntest_suite: [\n\t{name: \"a\", run: \"echo\"\n",
			wantKind: "SyntaxError",
		},
		{
			name:     "unknown field",
			content:  `tests: []`,
			wantKind: "ValidationError",
			wantMsg:  "tests",
		},
		{
			name:     "missing run",
			content:  `test_suite: [{name: "a"}]`,
			wantKind: "ValidationError",
		},
		{
			name:     "duplicate case",
			content:  `test_suite: [{name: "a", run: "true"}, {name: "a", run: "true"}]`,
			wantKind: "ValidationError",
			wantMsg:  "duplicate case name",
		},
		{
			name:     "shell syntax",
			content:  "test_suite: [\n\t{name: \"bad\", run: \"if then\"},\n]\n",
			wantKind: "SyntaxError",
			wantMsg:  "test_suite[0].run",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "mod.cue")
			testutil.WriteFiles(t, dir, map[string]string{"mod.cue": tt.content})

			_, err := importFile(t, New(), "mod", path)
			var fe *harness.FrameError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.wantKind, fe.Kind)
			assert.Equal(t, path, fe.File)
			assert.Equal(t, "<module>", fe.Function)
			if tt.wantMsg != "" {
				assert.Contains(t, fe.Message, tt.wantMsg)
			}
		})
	}
}

func TestImporter_SyntaxErrorLine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "mod.cue")
	testutil.WriteFiles(t, dir, map[string]string{"mod.cue": "description: \"ok\"\n\ntest_suite: [ {name: }\n"})

	_, err := importFile(t, New(), "mod", path)
	fe := harness.Summarize(err)
	require.NotNil(t, fe)
	assert.Equal(t, 3, fe.Line)
}

func TestImporter_CacheAndReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "m.cue")
	testutil.WriteFiles(t, dir, map[string]string{"m.cue": `description: "v1"`})

	imp := New()
	first, err := importFile(t, imp, "m", path)
	require.NoError(t, err)

	testutil.WriteFiles(t, dir, map[string]string{"m.cue": `description: "v2"`})
	again, err := importFile(t, imp, "m", path)
	require.NoError(t, err)
	assert.Same(t, first, again)

	reloaded, err := imp.Import(context.Background(), harness.ImportRef{Name: "m", Path: path, Reload: true})
	require.NoError(t, err)
	assert.Equal(t, "v2", reloaded.(*Module).Spec().Description)

	imp.Forget()
	testutil.WriteFiles(t, dir, map[string]string{"m.cue": `description: "v3"`})
	fresh, err := importFile(t, imp, "m", path)
	require.NoError(t, err)
	assert.Equal(t, "v3", fresh.(*Module).Spec().Description)
}

func TestImporter_ResolvesAgainstSearchPath(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()
	testutil.WriteFiles(t, first, map[string]string{"other.cue": `description: "other"`})
	testutil.WriteFiles(t, second, map[string]string{
		"test_mod.cue":     `description: "second"`,
		"a/b.cue":          `description: "dotted"`,
		"a/c/__init__.cue": `harvest: false`,
	})
	testutil.WriteFiles(t, first, map[string]string{"test_mod.cue": `description: "first"`})

	imp := New()
	roots := []string{first, second}

	mod, err := imp.Import(context.Background(), harness.ImportRef{Name: "test_mod", SearchPath: roots})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(first, "test_mod.cue"), mod.File())

	mod, err = imp.Import(context.Background(), harness.ImportRef{Name: "a.b", SearchPath: roots})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "a", "b.cue"), mod.File())

	mod, err = imp.Import(context.Background(), harness.ImportRef{Name: "a.c", SearchPath: roots})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "a", "c", "__init__.cue"), mod.File())

	_, err = imp.Import(context.Background(), harness.ImportRef{Name: "missing", SearchPath: roots})
	require.ErrorIs(t, err, harness.ErrModuleNotFound)
}

func TestImporter_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Import(ctx, harness.ImportRef{Name: "x", Path: "/nowhere.cue"})
	require.ErrorIs(t, err, context.Canceled)
}
