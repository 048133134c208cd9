// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "import package"},
			expected: "failed to import package",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "import package", Resource: "./scipy"},
			expected: "failed to import package: ./scipy",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "load configuration", Cause: errors.New("syntax error at line 5")},
			expected: "failed to load configuration: syntax error at line 5",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "import package",
				Resource:  "./scipy",
				Cause:     errors.New("no such file or directory"),
			},
			expected: "failed to import package: ./scipy: no such file or directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ActionableError{Operation: "test", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "simple error non-verbose",
			err:      &ActionableError{Operation: "load configuration"},
			contains: []string{"failed to load configuration"},
		},
		{
			name: "error with suggestions",
			err: &ActionableError{
				Operation:   "import package",
				Resource:    "./scipy",
				Suggestions: []string{"Add an __init__.cue file", "Check the path"},
			},
			contains: []string{
				"failed to import package: ./scipy",
				"• Add an __init__.cue file",
				"• Check the path",
			},
		},
		{
			name:     "error chain in verbose mode",
			err:      &ActionableError{Operation: "load configuration", Cause: errors.New("syntax error")},
			verbose:  true,
			contains: []string{"Error chain:", "1. syntax error"},
		},
		{
			name:     "no error chain in non-verbose",
			err:      &ActionableError{Operation: "load configuration", Cause: errors.New("syntax error")},
			contains: []string{"failed to load configuration: syntax error"},
			excludes: []string{"Error chain:"},
		},
		{
			name: "nested error chain verbose",
			err: &ActionableError{
				Operation: "run tests",
				Cause: &ActionableError{
					Operation: "import module",
					Cause:     errors.New("file not found"),
				},
			},
			verbose: true,
			contains: []string{
				"1. failed to import module: file not found",
				"2. file not found",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestActionableError_Guide(t *testing.T) {
	if (&ActionableError{Operation: "x"}).Guide() != nil {
		t.Error("Guide() should be nil without an issue")
	}
	g := (&ActionableError{Operation: "x", Issue: TestsFailedId}).Guide()
	if g == nil || g.Id() != TestsFailedId {
		t.Errorf("Guide() = %v, want the TestsFailed issue", g)
	}
}

func TestErrorContext_Build(t *testing.T) {
	if NewErrorContext().WithResource("some/path").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return nil")
	}

	cause := errors.New("parse error")
	err := NewErrorContext().
		WithOperation("load configuration").
		WithResource("scitest.cue").
		WithSuggestion("Check syntax").
		WithSuggestions("Verify permissions", "Run scitest config show").
		WithIssue(ConfigLoadFailedId).
		Wrap(cause).
		Build()
	if err == nil {
		t.Fatal("Build() returned nil")
	}
	if err.Operation != "load configuration" || err.Resource != "scitest.cue" {
		t.Errorf("Build() = %+v", err)
	}
	if len(err.Suggestions) != 3 || !err.HasSuggestions() {
		t.Errorf("Suggestions = %v, want 3", err.Suggestions)
	}
	if err.Issue != ConfigLoadFailedId {
		t.Errorf("Issue = %d, want %d", err.Issue, ConfigLoadFailedId)
	}
	if !errors.Is(err, cause) {
		t.Error("Build() should keep the cause")
	}

	var ae *ActionableError
	if !errors.As(NewErrorContext().WithOperation("x").BuildError(), &ae) {
		t.Error("BuildError() should return *ActionableError")
	}
}

func TestWrapHelpers(t *testing.T) {
	cause := errors.New("original error")

	op := WrapWithOperation(cause, "process file")
	if op.Operation != "process file" || !errors.Is(op, cause) {
		t.Errorf("WrapWithOperation() = %+v", op)
	}
	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}

	ctx := WrapWithContext(cause, "import module", "scipy.base")
	if ctx.Resource != "scipy.base" || !errors.Is(ctx, cause) {
		t.Errorf("WrapWithContext() = %+v", ctx)
	}
	if WrapWithContext(nil, "x", "y") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}

	if NewActionableError("x").Cause != nil {
		t.Error("NewActionableError() should have no cause")
	}
}

func TestErrorContext_Reuse(t *testing.T) {
	ctx := NewErrorContext().WithOperation("import module").WithResource("scipy.base")

	err1 := ctx.Wrap(errors.New("error 1")).Build()
	err2 := ctx.Wrap(errors.New("error 2")).Build()

	if err1.Cause.Error() == err2.Cause.Error() {
		t.Error("reused context should allow different causes")
	}
	if err1.Operation != err2.Operation {
		t.Error("reused context should preserve operation")
	}
}
