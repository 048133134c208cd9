// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_CapturesOutput(t *testing.T) {
	t.Parallel()

	res, err := New().Run(context.Background(), "adds", `echo $((1+2)); echo oops >&2`, nil)
	require.NoError(t, err)
	assert.Equal(t, "3\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.True(t, res.OK())
}

func TestRunner_NonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()

	res, err := New().Run(context.Background(), "exit", `echo before; exit 3`, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "before\n", res.Stdout)
	assert.False(t, res.OK())
}

func TestRunner_EnvLayering(t *testing.T) {
	t.Parallel()

	r := New(WithEnv(map[string]string{"A": "runner", "B": "runner"}))
	res, err := r.Run(context.Background(), "env", `echo "$A $B $C"`, map[string]string{"B": "case", "C": "case"})
	require.NoError(t, err)
	assert.Equal(t, "runner case case\n", res.Stdout)
}

func TestRunner_DoesNotInheritByDefault(t *testing.T) {
	t.Setenv("SCITEST_SHELL_PROBE", "leaked")

	res, err := New().Run(context.Background(), "probe", `echo "[$SCITEST_SHELL_PROBE]"`, nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", res.Stdout)

	res, err = New(WithInheritEnv(true)).Run(context.Background(), "probe", `echo "[$SCITEST_SHELL_PROBE]"`, nil)
	require.NoError(t, err)
	assert.Equal(t, "[leaked]\n", res.Stdout)
}

func TestRunner_ExecDisabled(t *testing.T) {
	t.Parallel()

	res, err := New(WithExec(false)).Run(context.Background(), "ext", `definitely-not-a-builtin arg`, nil)
	require.NoError(t, err)
	assert.Equal(t, ExitNotFound, res.ExitCode)
	assert.Contains(t, res.Stderr, "external commands are disabled")
}

func TestRunner_WorkingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := New(WithDir(dir)).Run(context.Background(), "pwd", `echo "$PWD"`, nil)
	require.NoError(t, err)
	assert.Equal(t, dir+"\n", res.Stdout)
}

func TestRunner_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := New().Run(context.Background(), "broken.sh", "echo ok\nif then\n", nil)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "broken.sh", se.Name)
	assert.Equal(t, 2, se.Line)
	assert.Contains(t, se.Error(), "broken.sh:2:")
}

func TestRunner_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Run(ctx, "loop", `while true; do :; done`, nil)
	require.ErrorIs(t, err, context.Canceled)
}
