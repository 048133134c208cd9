// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CachesUntilReload(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	loads := 0
	reg.Register("pkg.mod", func(_ context.Context, ref ImportRef) (Module, error) {
		loads++
		return &BasicModule{ModuleName: ref.Name}, nil
	})

	first, err := reg.Import(context.Background(), ImportRef{Name: "pkg.mod"})
	require.NoError(t, err)
	second, err := reg.Import(context.Background(), ImportRef{Name: "pkg.mod"})
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, loads)

	third, err := reg.Import(context.Background(), ImportRef{Name: "pkg.mod", Reload: true})
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, loads)

	reg.Forget("pkg.mod")
	_, err = reg.Import(context.Background(), ImportRef{Name: "pkg.mod"})
	require.NoError(t, err)
	assert.Equal(t, 3, loads)
}

func TestRegistry_NotFound(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().Import(context.Background(), ImportRef{Name: "nope", SearchPath: []string{"/a", "/b"}})
	require.ErrorIs(t, err, ErrModuleNotFound)
	assert.EqualError(t, err, "no module named nope (searched /a, /b)")
}

func TestRegistry_FailuresAreNotCached(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	fail := true
	reg.Register("flaky", func(_ context.Context, ref ImportRef) (Module, error) {
		if fail {
			return nil, errors.New("first load fails")
		}
		return &BasicModule{ModuleName: ref.Name}, nil
	})

	_, err := reg.Import(context.Background(), ImportRef{Name: "flaky"})
	require.Error(t, err)

	fail = false
	m, err := reg.Import(context.Background(), ImportRef{Name: "flaky"})
	require.NoError(t, err)
	assert.Equal(t, "flaky", m.Name())
}

func TestRegistry_LoaderPanicBecomesFrameError(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("boom", func(context.Context, ImportRef) (Module, error) {
		var s []int
		_ = s[3]
		return nil, nil
	})

	_, err := reg.Import(context.Background(), ImportRef{Name: "boom"})
	var fe *FrameError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "RuntimeError", fe.Kind)
	assert.Contains(t, fe.File, "registry_test.go")
	assert.Contains(t, fe.Message, "index out of range")
}

func TestRegistry_NilModuleIsNotFound(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("hollow", func(context.Context, ImportRef) (Module, error) { return nil, nil })
	_, err := reg.Import(context.Background(), ImportRef{Name: "hollow"})
	require.ErrorIs(t, err, ErrModuleNotFound)
}

func TestRegistry_RegisterReplacesCachedModule(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	old := &BasicModule{ModuleName: "m", ModuleFile: "old"}
	reg.RegisterModule(old)
	got, err := reg.Import(context.Background(), ImportRef{Name: "m"})
	require.NoError(t, err)
	assert.Same(t, old, got)

	replacement := &BasicModule{ModuleName: "m", ModuleFile: "new"}
	reg.Register("m", staticLoader(replacement))
	got, err = reg.Import(context.Background(), ImportRef{Name: "m"})
	require.NoError(t, err)
	assert.Equal(t, "new", got.File())
}

func TestRegistry_Names(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	for _, n := range []string{"c", "a", "b"} {
		reg.RegisterModule(&BasicModule{ModuleName: n})
	}
	assert.Equal(t, []string{"a", "b", "c"}, reg.Names())
}
