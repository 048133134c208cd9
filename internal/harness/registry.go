// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"context"
	"maps"
	"slices"
	"sync"
)

type (
	// Loader executes a module and returns its live handle. It is called
	// again on every Reload.
	Loader func(ctx context.Context, ref ImportRef) (Module, error)

	// Registry is an Importer backed by an explicit name → Loader map.
	// Successful imports are cached until a Reload or Forget; failed ones are
	// not, so a later import retries.
	Registry struct {
		mu      sync.Mutex
		loaders map[string]Loader
		loaded  map[string]Module
	}

	// BasicModule is a module with no test capabilities.
	BasicModule struct {
		ModuleName string
		ModuleFile string
	}

	// SuiteModule is a module whose suite comes from Factory.
	SuiteModule struct {
		BasicModule
		Factory func(ctx context.Context) (*Suite, error)
	}
)

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[string]Loader),
		loaded:  make(map[string]Module),
	}
}

// Register binds name to loader, replacing any earlier binding.
func (r *Registry) Register(name string, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[name] = loader
	delete(r.loaded, name)
}

// RegisterModule binds m under its own name.
func (r *Registry) RegisterModule(m Module) {
	r.Register(m.Name(), func(context.Context, ImportRef) (Module, error) { return m, nil })
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.loaders))
}

// Forget drops the cached module for name.
func (r *Registry) Forget(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loaded, name)
}

// Import implements Importer. Loader panics are returned as *FrameError.
func (r *Registry) Import(ctx context.Context, ref ImportRef) (Module, error) {
	r.mu.Lock()
	loader, ok := r.loaders[ref.Name]
	cached, hit := r.loaded[ref.Name]
	r.mu.Unlock()

	if !ok {
		return nil, &ModuleNotFoundError{Name: ref.Name, SearchPath: ref.SearchPath}
	}
	if hit && !ref.Reload {
		return cached, nil
	}

	mod, err := protect(func() (Module, error) { return loader(ctx, ref) })
	if err == nil && mod == nil {
		err = &ModuleNotFoundError{Name: ref.Name, SearchPath: ref.SearchPath}
	}
	if err != nil {
		r.Forget(ref.Name)
		return nil, err
	}

	r.mu.Lock()
	r.loaded[ref.Name] = mod
	r.mu.Unlock()
	return mod, nil
}

// Name returns the dotted module name.
func (m *BasicModule) Name() string { return m.ModuleName }

// File returns the module's file.
func (m *BasicModule) File() string { return m.ModuleFile }

// TestSuite calls Factory.
func (m *SuiteModule) TestSuite(ctx context.Context) (*Suite, error) {
	return m.Factory(ctx)
}
