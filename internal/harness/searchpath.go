// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"slices"
	"sync"
)

// SearchPath is an ordered list of extra roots an Importer consults when a
// lookup has no explicit file. Entries are added with Push and removed by the
// release function Push returns, so every scoped addition can be undone on
// all exit paths with a single defer.
//
// The mutex keeps the slice consistent; it does not make overlapping scopes
// from different goroutines meaningful.
type SearchPath struct {
	mu    sync.Mutex
	roots []string
	seq   uint64
	ids   []uint64
}

// NewSearchPath creates a SearchPath seeded with roots.
func NewSearchPath(roots ...string) *SearchPath {
	sp := &SearchPath{}
	for _, r := range roots {
		sp.roots = append(sp.roots, r)
		sp.seq++
		sp.ids = append(sp.ids, sp.seq)
	}
	return sp
}

// Push appends dir and returns a function that removes exactly that entry.
// The release function is idempotent.
func (sp *SearchPath) Push(dir string) (release func()) {
	sp.mu.Lock()
	sp.seq++
	id := sp.seq
	sp.roots = append(sp.roots, dir)
	sp.ids = append(sp.ids, id)
	sp.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { sp.remove(id) })
	}
}

// Scope runs fn with dir pushed and always releases it afterwards, including
// when fn panics.
func (sp *SearchPath) Scope(dir string, fn func() error) error {
	release := sp.Push(dir)
	defer release()
	return fn()
}

// Snapshot returns a copy of the current roots.
func (sp *SearchPath) Snapshot() []string {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return slices.Clone(sp.roots)
}

// Len returns the number of roots.
func (sp *SearchPath) Len() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return len(sp.roots)
}

func (sp *SearchPath) remove(id uint64) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	// Scan from the end: with stack discipline the entry is the last one.
	for i := len(sp.ids) - 1; i >= 0; i-- {
		if sp.ids[i] == id {
			sp.roots = slices.Delete(sp.roots, i, i+1)
			sp.ids = slices.Delete(sp.ids, i, i+1)
			return
		}
	}
}
