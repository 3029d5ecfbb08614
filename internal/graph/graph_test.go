package graph

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record is a test helper for inserting a file with import edges.
func record(c *Cache, path string, deps ...string) {
	c.Put(FileRecord{Path: path, Hash: "h-" + path, MTime: 1, Deps: deps})
}

func TestRebuildSet_DirectDependent(t *testing.T) {
	c := NewCache()
	record(c, "/p/a.poh")
	record(c, "/p/b.poh", "/p/a.poh") // b imports a

	set, err := c.RebuildSet([]string{"/p/a.poh"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/a.poh", "/p/b.poh"}, set)
}

func TestRebuildSet_TransitiveClosure(t *testing.T) {
	c := NewCache()
	record(c, "/p/a.poh")
	record(c, "/p/b.poh", "/p/a.poh")
	record(c, "/p/c.poh", "/p/b.poh")
	record(c, "/p/d.poh") // unrelated

	set, err := c.RebuildSet([]string{"/p/a.poh"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/a.poh", "/p/b.poh", "/p/c.poh"}, set)
	assert.NotContains(t, set, "/p/d.poh")
}

func TestRebuildSet_LeafChangeOnlyItself(t *testing.T) {
	c := NewCache()
	record(c, "/p/a.poh")
	record(c, "/p/b.poh", "/p/a.poh")

	// b has no dependents; changing it rebuilds only b.
	set, err := c.RebuildSet([]string{"/p/b.poh"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/b.poh"}, set)
}

func TestRebuildSet_DiamondIsNotACycle(t *testing.T) {
	c := NewCache()
	record(c, "/p/base.poh")
	record(c, "/p/left.poh", "/p/base.poh")
	record(c, "/p/right.poh", "/p/base.poh")
	record(c, "/p/top.poh", "/p/left.poh", "/p/right.poh")

	set, err := c.RebuildSet([]string{"/p/base.poh"})
	require.NoError(t, err)
	assert.Len(t, set, 4)
}

func TestRebuildSet_CycleFallsBackToFullRebuild(t *testing.T) {
	c := NewCache()
	record(c, "/p/a.poh", "/p/b.poh")
	record(c, "/p/b.poh", "/p/a.poh") // a <-> b
	record(c, "/p/other.poh")

	set, err := c.RebuildSet([]string{"/p/a.poh"})
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)

	// Conservative: everything in the cache is rebuilt.
	assert.Equal(t, []string{"/p/a.poh", "/p/b.poh", "/p/other.poh"}, set)
}

func TestRebuildSet_DeletedFilePropagates(t *testing.T) {
	c := NewCache()
	record(c, "/p/a.poh")
	record(c, "/p/b.poh", "/p/a.poh")

	// A deleted file is still a traversal root for its dependents.
	set, err := c.RebuildSet([]string{"/p/a.poh"})
	require.NoError(t, err)
	assert.Contains(t, set, "/p/b.poh")
}

func TestTopoOrder_DependenciesFirst(t *testing.T) {
	c := NewCache()
	record(c, "/p/a.poh")
	record(c, "/p/b.poh", "/p/a.poh")
	record(c, "/p/c.poh", "/p/b.poh")

	order := c.TopoOrder([]string{"/p/c.poh", "/p/a.poh", "/p/b.poh"})
	assert.Equal(t, []string{"/p/a.poh", "/p/b.poh", "/p/c.poh"}, order)
}

func TestTopoOrder_IgnoresEdgesOutsideSet(t *testing.T) {
	c := NewCache()
	record(c, "/p/a.poh")
	record(c, "/p/b.poh", "/p/a.poh")

	// a is up to date and not in the set; b has no in-set dependencies.
	order := c.TopoOrder([]string{"/p/b.poh"})
	assert.Equal(t, []string{"/p/b.poh"}, order)
}

func TestTopoOrder_CycleStillIncludesEverything(t *testing.T) {
	c := NewCache()
	record(c, "/p/a.poh", "/p/b.poh")
	record(c, "/p/b.poh", "/p/a.poh")
	record(c, "/p/c.poh")

	order := c.TopoOrder([]string{"/p/a.poh", "/p/b.poh", "/p/c.poh"})
	assert.Len(t, order, 3)
	assert.Contains(t, order, "/p/a.poh")
	assert.Contains(t, order, "/p/b.poh")
}

func TestTopoOrder_Deterministic(t *testing.T) {
	c := NewCache()
	record(c, "/p/x.poh")
	record(c, "/p/y.poh")
	record(c, "/p/z.poh")

	first := c.TopoOrder([]string{"/p/z.poh", "/p/x.poh", "/p/y.poh"})
	second := c.TopoOrder([]string{"/p/y.poh", "/p/z.poh", "/p/x.poh"})
	assert.Equal(t, first, second)
}

func TestDependents_IsTransposeOfDeps(t *testing.T) {
	c := NewCache()
	record(c, "/p/a.poh")
	record(c, "/p/b.poh", "/p/a.poh")
	record(c, "/p/c.poh", "/p/a.poh")

	assert.Equal(t, []string{"/p/b.poh", "/p/c.poh"}, c.Dependents("/p/a.poh"))

	// Re-pointing b's import away from a updates the transpose.
	record(c, "/p/b.poh", "/p/c.poh")
	assert.Equal(t, []string{"/p/c.poh"}, c.Dependents("/p/a.poh"))
	assert.Equal(t, []string{"/p/b.poh"}, c.Dependents("/p/c.poh"))

	// Removing c drops its reverse edge too.
	c.Remove("/p/c.poh")
	assert.Empty(t, c.Dependents("/p/a.poh"))
}

func TestRebuildSet_UncachedChangedFile(t *testing.T) {
	c := NewCache()

	// A brand-new file has no record yet; it is still in the set.
	set, err := c.RebuildSet([]string{filepath.Join("/p", "new.poh")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("/p", "new.poh")}, set)
}
