package graph

import (
	"fmt"
	"sort"
)

// CycleError reports an import cycle found during traversal. The caller
// is expected to log it and fall back to a full rebuild; it is never a
// crash.
type CycleError struct {
	// Path is a file on the detected cycle.
	Path string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("import cycle through %s", e.Path)
}

// RebuildSet extends a set of changed paths with the transitive closure
// of their dependents: if B imports A and A changed, B is rebuilt even
// though B itself did not change on disk. Deleted files participate as
// roots (their dependents need rebuilding) even though they will not be
// compiled.
//
// If the traversal detects a cycle, the returned set is every cached
// path plus the changed set (a conservative full rebuild) and the error
// is a *CycleError.
func (c *Cache) RebuildSet(changed []string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	const (
		white = 0 // unvisited
		gray  = 1 // on the current traversal stack
		black = 2 // done
	)
	color := make(map[string]int)
	closure := make(map[string]struct{})

	var cycle *CycleError
	var visit func(path string)
	visit = func(path string) {
		if cycle != nil {
			return
		}
		switch color[path] {
		case gray:
			cycle = &CycleError{Path: path}
			return
		case black:
			return
		}
		color[path] = gray
		closure[path] = struct{}{}
		for dependent := range c.dependents[path] {
			visit(dependent)
		}
		color[path] = black
	}

	for _, p := range changed {
		// Each root starts a fresh walk; black nodes from earlier roots
		// stay black so shared subtrees are not retraversed.
		visit(p)
		if cycle != nil {
			break
		}
	}

	if cycle != nil {
		full := make(map[string]struct{}, len(c.records)+len(changed))
		for p := range c.records {
			full[p] = struct{}{}
		}
		for _, p := range changed {
			full[p] = struct{}{}
		}
		return sortedKeys(full), cycle
	}

	return sortedKeys(closure), nil
}

// TopoOrder orders the given paths so that every file comes after the
// files it imports, considering only edges within the set. Files outside
// the set are already up to date and impose no ordering. Ties break
// lexicographically for deterministic builds.
//
// On an unresolvable cycle the remaining files are appended in arbitrary
// (sorted) order; the caller has already chosen to rebuild everything.
func (c *Cache) TopoOrder(paths []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	inSet := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		inSet[p] = struct{}{}
	}

	// indegree counts unprocessed dependencies within the set.
	indegree := make(map[string]int, len(paths))
	for _, p := range paths {
		indegree[p] = 0
		if rec, ok := c.records[p]; ok {
			for _, dep := range rec.Deps {
				if _, in := inSet[dep]; in {
					indegree[p]++
				}
			}
		}
	}

	var ready []string
	for p, deg := range indegree {
		if deg == 0 {
			ready = append(ready, p)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(paths))
	for len(ready) > 0 {
		p := ready[0]
		ready = ready[1:]
		order = append(order, p)

		var unblocked []string
		for dependent := range c.dependents[p] {
			if _, in := inSet[dependent]; !in {
				continue
			}
			indegree[dependent]--
			if indegree[dependent] == 0 {
				unblocked = append(unblocked, dependent)
			}
		}
		sort.Strings(unblocked)
		ready = append(ready, unblocked...)
		sort.Strings(ready)
	}

	if len(order) < len(paths) {
		done := make(map[string]struct{}, len(order))
		for _, p := range order {
			done[p] = struct{}{}
		}
		var rest []string
		for _, p := range paths {
			if _, ok := done[p]; !ok {
				rest = append(rest, p)
			}
		}
		sort.Strings(rest)
		order = append(order, rest...)
	}

	return order
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
