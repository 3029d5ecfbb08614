package watch

// Filter exposes the watcher's include/exclude semantics to callers
// that scan the tree themselves (e.g. the build orchestrator's startup
// sweep), so both sides always agree on what counts as a source file.
type Filter struct {
	m *matcher
}

// NewFilter creates a filter from include and exclude glob patterns.
func NewFilter(include, exclude []string) *Filter {
	return &Filter{m: newMatcher(include, exclude)}
}

// Matches reports whether a file path is part of the watch set.
func (f *Filter) Matches(path string) bool {
	return f.m.matches(path)
}

// Excluded reports whether a path (typically a directory) is excluded
// and need not be descended into.
func (f *Filter) Excluded(path string) bool {
	return f.m.excluded(path)
}
