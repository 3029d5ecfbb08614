package watch

import "time"

// Kind represents the type of file change.
type Kind int

const (
	Created Kind = iota
	Modified
	Deleted
)

// String returns the string representation of the change kind.
func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event is a single raw file change observed by a watcher backend.
type Event struct {
	Path string
	Kind Kind
	Time time.Time
}

// ChangeSet is a deduplicated batch of changed paths emitted by the
// Coalescer after a quiet window. Each path maps to the last kind
// observed for it within the window.
type ChangeSet map[string]Kind

// Paths returns the paths in the set, in no particular order.
func (cs ChangeSet) Paths() []string {
	paths := make([]string, 0, len(cs))
	for p := range cs {
		paths = append(paths, p)
	}
	return paths
}

// Merge folds other into cs, other's kinds winning on conflict.
func (cs ChangeSet) Merge(other ChangeSet) {
	for p, k := range other {
		cs[p] = k
	}
}
