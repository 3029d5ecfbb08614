package watch

import "context"

// Backend produces raw file change events for a set of roots. Two
// implementations exist: one on OS-level notifications (fsnotify) and a
// polling fallback. Both feed the same event channel and are selected at
// startup.
type Backend interface {
	// Run blocks, delivering events until the context is canceled.
	Run(ctx context.Context) error

	// Events returns the channel raw events are delivered on. The
	// channel is closed when Run returns.
	Events() <-chan Event

	// Ready returns a channel that is closed once the backend observes
	// changes: after fsnotify registration, or after the priming scan
	// for polling. Changes made before that point are not reported.
	Ready() <-chan struct{}
}
