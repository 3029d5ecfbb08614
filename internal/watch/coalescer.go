package watch

import (
	"context"
	"time"
)

// DefaultQuietWindow is the debounce interval used when none is configured.
const DefaultQuietWindow = 500 * time.Millisecond

// Coalescer debounces raw events into discrete change-sets. It keeps a
// pending path set and a single timer that resets on every event; only
// after the quiet window elapses with no further events is one ChangeSet
// emitted. Deletions and modifications to the same path within a window
// collapse to the last observed kind.
type Coalescer struct {
	window time.Duration
	out    chan ChangeSet
}

// NewCoalescer creates a coalescer with the given quiet window.
func NewCoalescer(window time.Duration) *Coalescer {
	if window <= 0 {
		window = DefaultQuietWindow
	}
	return &Coalescer{
		window: window,
		out:    make(chan ChangeSet, 1),
	}
}

// Changes returns the channel change-sets are emitted on. The channel is
// closed when Run returns.
func (c *Coalescer) Changes() <-chan ChangeSet {
	return c.out
}

// Run consumes the event stream until it is closed or the context is
// canceled. Pending changes are discarded on cancellation; shutdown never
// starts a new build anyway.
func (c *Coalescer) Run(ctx context.Context, in <-chan Event) {
	defer close(c.out)

	pending := make(ChangeSet)

	timer := time.NewTimer(c.window)
	if !timer.Stop() {
		<-timer.C
	}
	timerActive := false

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-in:
			if !ok {
				// Source closed: flush whatever is pending and stop.
				if len(pending) > 0 {
					c.emit(ctx, pending)
				}
				return
			}
			pending[ev.Path] = ev.Kind
			if timerActive && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(c.window)
			timerActive = true

		case <-timer.C:
			timerActive = false
			if len(pending) == 0 {
				continue
			}
			c.emit(ctx, pending)
			pending = make(ChangeSet)
		}
	}
}

func (c *Coalescer) emit(ctx context.Context, cs ChangeSet) {
	select {
	case c.out <- cs:
	case <-ctx.Done():
	}
}
