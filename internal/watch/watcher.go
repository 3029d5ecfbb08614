package watch

import (
	"context"
	"log/slog"
	"time"
)

// Config configures the file watcher.
type Config struct {
	// Roots are the directories to watch.
	Roots []string

	// Include are glob patterns for files to report (default: everything).
	Include []string

	// Exclude are glob patterns to skip.
	Exclude []string

	// Poll forces the polling backend.
	Poll bool

	// PollInterval is the polling period (default 1s).
	PollInterval time.Duration

	// Logger receives watch diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher observes directories for create/modify/delete events matching
// the configured patterns, multiplexing all roots into a single stream.
type Watcher struct {
	backend Backend
	matcher *matcher
	logger  *slog.Logger
	out     chan Event
	polling bool
}

// New creates a watcher. It prefers the OS notification backend and
// falls back to polling when notifications cannot be initialized.
func New(cfg Config) *Watcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "watch")

	m := newMatcher(cfg.Include, cfg.Exclude)

	w := &Watcher{
		matcher: m,
		logger:  logger,
		out:     make(chan Event, 256),
	}

	if !cfg.Poll {
		if backend, err := newNotifyBackend(cfg.Roots, m, logger); err == nil {
			w.backend = backend
			return w
		} else {
			logger.Warn("native notifications unavailable, falling back to polling", "err", err)
		}
	}

	w.backend = newPollBackend(cfg.Roots, m, cfg.PollInterval, logger)
	w.polling = true
	return w
}

// Events returns the filtered event stream. The channel is closed when
// Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.out
}

// Ready returns a channel that is closed once the backend observes
// changes. Callers that must not miss edits (an initial build, say)
// wait on it before starting their work.
func (w *Watcher) Ready() <-chan struct{} {
	return w.backend.Ready()
}

// Polling reports whether the polling backend is in use.
func (w *Watcher) Polling() bool {
	return w.polling
}

// Run starts the backend and forwards events that match the include
// patterns until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.out)

	done := make(chan error, 1)
	go func() {
		done <- w.backend.Run(ctx)
	}()

	for {
		select {
		case ev, ok := <-w.backend.Events():
			if !ok {
				return <-done
			}
			if !w.matcher.matches(ev.Path) {
				continue
			}
			select {
			case w.out <- ev:
			case <-ctx.Done():
				return <-done
			}
		case <-ctx.Done():
			return <-done
		}
	}
}
