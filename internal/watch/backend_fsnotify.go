package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pohlang/plhub/internal/errors"
)

// notifyBackend watches roots with OS-level notifications via fsnotify.
// fsnotify watches are not recursive, so every subdirectory is registered
// individually and directories created later are added on their Create
// events.
type notifyBackend struct {
	roots   []string
	matcher *matcher
	logger  *slog.Logger
	fw      *fsnotify.Watcher
	events  chan Event
	ready   chan struct{}
}

// newNotifyBackend creates the fsnotify backend. It fails if the OS
// notification facility is unavailable, in which case the caller falls
// back to polling.
func newNotifyBackend(roots []string, m *matcher, logger *slog.Logger) (*notifyBackend, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.New("E002").Wrap(err)
	}
	return &notifyBackend{
		roots:   roots,
		matcher: m,
		logger:  logger,
		fw:      fw,
		events:  make(chan Event, 256),
		ready:   make(chan struct{}),
	}, nil
}

func (b *notifyBackend) Events() <-chan Event {
	return b.events
}

func (b *notifyBackend) Ready() <-chan struct{} {
	return b.ready
}

func (b *notifyBackend) Run(ctx context.Context) error {
	defer close(b.events)
	defer b.fw.Close()

	for _, root := range b.roots {
		if err := b.addRecursive(root); err != nil {
			// Non-fatal: the root is dropped, others continue.
			b.logger.Warn("watch root dropped",
				"root", root,
				"err", errors.New("E001").Wrap(err))
		}
	}
	close(b.ready)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-b.fw.Events:
			if !ok {
				return nil
			}
			b.handle(ctx, ev)
		case err, ok := <-b.fw.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				b.logger.Warn("watcher error", "err", err)
			}
		}
	}
}

func (b *notifyBackend) handle(ctx context.Context, ev fsnotify.Event) {
	var kind Kind
	switch {
	case ev.Op.Has(fsnotify.Create):
		kind = Created
	case ev.Op.Has(fsnotify.Write):
		kind = Modified
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		kind = Deleted
	default:
		// Chmod-only events carry no content change.
		return
	}

	if kind != Deleted {
		info, err := os.Stat(ev.Name)
		if err != nil {
			// Editors that write-then-rename produce Create events for
			// paths that vanish immediately. Treat as deletion.
			kind = Deleted
		} else if info.IsDir() {
			if kind == Created && !b.matcher.excluded(ev.Name) {
				if err := b.addRecursive(ev.Name); err != nil {
					b.logger.Warn("failed to watch new directory", "dir", ev.Name, "err", err)
				}
			}
			return
		}
	}

	select {
	case b.events <- Event{Path: ev.Name, Kind: kind, Time: time.Now()}:
	case <-ctx.Done():
	}
}

// addRecursive registers dir and every non-excluded subdirectory.
func (b *notifyBackend) addRecursive(dir string) error {
	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			b.logger.Warn("path dropped from watch set", "path", p, "err", err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if b.matcher.excluded(p) && p != dir {
			return filepath.SkipDir
		}
		if err := b.fw.Add(p); err != nil {
			b.logger.Warn("path dropped from watch set", "path", p, "err", err)
		}
		return nil
	})
}
