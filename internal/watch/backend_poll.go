package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// pollBackend scans the roots on a fixed interval, comparing mtime and
// size against the previous scan. Used when OS notifications are
// unavailable or explicitly requested in configuration.
type pollBackend struct {
	roots    []string
	matcher  *matcher
	interval time.Duration
	logger   *slog.Logger
	events   chan Event
	ready    chan struct{}

	// known maps path -> last observed (mtime, size).
	known map[string]fileStamp
}

type fileStamp struct {
	mtime time.Time
	size  int64
}

func newPollBackend(roots []string, m *matcher, interval time.Duration, logger *slog.Logger) *pollBackend {
	if interval <= 0 {
		interval = time.Second
	}
	return &pollBackend{
		roots:    roots,
		matcher:  m,
		interval: interval,
		logger:   logger,
		events:   make(chan Event, 256),
		ready:    make(chan struct{}),
		known:    make(map[string]fileStamp),
	}
}

func (b *pollBackend) Events() <-chan Event {
	return b.events
}

func (b *pollBackend) Ready() <-chan struct{} {
	return b.ready
}

func (b *pollBackend) Run(ctx context.Context) error {
	defer close(b.events)

	// Initial scan primes the state without emitting events, so files
	// that merely exist at startup are not reported as created.
	b.scan(ctx, false)
	close(b.ready)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			b.scan(ctx, true)
		}
	}
}

func (b *pollBackend) scan(ctx context.Context, emit bool) {
	seen := make(map[string]struct{}, len(b.known))

	live := b.roots[:0]
	for _, root := range b.roots {
		if _, err := os.Stat(root); err != nil {
			b.logger.Warn("watch root dropped", "root", root, "err", err)
			continue
		}
		live = append(live, root)

		filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if b.matcher.excluded(p) && p != root {
					return filepath.SkipDir
				}
				return nil
			}
			if b.matcher.excluded(p) {
				return nil
			}

			seen[p] = struct{}{}
			stamp := fileStamp{mtime: info.ModTime(), size: info.Size()}
			prev, exists := b.known[p]
			b.known[p] = stamp

			if !emit {
				return nil
			}
			if !exists {
				b.send(ctx, Event{Path: p, Kind: Created, Time: time.Now()})
			} else if stamp.mtime.After(prev.mtime) || stamp.size != prev.size {
				b.send(ctx, Event{Path: p, Kind: Modified, Time: time.Now()})
			}
			return nil
		})
	}
	b.roots = live

	// Anything known but no longer on disk was deleted.
	for p := range b.known {
		if _, ok := seen[p]; ok {
			continue
		}
		delete(b.known, p)
		if emit {
			b.send(ctx, Event{Path: p, Kind: Deleted, Time: time.Now()})
		}
	}
}

func (b *pollBackend) send(ctx context.Context, ev Event) {
	select {
	case b.events <- ev:
	case <-ctx.Done():
	}
}
