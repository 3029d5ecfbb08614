// Package watch observes source trees for file changes.
//
// A Watcher multiplexes one or more roots into a single event stream,
// filtered by include/exclude glob patterns. It uses OS-level
// notifications (fsnotify) when available and falls back to interval
// polling otherwise; both backends satisfy the same Backend interface
// and are interchangeable.
//
// Raw events are noisy: editors that write-then-rename produce several
// events per save. The Coalescer debounces the stream into ChangeSets,
// emitting one deduplicated batch per quiet window.
package watch
