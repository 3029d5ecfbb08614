// Package graph tracks per-file build state and import dependencies.
//
// The Cache maps source paths to FileRecords (content hash, mtime,
// import edges) and is persisted as JSON across runs. Records are
// updated only after a successful compile, so the graph is always "as of
// last successful compile". The reverse edges (dependents) are derived
// in memory and never serialized.
//
// Given a set of changed paths, RebuildSet extends it with the
// transitive closure of dependents. A detected import cycle degrades to
// a full rebuild rather than risking an unsound traversal.
package graph
