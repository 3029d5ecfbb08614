// Package build orders and runs incremental compiles.
//
// The Orchestrator is the sole owner of the build cache. It receives
// change-sets from the watch layer, extends them with the dependency
// closure from the graph package, compiles each file in topological
// order through the external Compiler collaborator, and persists the
// cache exactly once per cycle. Builds are strictly sequential: at most
// one cycle is in flight, and change-sets arriving mid-build merge into
// a pending set consumed by an immediate follow-up cycle.
package build
