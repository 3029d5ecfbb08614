// Package dev runs the plhub development loop: watch sources, rebuild
// what changed, hot-reload connected runner clients.
//
// The server owns no build or protocol logic of its own. It wires the
// watcher, coalescer, orchestrator, and reload server together, manages
// their lifecycles as one task group, and serves the WebSocket, health,
// and metrics endpoints.
package dev
