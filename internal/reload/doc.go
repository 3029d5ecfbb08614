// Package reload pushes hot-reload instructions to connected runner
// clients over WebSocket.
//
// Clients connect, identify themselves with a hello handshake, and then
// wait. After each fully successful build the server broadcasts one
// reload message per client, choosing the reload strategy from the
// client's platform. Builds with failures produce no broadcast at all.
package reload
