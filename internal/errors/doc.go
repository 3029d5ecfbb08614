// Package errors provides structured, actionable error messages for plhub.
//
// Each error has a unique code (e.g., "E101") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A fix suggestion
//   - A documentation URL
//
// # Error Categories
//
// Errors are organized into categories:
//   - watch: file watching errors (inaccessible roots, bad patterns)
//   - cache: build cache errors (corruption, dependency cycles)
//   - build: compiler invocation errors
//   - reload/protocol: hot reload session and wire protocol errors
//   - config/cli: project configuration and command errors
//
// # Usage
//
//	err := errors.New("E110").Wrap(lookErr)
//	fmt.Println(err.Format())
package errors
