// Package config loads and validates plhub.json project configuration.
//
// The configuration file lives at the project root and controls the watch
// set (roots, include/exclude globs, debounce window), the dev server
// address, and the build cache location. Missing fields are filled with
// defaults, so an empty plhub.json is a valid project.
package config
