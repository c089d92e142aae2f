// Package file provides the TOML-backed configuration store.
//
// Configuration persists to config.toml under the data directory.
// Nested TOML tables flatten into dot-notation keys on load, so
// [search] max_limit = 50 reads as "search.max_limit". Watch reloads
// the store when the file changes on disk.
package file
