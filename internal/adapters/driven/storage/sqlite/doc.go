// Package sqlite provides the SQLite-backed content store for the search
// engine.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. A single database
// connection backs both port surfaces:
//
//   - ContentStore: keyword and semantic retrieval, facet aggregation,
//     title suggestions
//   - ContentWriter: video, transcript chunk, source, content item, and
//     topic cluster persistence
//
// # Retrieval
//
// Keyword retrieval uses parameterized LIKE patterns with an explicit
// ESCAPE clause; caller input is never interpolated into SQL text.
// Semantic retrieval scans stored embedding blobs and computes cosine
// similarity in Go, keeping the store free of vector extensions.
//
// # Schema
//
// The database schema is managed through versioned migrations embedded
// from the migrations/ directory.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
