// Package domain defines the core business entities for the Nuclom
// unified search engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SearchRequest / SearchResponse: A single search round trip
//   - SearchResultItem: The unit of ranking (video or content item)
//   - Video / TranscriptChunk: First-party video records
//   - ContentItem: Imported third-party content (messages, docs, issues)
//   - SearchFacets: Aggregate counts for filter UIs
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
