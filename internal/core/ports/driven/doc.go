// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ContentStore: tenant-scoped keyword and semantic retrieval, facet
//     aggregation, and title suggestions over the relational store
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the engine degrades gracefully:
//
//   - EmbeddingService: generates query embeddings. Without it (or when a
//     call fails), semantic retrieval is skipped and hybrid search
//     degrades to keyword-only.
//   - ContentWriter: write-side used by the importer and seeder, not by
//     the search path.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
