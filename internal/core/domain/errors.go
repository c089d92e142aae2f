package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates a malformed request. Callers see these
	// directly; they are never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding provider is not
	// configured. Semantic search is disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the content store is not configured.
	ErrStoreUnavailable = errors.New("content store unavailable")

	// ErrFacetsUnavailable indicates the facet aggregation failed. When
	// the drop-facets policy is active this never reaches callers.
	ErrFacetsUnavailable = errors.New("facet aggregation failed")
)
