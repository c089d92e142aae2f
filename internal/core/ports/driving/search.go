package driving

import (
	"context"

	"github.com/nuclom/search/internal/core/domain"
)

// SearchService is the public surface of the unified search engine.
type SearchService interface {
	// Search performs hybrid search across videos and content items.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)

	// SearchContentItems searches the content-item family only and
	// returns the ranked items without cross-family fusion.
	SearchContentItems(ctx context.Context, req domain.SearchRequest) ([]domain.ContentItemWithSource, error)

	// Facets computes the aggregate snapshot for one tenant. The query
	// argument is accepted for suggestion purposes but does not affect
	// grouping.
	Facets(ctx context.Context, organizationID, query string) (*domain.SearchFacets, error)

	// Suggestions returns autocomplete entries for a title prefix.
	Suggestions(ctx context.Context, organizationID, prefix string, limit int) ([]domain.Suggestion, error)
}
