package driven

import (
	"context"
	"time"

	"github.com/nuclom/search/internal/core/domain"
)

// RetrievalFilter scopes a single retrieval query. OrganizationID is
// mandatory; everything else narrows the candidate set.
type RetrievalFilter struct {
	// OrganizationID is the tenant scope. Never empty.
	OrganizationID string

	// Sources restricts content items to these source types.
	Sources []domain.SourceType

	// SourceIDs restricts content items to specific source instances.
	SourceIDs []string

	// ContentTypes restricts content items by type.
	ContentTypes []domain.ContentItemType

	// From and To bound the item creation time. Nil leaves a side open.
	From *time.Time
	To   *time.Time

	// Limit caps the number of hits returned.
	Limit int
}

// VideoHit is a video-family retrieval result.
type VideoHit struct {
	// Video is the matched video with author projection.
	Video domain.VideoWithAuthor

	// Similarity is the cosine similarity of the best-matching transcript
	// chunk for semantic retrieval, 0 for keyword retrieval.
	Similarity float64
}

// ContentHit is a content-family retrieval result.
type ContentHit struct {
	// Item is the matched content item with its source.
	Item domain.ContentItemWithSource

	// Topic is the item's topic cluster, when it belongs to one.
	Topic *domain.TopicRef

	// Similarity is the cosine similarity for semantic retrieval,
	// 0 for keyword retrieval.
	Similarity float64
}

// ContentStore is the read surface the search engine requires from the
// relational store: keyword pattern matching over text columns, cosine
// ranking over stored embeddings, grouped counting, and date-truncation
// grouping. Implementations must build every query with bound
// parameters; raw interpolation of caller input is forbidden.
type ContentStore interface {
	// SearchVideosKeyword returns videos whose title, description, or
	// transcript contains the query (case-insensitive), newest first.
	SearchVideosKeyword(ctx context.Context, query string, f RetrievalFilter) ([]VideoHit, error)

	// SearchVideosSemantic ranks videos by the highest cosine similarity
	// of any transcript chunk against the query embedding, one hit per
	// video, descending. Hits below threshold are discarded.
	SearchVideosSemantic(ctx context.Context, embedding []float32, threshold float64, f RetrievalFilter) ([]VideoHit, error)

	// SearchContentKeyword returns content items whose search text
	// contains the query (case-insensitive), newest first.
	SearchContentKeyword(ctx context.Context, query string, f RetrievalFilter) ([]ContentHit, error)

	// SearchContentSemantic ranks content items by cosine similarity of
	// their embedding, descending. Hits below threshold are discarded.
	SearchContentSemantic(ctx context.Context, embedding []float32, threshold float64, f RetrievalFilter) ([]ContentHit, error)

	// Facets computes the aggregate snapshot for one tenant.
	Facets(ctx context.Context, organizationID string) (*domain.SearchFacets, error)

	// SuggestTitles returns up to limit distinct titles containing the
	// prefix (case-insensitive), across videos and content items.
	SuggestTitles(ctx context.Context, organizationID, prefix string, limit int) ([]string, error)

	// Close releases resources.
	Close() error
}

// ContentWriter is the write surface used by the importer and seeder.
// The search path itself is read-only.
type ContentWriter interface {
	// SaveVideo stores or updates a video.
	SaveVideo(ctx context.Context, v *domain.Video) error

	// SaveTranscriptChunks stores transcript chunks for a video.
	SaveTranscriptChunks(ctx context.Context, chunks []domain.TranscriptChunk) error

	// SaveSource stores or updates a source instance.
	SaveSource(ctx context.Context, s domain.Source) error

	// SaveContentItem stores or updates a content item.
	SaveContentItem(ctx context.Context, item *domain.ContentItem) error

	// SaveTopicCluster stores or updates a topic cluster.
	SaveTopicCluster(ctx context.Context, c domain.TopicCluster) error

	// AssignTopic links a content item to a topic cluster.
	AssignTopic(ctx context.Context, itemID, clusterID string) error
}
