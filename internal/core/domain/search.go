package domain

import (
	"fmt"
	"strings"
	"time"
)

// SearchMode selects which retrieval strategies run for a request.
type SearchMode string

const (
	// SearchModeKeyword runs substring matching only.
	SearchModeKeyword SearchMode = "keyword"
	// SearchModeSemantic runs embedding similarity only.
	SearchModeSemantic SearchMode = "semantic"
	// SearchModeHybrid runs both and fuses the scores. This is the default.
	SearchModeHybrid SearchMode = "hybrid"
)

// Valid reports whether the mode is one of the supported values.
func (m SearchMode) Valid() bool {
	switch m {
	case SearchModeKeyword, SearchModeSemantic, SearchModeHybrid:
		return true
	}
	return false
}

// DateRange restricts results to items created within [From, To].
// A nil bound leaves that side open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// SearchRequest is the immutable parameter set for one search call.
// Zero values mean "use the engine default"; Normalize applies them.
type SearchRequest struct {
	// Query is the raw search text. Required, non-empty after trim.
	Query string

	// OrganizationID is the tenant scope. Required; every retrieval
	// filters by it.
	OrganizationID string

	// Sources optionally restricts results to these source types.
	Sources []SourceType

	// SourceIDs optionally restricts results to specific source instances.
	SourceIDs []string

	// ContentTypes optionally restricts content items by type.
	ContentTypes []ContentItemType

	// DateRange optionally restricts by creation time.
	DateRange *DateRange

	// Mode selects keyword, semantic, or hybrid retrieval.
	// Empty means hybrid.
	Mode SearchMode

	// SemanticWeight is the fusion weight for semantic scores, in [0,1].
	// The keyword weight is 1 - SemanticWeight. Nil means the configured
	// default.
	SemanticWeight *float64

	// SemanticThreshold is the minimum cosine similarity for a semantic
	// hit, in [0,1]. Nil means the configured default.
	SemanticThreshold *float64

	// IncludeVideos enables the video retrieval family. Defaults to true;
	// set a non-nil false to disable.
	IncludeVideos *bool

	// IncludeContentItems enables the content-item retrieval family.
	// Defaults to true; set a non-nil false to disable.
	IncludeContentItems *bool

	// IncludeFacets attaches facet aggregations to the response.
	IncludeFacets bool

	// IncludeHighlights attaches marked-up excerpts to each result.
	IncludeHighlights bool

	// Limit is the page size. Non-positive means the configured default.
	Limit int

	// Offset is the number of ranked results to skip. Negative is
	// treated as zero.
	Offset int
}

// Validate checks the request for caller errors. Out-of-range weights and
// thresholds are rejected, never clamped.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("%w: query must not be empty", ErrInvalidInput)
	}
	if r.OrganizationID == "" {
		return fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	if r.Mode != "" && !r.Mode.Valid() {
		return fmt.Errorf("%w: unknown search mode %q", ErrInvalidInput, r.Mode)
	}
	if w := r.SemanticWeight; w != nil && (*w < 0 || *w > 1) {
		return fmt.Errorf("%w: semantic weight %v outside [0,1]", ErrInvalidInput, *w)
	}
	if t := r.SemanticThreshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("%w: semantic threshold %v outside [0,1]", ErrInvalidInput, *t)
	}
	for _, s := range r.Sources {
		if !s.Valid() {
			return fmt.Errorf("%w: unknown source type %q", ErrInvalidInput, s)
		}
	}
	for _, c := range r.ContentTypes {
		if !c.Valid() {
			return fmt.Errorf("%w: unknown content type %q", ErrInvalidInput, c)
		}
	}
	return nil
}

// WantsVideos reports whether the video family should be searched.
// A source filter that excludes "video" disables the family.
func (r *SearchRequest) WantsVideos() bool {
	if r.IncludeVideos != nil && !*r.IncludeVideos {
		return false
	}
	if len(r.Sources) == 0 {
		return true
	}
	for _, s := range r.Sources {
		if s == SourceTypeVideo {
			return true
		}
	}
	return false
}

// WantsContentItems reports whether the content-item family should be searched.
func (r *SearchRequest) WantsContentItems() bool {
	return r.IncludeContentItems == nil || *r.IncludeContentItems
}

// ItemType discriminates the payload of a SearchResultItem.
type ItemType string

const (
	// ItemTypeVideo marks a first-party video result.
	ItemTypeVideo ItemType = "video"
	// ItemTypeContentItem marks an imported content item result.
	ItemTypeContentItem ItemType = "content_item"
)

// ScoreBreakdown exposes the components behind a fused score.
// All fields are always populated; a component is zero when its
// strategy did not fire for the item.
type ScoreBreakdown struct {
	// KeywordScore is 1 for a keyword match, 0 otherwise.
	KeywordScore float64 `json:"keywordScore"`

	// SemanticScore is the cosine similarity, 0 when no semantic hit.
	SemanticScore float64 `json:"semanticScore"`

	// RecencyBoost is the bounded freshness bonus added to the final score.
	RecencyBoost float64 `json:"recencyBoost"`
}

// Highlights carries marked-up excerpts for a result.
type Highlights struct {
	// Title is the title with the matched span wrapped in <mark> tags.
	Title string `json:"title,omitempty"`

	// Content is a windowed body excerpt with the match wrapped, or a
	// plain preview when the body did not match.
	Content string `json:"content,omitempty"`
}

// TopicRef names the topic cluster a result belongs to.
type TopicRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ResultContext carries display context attached to a result.
type ResultContext struct {
	// TopicCluster is set when the item belongs to a topic cluster.
	TopicCluster *TopicRef `json:"topicCluster,omitempty"`

	// SourceType is set for content-item results.
	SourceType SourceType `json:"sourceType,omitempty"`
}

// SearchResultItem is the unit of ranking. Exactly one of Video and
// ContentItem is non-nil, discriminated by Type; use the constructors
// to preserve that invariant.
type SearchResultItem struct {
	// Type discriminates the payload.
	Type ItemType

	// Video is set when Type is ItemTypeVideo.
	Video *VideoWithAuthor

	// ContentItem is set when Type is ItemTypeContentItem.
	ContentItem *ContentItemWithSource

	// Score is the final fused ranking score, recency boost included.
	Score float64

	// Breakdown exposes the score components.
	Breakdown ScoreBreakdown

	// Highlights is populated only when the request asked for highlights.
	Highlights *Highlights

	// Context carries topic and source display context.
	Context ResultContext
}

// NewVideoResult builds a video-family result item.
func NewVideoResult(v VideoWithAuthor) SearchResultItem {
	return SearchResultItem{Type: ItemTypeVideo, Video: &v}
}

// NewContentItemResult builds a content-family result item.
func NewContentItemResult(c ContentItemWithSource) SearchResultItem {
	return SearchResultItem{
		Type:        ItemTypeContentItem,
		ContentItem: &c,
		Context:     ResultContext{SourceType: c.Item.SourceType},
	}
}

// ID returns the underlying payload identifier. Two results refer to the
// same item iff their Type and ID are both equal.
func (i *SearchResultItem) ID() string {
	switch i.Type {
	case ItemTypeVideo:
		if i.Video != nil {
			return i.Video.Video.ID
		}
	case ItemTypeContentItem:
		if i.ContentItem != nil {
			return i.ContentItem.Item.ID
		}
	}
	return ""
}

// CreatedAt returns the payload's natural creation time.
func (i *SearchResultItem) CreatedAt() time.Time {
	switch i.Type {
	case ItemTypeVideo:
		if i.Video != nil {
			return i.Video.Video.CreatedAt
		}
	case ItemTypeContentItem:
		if i.ContentItem != nil {
			return i.ContentItem.Item.CreatedAt
		}
	}
	return time.Time{}
}

// SearchResponse is the assembled result of one search call.
type SearchResponse struct {
	// Results is the requested page of ranked items.
	Results []SearchResultItem

	// Facets is present when the request asked for facets and the
	// aggregation succeeded (or was not dropped by policy).
	Facets *SearchFacets

	// TotalCount is the size of the full merged candidate list before
	// pagination. It is bounded by the per-family oversampling, not the
	// true corpus count; use HasMore as the actionable signal.
	TotalCount int

	// HasMore reports whether another page exists past Offset+Limit.
	HasMore bool

	// SearchTimeMs is the wall-clock duration of the call.
	SearchTimeMs int64
}

// Suggestion is a single autocomplete entry.
type Suggestion struct {
	// Text is the suggested completion.
	Text string `json:"text"`

	// Type is the suggestion kind; currently always "autocomplete".
	Type string `json:"type"`
}
