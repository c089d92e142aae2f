package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nuclom/search/internal/core/domain"
	"github.com/nuclom/search/internal/core/ports/driven"
	"github.com/nuclom/search/internal/core/ports/driving"
	"github.com/nuclom/search/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// defaultSuggestionLimit bounds autocomplete responses when the caller
// does not ask for a specific count.
const defaultSuggestionLimit = 10

// SearchService provides unified hybrid search over videos and imported
// content items.
type SearchService struct {
	store    driven.ContentStore
	embedder driven.EmbeddingService

	// mu guards cfg, which can be swapped at runtime by UpdateConfig.
	mu  sync.RWMutex
	cfg Config

	// now is injectable so recency boosts are deterministic in tests.
	now func() time.Time
}

// NewSearchService creates a new search service. The embedder is optional
// (can be nil); without it semantic retrieval is skipped and hybrid
// requests degrade to keyword-only.
func NewSearchService(store driven.ContentStore, embedder driven.EmbeddingService, cfg Config) (*SearchService, error) {
	if store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SearchService{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// SetClock overrides the time source. Used by tests.
func (s *SearchService) SetClock(now func() time.Time) {
	s.now = now
}

// Config returns the active search tuning.
func (s *SearchService) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// UpdateConfig replaces the search tuning at runtime. An invalid config
// is rejected and the current one stays active. In-flight requests keep
// the snapshot they resolved against.
func (s *SearchService) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	logger.Debug("Search tuning updated: weight=%.2f threshold=%.2f limit=%d",
		cfg.SemanticWeight, cfg.SemanticThreshold, cfg.DefaultLimit)
	return nil
}

// searchParams holds the per-request values after defaults are applied.
type searchParams struct {
	mode              domain.SearchMode
	semanticWeight    float64
	keywordWeight     float64
	semanticThreshold float64
	limit             int
	offset            int
	fetchLimit        int
	dropFacets        bool
}

// resolve applies configured defaults to a validated request. The whole
// request runs against one config snapshot.
func (s *SearchService) resolve(req *domain.SearchRequest) searchParams {
	cfg := s.Config()
	p := searchParams{
		mode:              req.Mode,
		semanticWeight:    cfg.SemanticWeight,
		semanticThreshold: cfg.SemanticThreshold,
		limit:             req.Limit,
		offset:            req.Offset,
		dropFacets:        cfg.DropFacetsOnError,
	}
	if p.mode == "" {
		p.mode = domain.SearchModeHybrid
	}
	if req.SemanticWeight != nil {
		p.semanticWeight = *req.SemanticWeight
	}
	if req.SemanticThreshold != nil {
		p.semanticThreshold = *req.SemanticThreshold
	}
	p.keywordWeight = 1 - p.semanticWeight
	if p.limit <= 0 {
		p.limit = cfg.DefaultLimit
	}
	if p.limit > cfg.MaxLimit {
		p.limit = cfg.MaxLimit
	}
	if p.offset < 0 {
		p.offset = 0
	}
	p.fetchLimit = p.limit * cfg.Oversample
	return p
}

// Search performs hybrid search across videos and content items.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	start := s.now()

	logger.Section("Search Execution")
	logger.Debug("Query: %q org=%s mode=%s", req.Query, req.OrganizationID, req.Mode)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := s.resolve(&req)
	query := strings.TrimSpace(req.Query)
	logger.Debug("Weights: keyword=%.2f semantic=%.2f threshold=%.2f limit=%d offset=%d",
		p.keywordWeight, p.semanticWeight, p.semanticThreshold, p.limit, p.offset)

	// Generate the query embedding up front; both families share it.
	// Failure degrades to keyword-only, it is never surfaced.
	var queryVec []float32
	if p.mode != domain.SearchModeKeyword {
		queryVec = s.embedQuery(ctx, query)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter := retrievalFilter(&req, p.fetchLimit)

	// The two families and the facet query are independent; run them
	// concurrently. Cancellation makes the whole request fail.
	var videoItems, contentItems []domain.SearchResultItem
	var facets *domain.SearchFacets

	g, gctx := errgroup.WithContext(ctx)

	if req.WantsVideos() {
		g.Go(func() error {
			var err error
			videoItems, err = s.searchVideoFamily(gctx, query, queryVec, p, filter)
			return err
		})
	}
	if req.WantsContentItems() {
		g.Go(func() error {
			var err error
			contentItems, err = s.searchContentFamily(gctx, query, queryVec, p, filter)
			return err
		})
	}
	if req.IncludeFacets {
		g.Go(func() error {
			f, err := s.store.Facets(gctx, req.OrganizationID)
			if err != nil {
				if p.dropFacets && gctx.Err() == nil {
					logger.Warn("Facet aggregation failed, dropping facets: %v", err)
					return nil
				}
				return fmt.Errorf("%w: %v", domain.ErrFacetsUnavailable, err)
			}
			facets = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Search aborted: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	// Identity already differs across families, so a plain concat is
	// enough - videos first, then content items.
	merged := make([]domain.SearchResultItem, 0, len(videoItems)+len(contentItems))
	merged = append(merged, videoItems...)
	merged = append(merged, contentItems...)

	// Stable keeps the retrieval order for equal scores, which makes the
	// output deterministic.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	total := len(merged)
	page := paginate(merged, p.offset, p.limit)

	if req.IncludeHighlights {
		for i := range page {
			attachHighlights(&page[i], query)
		}
	}

	logger.Info("Search done: %d candidates, page of %d", total, len(page))

	return &domain.SearchResponse{
		Results:      page,
		Facets:       facets,
		TotalCount:   total,
		HasMore:      total > p.offset+p.limit,
		SearchTimeMs: s.now().Sub(start).Milliseconds(),
	}, nil
}

// SearchContentItems searches the content-item family only. Results are
// ranked by the single-family merge; no cross-family fusion applies.
func (s *SearchService) SearchContentItems(ctx context.Context, req domain.SearchRequest) ([]domain.ContentItemWithSource, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := s.resolve(&req)
	query := strings.TrimSpace(req.Query)

	var queryVec []float32
	if p.mode != domain.SearchModeKeyword {
		queryVec = s.embedQuery(ctx, query)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items, err := s.searchContentFamily(ctx, query, queryVec, p, retrievalFilter(&req, p.fetchLimit))
	if err != nil {
		logger.Error("Content search aborted: %v", err)
		return nil, fmt.Errorf("search content items: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	page := paginate(items, p.offset, p.limit)

	out := make([]domain.ContentItemWithSource, 0, len(page))
	for i := range page {
		if page[i].ContentItem != nil {
			out = append(out, *page[i].ContentItem)
		}
	}
	return out, nil
}

// Facets computes the aggregate snapshot for one tenant. The query
// argument is accepted for parity with the search surface but does not
// affect grouping.
func (s *SearchService) Facets(ctx context.Context, organizationID, query string) (*domain.SearchFacets, error) {
	_ = query
	if organizationID == "" {
		return nil, fmt.Errorf("%w: organization id is required", domain.ErrInvalidInput)
	}
	facets, err := s.store.Facets(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("facets: %w", err)
	}
	return facets, nil
}

// Suggestions returns autocomplete entries for a title prefix.
func (s *SearchService) Suggestions(ctx context.Context, organizationID, prefix string, limit int) ([]domain.Suggestion, error) {
	if organizationID == "" {
		return nil, fmt.Errorf("%w: organization id is required", domain.ErrInvalidInput)
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []domain.Suggestion{}, nil
	}
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	titles, err := s.store.SuggestTitles(ctx, organizationID, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("suggestions: %w", err)
	}

	suggestions := make([]domain.Suggestion, 0, len(titles))
	for _, t := range titles {
		suggestions = append(suggestions, domain.Suggestion{Text: t, Type: "autocomplete"})
	}
	return suggestions, nil
}

// embedQuery generates the query embedding, returning nil when no
// semantic signal is available. Embedding failures are logged and
// swallowed: hybrid degrades to keyword-only, pure semantic returns
// empty results.
func (s *SearchService) embedQuery(ctx context.Context, query string) []float32 {
	if s.embedder == nil {
		logger.Debug("No embedding service configured, semantic retrieval skipped")
		return nil
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v (degrading to keyword-only)", err)
		return nil
	}
	logger.Debug("Query embedding: %d dimensions", len(vec))
	return vec
}

// retrievalFilter translates request filters into the store filter.
func retrievalFilter(req *domain.SearchRequest, limit int) driven.RetrievalFilter {
	f := driven.RetrievalFilter{
		OrganizationID: req.OrganizationID,
		Sources:        req.Sources,
		SourceIDs:      req.SourceIDs,
		ContentTypes:   req.ContentTypes,
		Limit:          limit,
	}
	if req.DateRange != nil {
		f.From = req.DateRange.From
		f.To = req.DateRange.To
	}
	return f
}

// paginate slices [offset, offset+limit) out of results.
func paginate(results []domain.SearchResultItem, offset, limit int) []domain.SearchResultItem {
	if offset >= len(results) {
		return []domain.SearchResultItem{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}
